// Пакет cache — кеш агрегатов дашборда в Redis.
// Счётчики для обзорной страницы собираются несколькими запросами к MongoDB
// и PostgreSQL; кеш с коротким TTL снимает эту нагрузку с каждой загрузки
// дашборда.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss — ключ отсутствует в кеше или истёк.
var ErrMiss = errors.New("значение отсутствует в кеше")

// Cache — обёртка над Redis-клиентом с JSON-сериализацией значений.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// Connect создаёт Redis-клиент и проверяет доступность через ping.
func Connect(ctx context.Context, addr, password string, db int, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	logger.Info("Подключение к Redis установлено",
		slog.String("addr", addr),
		slog.Int("db", db),
	)

	return &Cache{
		client: client,
		logger: logger.With(slog.String("component", "cache")),
	}, nil
}

// Close закрывает подключение к Redis.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Set сериализует value в JSON и сохраняет с TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации значения для кеша: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи в кеш: %w", err)
	}
	return nil
}

// Get читает значение по ключу и десериализует JSON в dest.
// Отсутствие ключа — ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("ошибка чтения из кеша: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("ошибка десериализации значения из кеша: %w", err)
	}
	return nil
}

// Delete удаляет ключ из кеша (инвалидация после изменения данных).
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из кеша: %w", err)
	}
	return nil
}

// ReadinessChecker — проверка готовности Redis для health endpoint.
type ReadinessChecker struct {
	cache *Cache
}

// NewReadinessChecker создаёт проверку готовности Redis.
func NewReadinessChecker(cache *Cache) *ReadinessChecker {
	return &ReadinessChecker{cache: cache}
}

// CheckReady проверяет подключение к Redis через ping.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.cache.client.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
