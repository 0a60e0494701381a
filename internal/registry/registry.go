// Пакет registry — слой доступа к документной базе (MongoDB):
// реестр администраторов и коллекции магазина (товары, разделы,
// заказы, покупатели, акции, настройки, контент).
// Все операции — прямые одиночные запросы к драйверу, без ORM.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akolesov/lavka-admin/internal/config"
)

// Ошибки слоя registry.
var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("документ не найден")
)

// Connect создаёт клиент MongoDB и проверяет доступность через ping.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB недоступна: %w", err)
	}

	logger.Info("Подключение к MongoDB установлено",
		slog.String("database", cfg.MongoDatabase),
	)

	return client, nil
}

// Registry — набор коллекций документной базы.
type Registry struct {
	// Admins — реестр администраторов (коллекция admins).
	Admins *Admins
	// Products — каталог товаров.
	Products *Products
	// Categories — разделы каталога.
	Categories *Categories
	// Orders — заказы.
	Orders *Orders
	// Customers — покупатели (коллекция users).
	Customers *Customers
	// Offers — акции и скидки.
	Offers *Offers
	// Settings — настройки магазина и контент.
	Settings *Settings
}

// New создаёт Registry поверх базы данных.
func New(client *mongo.Client, database string) *Registry {
	db := client.Database(database)
	return &Registry{
		Admins:     &Admins{col: db.Collection("admins")},
		Products:   &Products{col: db.Collection("products")},
		Categories: &Categories{col: db.Collection("categories")},
		Orders:     &Orders{col: db.Collection("orders")},
		Customers:  &Customers{col: db.Collection("users")},
		Offers:     &Offers{col: db.Collection("offers")},
		Settings: &Settings{
			settings: db.Collection("settings"),
			content:  db.Collection("content"),
		},
	}
}

// ReadinessChecker — проверка готовности MongoDB для health endpoint.
type ReadinessChecker struct {
	client *mongo.Client
}

// NewReadinessChecker создаёт проверку готовности MongoDB.
func NewReadinessChecker(client *mongo.Client) *ReadinessChecker {
	return &ReadinessChecker{client: client}
}

// CheckReady проверяет подключение к MongoDB через ping.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx, nil); err != nil {
		return "fail", fmt.Sprintf("MongoDB недоступна: %v", err)
	}
	return "ok", "подключение активно"
}
