// stats.go — агрегаты для обзорной страницы дашборда.
// Счётчики собираются из MongoDB и PostgreSQL и кешируются в Redis
// с коротким TTL: дашборд — самая посещаемая страница панели.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akolesov/lavka-admin/internal/cache"
	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// Ключ кеша агрегатов дашборда.
const statsCacheKey = "lavka:admin:dashboard_stats"

// Порог «мало на складе» для счётчика дашборда.
const lowStockThreshold = 5

// Период подсчёта выручки на дашборде.
const revenuePeriod = 30 * 24 * time.Hour

// Размер блоков «последние заказы» и «последние события» на дашборде.
const (
	recentOrdersLimit = 5
	recentEventsLimit = 5
)

// DashboardStats — счётчики обзорной страницы.
type DashboardStats struct {
	Products      int64 `json:"products"`
	LowStock      int64 `json:"low_stock"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pending_orders"`
	Customers     int64 `json:"customers"`
	// Revenue — выручка по доставленным заказам за последние 30 дней.
	Revenue float64 `json:"revenue"`
	// RecentOrders — последние заказы для блока под счётчиками.
	RecentOrders []*model.Order `json:"recent_orders"`
	// DeniedLogins — отказы в доступе за последние сутки (из журнала аудита).
	DeniedLogins int `json:"denied_logins"`
	// RecentEvents — последние события журнала аутентификации.
	RecentEvents []*model.AuthEvent `json:"recent_events"`
	// GeneratedAt — момент сбора счётчиков.
	GeneratedAt time.Time `json:"generated_at"`
}

// ProductCounter — счётчики товаров.
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// OrderStats — счётчики и выборки заказов для дашборда.
type OrderStats interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	List(ctx context.Context, limit int64) ([]*model.Order, error)
	ListSince(ctx context.Context, since time.Time) ([]*model.Order, error)
}

// CustomerCounter — счётчик покупателей.
type CustomerCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AuthAudit — журнал аутентификации для дашборда.
type AuthAudit interface {
	CountDeniedSince(ctx context.Context, since time.Time) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*model.AuthEvent, error)
}

// StatsService — сервис агрегатов дашборда.
type StatsService struct {
	products  ProductCounter
	orders    OrderStats
	customers CustomerCounter
	audit     AuthAudit
	cache     *cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

// NewStatsService создаёт сервис агрегатов.
// cache может быть nil — счётчики тогда собираются на каждый запрос.
func NewStatsService(
	products ProductCounter,
	orders OrderStats,
	customers CustomerCounter,
	audit AuthAudit,
	c *cache.Cache,
	ttl time.Duration,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		products:  products,
		orders:    orders,
		customers: customers,
		audit:     audit,
		cache:     c,
		ttl:       ttl,
		logger:    logger.With(slog.String("component", "stats_service")),
	}
}

// Dashboard возвращает счётчики дашборда, по возможности из кеша.
// Сбой кеша не мешает собрать счётчики напрямую.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if err != cache.ErrMiss {
			s.logger.Warn("Ошибка чтения кеша агрегатов",
				slog.String("error", err.Error()),
			)
		}
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("Ошибка записи кеша агрегатов",
				slog.String("error", err.Error()),
			)
		}
	}

	return stats, nil
}

// Invalidate сбрасывает кеш агрегатов (после изменения данных).
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Ошибка инвалидации кеша агрегатов",
			slog.String("error", err.Error()),
		)
	}
}

// collect собирает счётчики из хранилищ.
func (s *StatsService) collect(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().UTC()}

	var err error
	if stats.Products, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт товаров: %w", err)
	}
	if stats.LowStock, err = s.products.CountLowStock(ctx, lowStockThreshold); err != nil {
		return nil, fmt.Errorf("подсчёт товаров с низким остатком: %w", err)
	}
	if stats.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт заказов: %w", err)
	}
	if stats.PendingOrders, err = s.orders.CountByStatus(ctx, model.OrderStatusPending); err != nil {
		return nil, fmt.Errorf("подсчёт ожидающих заказов: %w", err)
	}
	if stats.Customers, err = s.customers.Count(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт покупателей: %w", err)
	}

	if stats.RecentOrders, err = s.orders.List(ctx, recentOrdersLimit); err != nil {
		return nil, fmt.Errorf("выборка последних заказов: %w", err)
	}

	// Выручка: сумма по доставленным заказам за период
	period, err := s.orders.ListSince(ctx, stats.GeneratedAt.Add(-revenuePeriod))
	if err != nil {
		return nil, fmt.Errorf("выборка заказов за период: %w", err)
	}
	for _, order := range period {
		if order.Status == model.OrderStatusDelivered {
			stats.Revenue += order.Total
		}
	}

	// Журнал аудита — не критичный блок: без PostgreSQL дашборд
	// всё равно показывается
	if s.audit != nil {
		denied, err := s.audit.CountDeniedSince(ctx, stats.GeneratedAt.Add(-24*time.Hour))
		if err != nil {
			s.logger.Warn("Не удалось посчитать отказы в доступе",
				slog.String("error", err.Error()),
			)
		} else {
			stats.DeniedLogins = denied
		}

		events, err := s.audit.ListRecent(ctx, recentEventsLimit)
		if err != nil {
			s.logger.Warn("Не удалось прочитать журнал аутентификации",
				slog.String("error", err.Error()),
			)
		} else {
			stats.RecentEvents = events
		}
	}

	return stats, nil
}
