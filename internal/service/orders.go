// orders.go — сервис заказов: просмотр и смена статусов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// OrderStore — хранилище заказов.
type OrderStore interface {
	List(ctx context.Context, limit int64) ([]*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// OrderService — сервис заказов.
type OrderService struct {
	orders OrderStore
	stats  StatsInvalidator
	logger *slog.Logger
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(orders OrderStore, stats StatsInvalidator, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		stats:  stats,
		logger: logger.With(slog.String("component", "order_service")),
	}
}

// ListOrders возвращает последние заказы (новые первыми).
func (s *OrderService) ListOrders(ctx context.Context, limit int64) ([]*model.Order, error) {
	orders, err := s.orders.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("получение списка заказов: %w", err)
	}
	return orders, nil
}

// ListOrdersByUser возвращает заказы покупателя.
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение заказов покупателя: %w", err)
	}
	return orders, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение заказа: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus меняет статус заказа на один из допустимых.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if !model.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("смена статуса заказа: %w", err)
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	s.logger.Info("Статус заказа изменён",
		slog.String("order_id", id),
		slog.String("status", status),
	)
	return nil
}
