// customers.go — сервис покупателей: просмотр и блокировка аккаунтов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// CustomerStore — хранилище покупателей.
type CustomerStore interface {
	List(ctx context.Context) ([]*model.Customer, error)
	Get(ctx context.Context, id string) (*model.Customer, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// CustomerService — сервис покупателей.
type CustomerService struct {
	customers CustomerStore
	orders    OrderStore
	logger    *slog.Logger
}

// NewCustomerService создаёт сервис покупателей.
func NewCustomerService(customers CustomerStore, orders OrderStore, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		orders:    orders,
		logger:    logger.With(slog.String("component", "customer_service")),
	}
}

// ListCustomers возвращает покупателей с количеством заказов каждого.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка покупателей: %w", err)
	}

	for _, c := range customers {
		orders, err := s.orders.ListByUser(ctx, c.ID)
		if err != nil {
			s.logger.Warn("Не удалось посчитать заказы покупателя",
				slog.String("customer_id", c.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		c.OrdersCount = len(orders)
	}

	return customers, nil
}

// GetCustomer возвращает покупателя с его заказами.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*model.Customer, []*model.Order, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("получение покупателя: %w", err)
	}

	orders, err := s.orders.ListByUser(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("получение заказов покупателя: %w", err)
	}
	customer.OrdersCount = len(orders)

	return customer, orders, nil
}

// SetCustomerActive блокирует или разблокирует аккаунт покупателя.
func (s *CustomerService) SetCustomerActive(ctx context.Context, id string, active bool) error {
	if err := s.customers.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("изменение статуса покупателя: %w", err)
	}

	s.logger.Info("Статус аккаунта покупателя изменён",
		slog.String("customer_id", id),
		slog.Bool("active", active),
	)
	return nil
}
