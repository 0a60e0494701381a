// reports.go — отчёты по продажам за период.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// OrderHistory — выборка заказов за период.
type OrderHistory interface {
	ListSince(ctx context.Context, since time.Time) ([]*model.Order, error)
}

// SalesReport — отчёт по продажам за период.
type SalesReport struct {
	// From — начало периода.
	From time.Time `json:"from"`
	// To — конец периода (момент формирования).
	To time.Time `json:"to"`
	// OrdersTotal — количество заказов за период.
	OrdersTotal int `json:"orders_total"`
	// Revenue — выручка по доставленным заказам.
	Revenue float64 `json:"revenue"`
	// Cancelled — количество отменённых заказов.
	Cancelled int `json:"cancelled"`
	// ByStatus — распределение заказов по статусам.
	ByStatus map[string]int `json:"by_status"`
	// TopProducts — самые продаваемые товары (по убыванию штук).
	TopProducts []ProductSales `json:"top_products"`
}

// ProductSales — продажи одного товара.
type ProductSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// Количество позиций в топе продаж.
const topProductsLimit = 10

// ReportService — сервис отчётов.
type ReportService struct {
	orders OrderHistory
	logger *slog.Logger
}

// NewReportService создаёт сервис отчётов.
func NewReportService(orders OrderHistory, logger *slog.Logger) *ReportService {
	return &ReportService{
		orders: orders,
		logger: logger.With(slog.String("component", "report_service")),
	}
}

// Sales строит отчёт по продажам с момента from до текущего момента.
func (s *ReportService) Sales(ctx context.Context, from time.Time) (*SalesReport, error) {
	orders, err := s.orders.ListSince(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("выборка заказов за период: %w", err)
	}

	report := &SalesReport{
		From:     from,
		To:       time.Now().UTC(),
		ByStatus: make(map[string]int),
	}

	sales := make(map[string]*ProductSales)

	for _, order := range orders {
		report.OrdersTotal++
		report.ByStatus[order.Status]++

		switch order.Status {
		case model.OrderStatusCancelled:
			report.Cancelled++
		case model.OrderStatusDelivered:
			report.Revenue += order.Total
			for _, item := range order.Items {
				ps, ok := sales[item.Name]
				if !ok {
					ps = &ProductSales{Name: item.Name}
					sales[item.Name] = ps
				}
				ps.Quantity += item.Quantity
				ps.Revenue += item.Price * float64(item.Quantity)
			}
		}
	}

	report.TopProducts = topSales(sales, topProductsLimit)
	return report, nil
}

// topSales возвращает limit самых продаваемых товаров.
func topSales(sales map[string]*ProductSales, limit int) []ProductSales {
	top := make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		top = append(top, *ps)
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].Name < top[j].Name
	})

	if len(top) > limit {
		top = top[:limit]
	}
	return top
}
