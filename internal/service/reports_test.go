package service

import (
	"context"
	"testing"
	"time"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// fakeOrderHistory — выборка заказов для тестов отчётов.
type fakeOrderHistory struct {
	orders []*model.Order
}

func (f *fakeOrderHistory) ListSince(_ context.Context, _ time.Time) ([]*model.Order, error) {
	return f.orders, nil
}

// TestSalesReport проверяет построение отчёта по продажам.
func TestSalesReport(t *testing.T) {
	history := &fakeOrderHistory{orders: []*model.Order{
		{
			Status: model.OrderStatusDelivered,
			Total:  300,
			Items: []model.OrderItem{
				{Name: "Помидоры", Price: 100, Quantity: 2},
				{Name: "Огурцы", Price: 50, Quantity: 2},
			},
		},
		{
			Status: model.OrderStatusDelivered,
			Total:  100,
			Items: []model.OrderItem{
				{Name: "Помидоры", Price: 100, Quantity: 1},
			},
		},
		{Status: model.OrderStatusCancelled, Total: 500},
		{Status: model.OrderStatusPending, Total: 200},
	}}

	svc := NewReportService(history, testLogger())

	report, err := svc.Sales(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Ошибка построения отчёта: %v", err)
	}

	if report.OrdersTotal != 4 {
		t.Errorf("OrdersTotal: want 4, got %d", report.OrdersTotal)
	}
	// Выручка только по доставленным заказам
	if report.Revenue != 400 {
		t.Errorf("Revenue: want 400, got %v", report.Revenue)
	}
	if report.Cancelled != 1 {
		t.Errorf("Cancelled: want 1, got %d", report.Cancelled)
	}
	if report.ByStatus[model.OrderStatusPending] != 1 {
		t.Errorf("ByStatus[pending]: want 1, got %d", report.ByStatus[model.OrderStatusPending])
	}

	if len(report.TopProducts) != 2 {
		t.Fatalf("Ожидалось 2 товара в топе, получено %d", len(report.TopProducts))
	}
	// Помидоры проданы 3 штуки — первые в топе
	if report.TopProducts[0].Name != "Помидоры" || report.TopProducts[0].Quantity != 3 {
		t.Errorf("Топ продаж: want Помидоры/3, got %s/%d",
			report.TopProducts[0].Name, report.TopProducts[0].Quantity)
	}
	if report.TopProducts[0].Revenue != 300 {
		t.Errorf("Выручка по товару: want 300, got %v", report.TopProducts[0].Revenue)
	}
}

// TestSalesReportEmpty проверяет отчёт без заказов.
func TestSalesReportEmpty(t *testing.T) {
	svc := NewReportService(&fakeOrderHistory{}, testLogger())

	report, err := svc.Sales(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Ошибка построения отчёта: %v", err)
	}
	if report.OrdersTotal != 0 || report.Revenue != 0 {
		t.Errorf("Пустой период: want нулевые счётчики, got %+v", report)
	}
	if len(report.TopProducts) != 0 {
		t.Errorf("Топ продаж должен быть пустым, получено %d позиций", len(report.TopProducts))
	}
}
