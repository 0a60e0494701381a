// orders.go — раздел заказов: список, детали, смена статуса.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// ordersPageLimit — сколько заказов показывает список.
const ordersPageLimit = 200

// OrdersHandler — обработчики раздела заказов.
type OrdersHandler struct {
	pageRenderer
	orders *service.OrderService
}

// NewOrdersHandler создаёт новый OrdersHandler.
func NewOrdersHandler(orders *service.OrderService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_orders")),
		},
		orders: orders,
	}
}

// orderDetailData — данные страницы заказа.
type orderDetailData struct {
	Order *model.Order
	// Statuses — статусы для селекта смены статуса.
	Statuses []string
}

// orderStatuses — порядок статусов в селекте.
var orderStatuses = []string{
	model.OrderStatusNew,
	model.OrderStatusPending,
	model.OrderStatusProcessing,
	model.OrderStatusDelivering,
	model.OrderStatusDelivered,
	model.OrderStatusCancelled,
}

// Render — рендерер раздела orders для nav.Controller.
func (h *OrdersHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	orders, err := h.orders.ListOrders(r.Context(), ordersPageLimit)
	if err != nil {
		h.logger.Error("Ошибка загрузки заказов", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "orders", orders)
}

// ShowDetail — GET /admin/orders/{id}
func (h *OrdersHandler) ShowDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/orders", "common.not_found")
			return
		}
		h.logger.Error("Ошибка загрузки заказа",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view := sessionView(r, authz.SectionOrders)
	h.render(w, r, view, "order_detail", &orderDetailData{
		Order:    order,
		Statuses: orderStatuses,
	})
}

// HandleStatus — POST /admin/orders/{id}/status
func (h *OrdersHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/orders/"+id, "common.error")
		return
	}

	status := r.PostFormValue("status")
	if err := h.orders.UpdateOrderStatus(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			redirectError(w, r, "/admin/orders", "common.not_found")
		case errors.Is(err, service.ErrInvalidStatus):
			redirectError(w, r, "/admin/orders/"+id, "common.error")
		default:
			h.logger.Error("Ошибка смены статуса заказа",
				slog.String("id", id),
				slog.String("status", status),
				slog.String("error", err.Error()),
			)
			redirectError(w, r, "/admin/orders/"+id, "common.error")
		}
		return
	}

	redirectFlash(w, r, "/admin/orders/"+id, "common.saved")
}
