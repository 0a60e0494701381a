// customers.go — раздел покупателей: список с числом заказов,
// блокировка и разблокировка аккаунтов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// CustomersHandler — обработчики раздела покупателей.
type CustomersHandler struct {
	pageRenderer
	customers *service.CustomerService
}

// NewCustomersHandler создаёт новый CustomersHandler.
func NewCustomersHandler(customers *service.CustomerService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *CustomersHandler {
	return &CustomersHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_customers")),
		},
		customers: customers,
	}
}

// Render — рендерер раздела users для nav.Controller.
func (h *CustomersHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки покупателей", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "users", customers)
}

// HandleBlock — POST /admin/users/{id}/block
func (h *CustomersHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// HandleUnblock — POST /admin/users/{id}/unblock
func (h *CustomersHandler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *CustomersHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")

	if err := h.customers.SetCustomerActive(r.Context(), id, active); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/users", "common.not_found")
			return
		}
		h.logger.Error("Ошибка смены статуса покупателя",
			slog.String("id", id),
			slog.Bool("active", active),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/users", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/users", "common.saved")
}
