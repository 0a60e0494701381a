// handler.go — обработчики JSON API /api/v1.
// Read-only доступ к каталогу и заказам для интеграций плюс /me
// с актуальной ролью из реестра.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/akolesov/lavka-admin/internal/api/errors"
	"github.com/akolesov/lavka-admin/internal/api/middleware"
	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/service"
)

// defaultOrdersLimit — лимит выдачи заказов по умолчанию.
const defaultOrdersLimit = 100

// maxOrdersLimit — максимальный лимит выдачи заказов.
const maxOrdersLimit = 1000

// APIHandler — основной обработчик JSON API.
type APIHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	offers  *service.OfferService
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	catalog *service.CatalogService,
	orders *service.OrderService,
	offers *service.OfferService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		catalog: catalog,
		orders:  orders,
		offers:  offers,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// meResponse — ответ GET /api/v1/me.
type meResponse struct {
	UID      string   `json:"uid"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Role     string   `json:"role"`
	Sections []string `json:"sections"`
}

// GetMe — GET /api/v1/me
// Возвращает identity вызывающего и разделы, доступные его роли.
func (h *APIHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	allowed := authz.AllowedSections(claims.Role)
	sections := make([]string, 0, len(allowed))
	for _, section := range authz.Sections() {
		if allowed[section] {
			sections = append(sections, section)
		}
	}

	writeJSON(w, http.StatusOK, meResponse{
		UID:      claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Role:     claims.Role,
		Sections: sections,
	})
}

// ListProducts — GET /api/v1/products
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки товаров", slog.String("error", err.Error()))
		apierrors.RegistryUnavailable(w, "Реестр товаров недоступен")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct — GET /api/v1/products/{id}
func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Товар не найден")
			return
		}
		h.logger.Error("Ошибка загрузки товара",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListOrders — GET /api/v1/orders?limit=N
func (h *APIHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultOrdersLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			apierrors.ValidationError(w, "limit должен быть положительным числом")
			return
		}
		if parsed > maxOrdersLimit {
			parsed = maxOrdersLimit
		}
		limit = parsed
	}

	orders, err := h.orders.ListOrders(r.Context(), limit)
	if err != nil {
		h.logger.Error("Ошибка загрузки заказов", slog.String("error", err.Error()))
		apierrors.RegistryUnavailable(w, "Реестр заказов недоступен")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder — GET /api/v1/orders/{id}
func (h *APIHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Заказ не найден")
			return
		}
		h.logger.Error("Ошибка загрузки заказа",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListActiveOffers — GET /api/v1/offers/active
// Акции, действующие в момент запроса.
func (h *APIHandler) ListActiveOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.ActiveOffers(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Ошибка загрузки акций", slog.String("error", err.Error()))
		apierrors.RegistryUnavailable(w, "Реестр акций недоступен")
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
