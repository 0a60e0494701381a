// categories.go — раздел категорий каталога.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// CategoriesHandler — обработчики раздела категорий.
type CategoriesHandler struct {
	pageRenderer
	catalog *service.CatalogService
}

// NewCategoriesHandler создаёт новый CategoriesHandler.
func NewCategoriesHandler(catalog *service.CatalogService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_categories")),
		},
		catalog: catalog,
	}
}

// Render — рендерер раздела categories для nav.Controller.
func (h *CategoriesHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки категорий", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "categories", categories)
}

// HandleCreate — POST /admin/categories
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/categories", "common.error")
		return
	}

	order, _ := strconv.Atoi(r.PostFormValue("order"))
	category := &model.Category{
		Name:  r.PostFormValue("name"),
		Order: order,
	}

	if err := h.catalog.CreateCategory(r.Context(), category); err != nil {
		h.logger.Error("Ошибка создания категории", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/categories", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/categories", "common.saved")
}

// HandleDelete — POST /admin/categories/{id}/delete
func (h *CategoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/categories", "common.not_found")
			return
		}
		h.logger.Error("Ошибка удаления категории",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/categories", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/categories", "common.saved")
}
