// dashboard.go — страница обзора: метрики магазина.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// DashboardHandler — рендерер раздела dashboard.
type DashboardHandler struct {
	pageRenderer
	stats *service.StatsService
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(stats *service.StatsService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_dashboard")),
		},
		stats: stats,
	}
}

// Render — рендерер раздела dashboard для nav.Controller.
func (h *DashboardHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Ошибка сбора метрик", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "dashboard", stats)
}
