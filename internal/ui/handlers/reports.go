// reports.go — раздел отчётов: продажи за период.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// defaultReportPeriod — период отчёта по умолчанию (30 дней).
const defaultReportPeriod = 30 * 24 * time.Hour

// ReportsHandler — рендерер раздела отчётов.
type ReportsHandler struct {
	pageRenderer
	reports *service.ReportService
}

// NewReportsHandler создаёт новый ReportsHandler.
func NewReportsHandler(reports *service.ReportService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_reports")),
		},
		reports: reports,
	}
}

// Render — рендерер раздела reports для nav.Controller.
// Параметр days задаёт глубину отчёта.
func (h *ReportsHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	period := defaultReportPeriod
	if days := r.URL.Query().Get("days"); days != "" {
		if d, err := time.ParseDuration(days + "h"); err == nil && d > 0 {
			period = d * 24
		}
	}

	report, err := h.reports.Sales(r.Context(), time.Now().Add(-period))
	if err != nil {
		h.logger.Error("Ошибка построения отчёта", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, view, "reports", report)
}
