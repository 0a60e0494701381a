// settings.go — раздел настроек магазина: секции «магазин», «доставка»,
// «оплата», «социальные сети». Каждая секция сохраняется отдельной формой
// с merge-семантикой: остальные секции не затираются.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// SettingsHandler — обработчики раздела настроек.
type SettingsHandler struct {
	pageRenderer
	store *service.StoreService
}

// NewSettingsHandler создаёт новый SettingsHandler.
func NewSettingsHandler(store *service.StoreService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_settings")),
		},
		store: store,
	}
}

// Render — рендерер раздела settings для nav.Controller.
func (h *SettingsHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки настроек", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "settings", settings)
}

// HandleStore — POST /admin/settings/store
func (h *SettingsHandler) HandleStore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/settings", "common.error")
		return
	}

	err := h.store.UpdateStoreSection(r.Context(),
		r.PostFormValue("name"),
		r.PostFormValue("email"),
		r.PostFormValue("phone"),
		r.PostFormValue("address"),
	)
	h.finish(w, r, "store", err)
}

// HandleShipping — POST /admin/settings/shipping
func (h *SettingsHandler) HandleShipping(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/settings", "common.error")
		return
	}

	baseCost, _ := strconv.ParseFloat(r.PostFormValue("base_cost"), 64)
	freeThreshold, _ := strconv.ParseFloat(r.PostFormValue("free_threshold"), 64)
	days, _ := strconv.Atoi(r.PostFormValue("days"))

	err := h.store.UpdateShippingSection(r.Context(), baseCost, freeThreshold, days)
	h.finish(w, r, "shipping", err)
}

// HandlePayment — POST /admin/settings/payment
// Пустой API-ключ не затирает сохранённый.
func (h *SettingsHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/settings", "common.error")
		return
	}

	err := h.store.UpdatePaymentSection(r.Context(),
		r.PostFormValue("card_enabled") != "",
		r.PostFormValue("api_key"),
		r.PostFormValue("cash_enabled") != "",
	)
	h.finish(w, r, "payment", err)
}

// HandleSocial — POST /admin/settings/social
func (h *SettingsHandler) HandleSocial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/settings", "common.error")
		return
	}

	err := h.store.UpdateSocialSection(r.Context(),
		r.PostFormValue("facebook"),
		r.PostFormValue("twitter"),
		r.PostFormValue("instagram"),
		r.PostFormValue("whatsapp"),
	)
	h.finish(w, r, "social", err)
}

func (h *SettingsHandler) finish(w http.ResponseWriter, r *http.Request, section string, err error) {
	if err != nil {
		h.logger.Error("Ошибка сохранения настроек",
			slog.String("section", section),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/settings", "common.error")
		return
	}
	redirectFlash(w, r, "/admin/settings", "common.saved")
}
