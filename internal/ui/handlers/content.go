// content.go — раздел контента главной страницы: баннер, «о магазине», контакты.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// ContentHandler — обработчики раздела контента.
type ContentHandler struct {
	pageRenderer
	store *service.StoreService
}

// NewContentHandler создаёт новый ContentHandler.
func NewContentHandler(store *service.StoreService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_content")),
		},
		store: store,
	}
}

// Render — рендерер раздела content для nav.Controller.
func (h *ContentHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	content, err := h.store.GetContent(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки контента", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "content", content)
}

// HandleBanner — POST /admin/content/banner
func (h *ContentHandler) HandleBanner(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	err := h.store.UpdateBanner(r.Context(),
		r.PostFormValue("title"),
		r.PostFormValue("subtitle"),
		r.PostFormValue("image_url"),
	)
	if err != nil {
		h.logger.Error("Ошибка сохранения баннера", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/content", "common.saved")
}

// HandleAbout — POST /admin/content/about
func (h *ContentHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	if err := h.store.UpdateAbout(r.Context(), r.PostFormValue("text")); err != nil {
		h.logger.Error("Ошибка сохранения текста «о магазине»", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/content", "common.saved")
}

// HandleContacts — POST /admin/content/contacts
func (h *ContentHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	if err := h.store.UpdateContacts(r.Context(), r.PostFormValue("text")); err != nil {
		h.logger.Error("Ошибка сохранения контактов", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/content", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/content", "common.saved")
}
