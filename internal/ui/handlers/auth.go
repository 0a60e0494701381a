// auth.go — вход и выход из панели администратора.
// Вход по логину/паролю через IdP (grant_type=password); права администратора
// проверяются по реестру перед выдачей сессии.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/auth"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// AuthHandler — обработчики аутентификации Admin UI.
type AuthHandler struct {
	access   *service.AccessService
	sessions *auth.SessionManager
	tmpl     *templates.Templates
	bundle   *i18n.Bundle
	logger   *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	access *service.AccessService,
	sessions *auth.SessionManager,
	tmpl *templates.Templates,
	bundle *i18n.Bundle,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		access:   access,
		sessions: sessions,
		tmpl:     tmpl,
		bundle:   bundle,
		logger:   logger.With(slog.String("component", "ui_auth")),
	}
}

// ShowLogin — GET /admin/login
// Показывает форму входа. Уже залогиненного пользователя уводит на dashboard.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessions.GetSessionFromRequest(r); err == nil && session != nil && !session.IsExpired() {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, "")
}

// HandleLogin — POST /admin/login
// Аутентифицирует пользователя, проверяет права администратора и выдаёт сессию.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, h.translate(r, "login.error.internal"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	result, err := h.access.Authenticate(r.Context(), username, password)
	if err != nil {
		h.renderLogin(w, r, h.loginErrorMessage(r, err))
		return
	}

	session := &auth.SessionData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt.Unix(),
		UID:          result.UID,
		Username:     result.Username,
		Email:        result.Email,
		Role:         result.Role,
	}
	if err := h.sessions.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка установки сессионной cookie", slog.String("error", err.Error()))
		h.renderLogin(w, r, h.translate(r, "login.error.internal"))
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// HandleLogout — POST /admin/logout
// Отзывает refresh-токен в IdP и очищает сессию.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessions.GetSessionFromRequest(r); err == nil && session != nil {
		h.access.Logout(r.Context(), session.UID, session.Username, session.RefreshToken)
	}
	h.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// loginErrorMessage переводит ошибку входа в сообщение для пользователя.
// Отказ в правах администратора получает конкретное объяснение причины.
func (h *AuthHandler) loginErrorMessage(r *http.Request, err error) string {
	lang := i18n.LangFromContext(r.Context())

	var notAuthorized *service.NotAuthorizedError
	if errors.As(err, &notAuthorized) {
		d := notAuthorized.Denial
		switch d.Reason {
		case authz.ReasonRecordMissing:
			return h.bundle.Translatef(lang, "denied.record_missing", d.UID)
		case authz.ReasonFieldMissing:
			return h.bundle.Translatef(lang, "denied.field_missing", d.Field)
		case authz.ReasonFieldWrongType:
			return h.bundle.Translatef(lang, "denied.field_wrong_type", d.Field)
		case authz.ReasonFieldFalse:
			return h.bundle.Translatef(lang, "denied.field_false", d.Field)
		default:
			return h.bundle.Translate(lang, "denied.unknown")
		}
	}

	switch {
	case errors.Is(err, idp.ErrInvalidCredentials):
		return h.bundle.Translate(lang, "login.error.invalid_credentials")
	case errors.Is(err, idp.ErrRateLimited):
		return h.bundle.Translate(lang, "login.error.rate_limited")
	case errors.Is(err, service.ErrIDPUnavailable):
		return h.bundle.Translate(lang, "login.error.idp_unavailable")
	default:
		h.logger.Error("Ошибка входа", slog.String("error", err.Error()))
		return h.bundle.Translate(lang, "login.error.internal")
	}
}

func (h *AuthHandler) translate(r *http.Request, key string) string {
	return h.bundle.Translate(i18n.LangFromContext(r.Context()), key)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, errorMsg string) {
	page := &templates.PageData{
		Lang:  i18n.LangFromContext(r.Context()),
		Error: errorMsg,
	}
	if err := h.tmpl.Render(w, "login", page); err != nil {
		h.logger.Error("Ошибка рендеринга формы входа", slog.String("error", err.Error()))
	}
}
