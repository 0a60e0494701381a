// Пакет middleware — HTTP middleware для Admin UI.
// auth.go — проверка UI-сессии (cookie-based), авто-refresh токенов и
// перепроверка прав администратора на каждый запрос.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyUISession — данные UI-сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// AdminResolver — перепроверка прав администратора по реестру.
type AdminResolver interface {
	ResolveAdminStatus(ctx context.Context, uid string) (authz.Status, *authz.Denial)
}

// TokenRefresher — обновление access token через refresh token.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*idp.TokenResponse, error)
}

// UIAuth — middleware для проверки аутентификации UI-пользователей.
// Извлекает сессию из зашифрованного cookie, при необходимости обновляет
// access token, затем заново определяет права по реестру администраторов.
// Роль в cookie — только подсказка: действующая роль берётся из реестра
// на каждом запросе, поэтому отзыв прав действует немедленно.
type UIAuth struct {
	sessionManager *auth.SessionManager
	refresher      TokenRefresher
	resolver       AdminResolver
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(
	sessionManager *auth.SessionManager,
	refresher TokenRefresher,
	resolver AdminResolver,
	logger *slog.Logger,
) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		refresher:      refresher,
		resolver:       resolver,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для проверки UI-сессии.
// Применяется к маршрутам /admin/*, кроме /admin/login и /admin/logout.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				ua.redirectToLogin(w, r)
				return
			}

			// 2. Если сессия отсутствует — redirect на login
			if session == nil {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}

			// 3. Проверяем срок действия access token
			if session.IsExpired() {
				refreshed, refreshErr := ua.refreshSession(r.Context(), session)
				if refreshErr != nil {
					ua.logger.Info("Не удалось обновить сессию, redirect на login",
						slog.String("username", session.Username),
						slog.String("error", refreshErr.Error()),
					)
					ua.redirectToLogin(w, r)
					return
				}

				if err := ua.sessionManager.SetSessionCookie(w, refreshed); err != nil {
					ua.logger.Error("Ошибка обновления session cookie",
						slog.String("error", err.Error()),
					)
					ua.redirectToLogin(w, r)
					return
				}

				session = refreshed
				ua.logger.Debug("Сессия обновлена через refresh token",
					slog.String("username", session.Username),
				)
			}

			// 4. Перепроверяем права по реестру администраторов.
			// Любой сбой закрывает доступ.
			status, denial := ua.resolver.ResolveAdminStatus(r.Context(), session.UID)
			if !status.IsAdmin {
				reason := string(authz.ReasonUnknown)
				if denial != nil {
					reason = string(denial.Reason)
				}
				ua.logger.Warn("Сессия с отозванными правами администратора",
					slog.String("uid", session.UID),
					slog.String("username", session.Username),
					slog.String("reason", reason),
				)
				ua.redirectToLogin(w, r)
				return
			}

			// Роль могла измениться с момента входа — в контекст идёт
			// актуальная из реестра
			session.Role = status.Role

			// 5. Помещаем сессию в контекст
			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin очищает session cookie и уводит на форму логина.
func (ua *UIAuth) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ua.sessionManager.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// refreshSession обновляет access token через refresh token провайдера.
// Возвращает обновлённую SessionData или ошибку.
func (ua *UIAuth) refreshSession(ctx context.Context, session *auth.SessionData) (*auth.SessionData, error) {
	tokenResp, err := ua.refresher.RefreshTokens(ctx, session.RefreshToken)
	if err != nil {
		return nil, err
	}

	// Обновляем токены, сохраняя данные пользователя
	return &auth.SessionData{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second).Unix(),
		UID:          session.UID,
		Username:     session.Username,
		Email:        session.Email,
		Role:         session.Role,
	}, nil
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (не прошёл через UIAuth middleware).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}
