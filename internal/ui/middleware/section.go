// section.go — проверка доступа роли к разделу для маршрутов действий.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
)

// RequireSection пропускает запрос, только если раздел входит в набор
// доступных роли текущей сессии. POST из устаревшей или подделанной
// разметки проверяется так же, как навигация по страницам: недоступный
// раздел молча уводит на dashboard. Роль к этому моменту уже перечитана
// из реестра UIAuth middleware.
func (ua *UIAuth) RequireSection(section string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}

			if !authz.AllowedSections(session.Role)[section] {
				ua.logger.Warn("Запрос к недоступному разделу",
					slog.String("uid", session.UID),
					slog.String("role", session.Role),
					slog.String("section", section),
					slog.String("path", r.URL.Path),
				)
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
