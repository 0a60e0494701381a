// Пакет nav — навигация Admin UI по разделам.
// Контроллер держит таблицу рендереров разделов и направляет запрос ровно
// в один из них. Запрос недоступного раздела молча уводится на dashboard —
// пользователь не видит ошибки, меню и так не показывает закрытые разделы.
package nav

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
)

// SessionView — данные для рендеринга страницы раздела: кто смотрит,
// какие разделы ему доступны и какой раздел активен.
type SessionView struct {
	// UID — идентификатор пользователя.
	UID string
	// Username — имя пользователя (для шапки).
	Username string
	// Email — email пользователя.
	Email string
	// Role — актуальная роль администратора.
	Role string
	// AllowedSections — разделы, доступные роли (для меню).
	AllowedSections map[string]bool
	// ActiveSection — активный раздел (для подсветки пункта меню).
	ActiveSection string
}

// NewSessionView собирает SessionView для пользователя с данной ролью.
// requested — запрошенный раздел; недоступный заменяется на dashboard.
func NewSessionView(uid, username, email, role, requested string) *SessionView {
	return &SessionView{
		UID:             uid,
		Username:        username,
		Email:           email,
		Role:            role,
		AllowedSections: authz.AllowedSections(role),
		ActiveSection:   Resolve(role, requested),
	}
}

// Resolve определяет фактический раздел для запрошенного.
// Неизвестный или недоступный роли раздел молча заменяется на dashboard.
func Resolve(role, requested string) string {
	if !authz.IsSection(requested) {
		return authz.SectionDashboard
	}
	if !authz.AllowedSections(role)[requested] {
		return authz.SectionDashboard
	}
	return requested
}

// Renderer — рендерер одного раздела Admin UI.
type Renderer func(w http.ResponseWriter, r *http.Request, view *SessionView)

// Controller — контроллер навигации. Держит таблицу рендереров по разделам.
type Controller struct {
	renderers map[string]Renderer
	logger    *slog.Logger
}

// NewController создаёт контроллер навигации с пустой таблицей рендереров.
func NewController(logger *slog.Logger) *Controller {
	return &Controller{
		renderers: make(map[string]Renderer),
		logger:    logger.With(slog.String("component", "nav_controller")),
	}
}

// Register регистрирует рендерер раздела.
// Неизвестный раздел или повторная регистрация — ошибка конфигурации.
func (c *Controller) Register(section string, renderer Renderer) error {
	if !authz.IsSection(section) {
		return fmt.Errorf("неизвестный раздел: %q", section)
	}
	if _, exists := c.renderers[section]; exists {
		return fmt.Errorf("повторная регистрация раздела: %q", section)
	}
	c.renderers[section] = renderer
	return nil
}

// NavigateTo направляет запрос в рендерер активного раздела view.
// Вызывается ровно один рендерер; отсутствие рендерера для известного
// раздела — ошибка сборки маршрутов.
func (c *Controller) NavigateTo(w http.ResponseWriter, r *http.Request, view *SessionView) {
	renderer, ok := c.renderers[view.ActiveSection]
	if !ok {
		c.logger.Error("Рендерер раздела не зарегистрирован",
			slog.String("section", view.ActiveSection),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderer(w, r, view)
}
