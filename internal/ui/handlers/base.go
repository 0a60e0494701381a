// Пакет handlers — HTTP-обработчики Admin UI.
// Страницы разделов рендерятся через nav.Controller: каждый раздел
// регистрирует свой рендерер, а маршрут /admin/{section} направляет
// запрос в рендерер фактически разрешённого раздела.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/middleware"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// pageRenderer — общая часть всех обработчиков страниц: шаблоны,
// переводы и сборка PageData из запроса.
type pageRenderer struct {
	tmpl   *templates.Templates
	bundle *i18n.Bundle
	logger *slog.Logger
}

// render выполняет шаблон страницы name.
// Flash и error берутся из query-параметров редиректа и переводятся
// как ключи каталога на язык запроса.
func (p *pageRenderer) render(w http.ResponseWriter, r *http.Request, view *nav.SessionView, name string, data any) {
	lang := i18n.LangFromContext(r.Context())

	var flash, errorMsg string
	if key := r.URL.Query().Get("flash"); key != "" {
		flash = p.bundle.Translate(lang, key)
	}
	if key := r.URL.Query().Get("error"); key != "" {
		errorMsg = p.bundle.Translate(lang, key)
	}

	p.renderPage(w, r, view, name, data, flash, errorMsg)
}

// renderPage выполняет шаблон с готовыми (уже переведёнными) сообщениями.
func (p *pageRenderer) renderPage(w http.ResponseWriter, r *http.Request, view *nav.SessionView, name string, data any, flash, errorMsg string) {
	page := &templates.PageData{
		Lang:  i18n.LangFromContext(r.Context()),
		View:  view,
		Data:  data,
		Flash: flash,
		Error: errorMsg,
	}

	if err := p.tmpl.Render(w, name, page); err != nil {
		p.logger.Error("Ошибка рендеринга страницы",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// sessionView собирает SessionView из сессии запроса для страниц,
// живущих вне таблицы nav.Controller (формы редактирования, детали).
// Раздел section подсвечивается в меню как активный.
func sessionView(r *http.Request, section string) *nav.SessionView {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		return nav.NewSessionView("", "", "", "", section)
	}
	return nav.NewSessionView(session.UID, session.Username, session.Email, session.Role, section)
}

// redirectFlash делает редирект на path с flash-сообщением.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, flashKey string) {
	http.Redirect(w, r, path+"?flash="+flashKey, http.StatusSeeOther)
}

// redirectError делает редирект на path с сообщением об ошибке.
func redirectError(w http.ResponseWriter, r *http.Request, path, errorKey string) {
	http.Redirect(w, r, path+"?error="+errorKey, http.StatusSeeOther)
}
