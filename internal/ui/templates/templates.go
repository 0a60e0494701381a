// Пакет templates — HTML-шаблоны Admin UI (html/template, embed).
// Каждая страница — именованный шаблон, собирающийся из общих партиалов
// (шапка, меню, подвал). Меню строится по AllowedSections: закрытые
// разделы в разметку не попадают.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/akolesov/lavka-admin/internal/assetstore"
	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
)

//go:embed views/*.html
var viewsFS embed.FS

// PageData — данные любой страницы Admin UI.
type PageData struct {
	// Lang — язык интерфейса (en, ru).
	Lang string
	// View — пользователь, его разделы и активный раздел. Nil на форме логина.
	View *nav.SessionView
	// Data — данные конкретной страницы.
	Data any
	// Flash — сообщение об успешном действии.
	Flash string
	// Error — сообщение об ошибке.
	Error string
}

// Templates — скомпилированный набор шаблонов Admin UI.
type Templates struct {
	set *template.Template
}

// New парсит встроенные шаблоны.
// bundle используется функциями перевода t/tf внутри шаблонов.
func New(bundle *i18n.Bundle) (*Templates, error) {
	funcs := template.FuncMap{
		"t":        bundle.Translate,
		"tf":       bundle.Translatef,
		"thumb":    assetstore.ThumbURL,
		"medium":   assetstore.MediumURL,
		"sections": authz.Sections,
	}

	set, err := template.New("").Funcs(funcs).ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблонов: %w", err)
	}

	return &Templates{set: set}, nil
}

// Render выполняет именованный шаблон страницы.
func (t *Templates) Render(w io.Writer, name string, data *PageData) error {
	if err := t.set.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("ошибка рендеринга шаблона %s: %w", name, err)
	}
	return nil
}
