// Пакет authz — авторизация администраторов и таблица возможностей ролей.
// Правила: доступ даёт только literal boolean true в поле isAdmin
// при active !== false; любая неоднозначность или ошибка чтения реестра
// трактуется как отказ (fail-closed). Роль определяет набор доступных
// разделов панели.
package authz

import "github.com/akolesov/lavka-admin/internal/domain/model"

// Роли в порядке возрастания привилегий.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Идентификаторы разделов панели.
const (
	SectionDashboard  = "dashboard"
	SectionProducts   = "products"
	SectionCategories = "categories"
	SectionOrders     = "orders"
	SectionUsers      = "users"
	SectionOffers     = "offers"
	SectionReports    = "reports"
	SectionContent    = "content"
	SectionSettings   = "settings"
)

// allSections — все определённые разделы в порядке отображения меню.
var allSections = []string{
	SectionDashboard,
	SectionProducts,
	SectionCategories,
	SectionOrders,
	SectionUsers,
	SectionOffers,
	SectionReports,
	SectionContent,
	SectionSettings,
}

// adminSections — сокращённый набор разделов для роли admin.
// Dashboard входит в набор каждой роли — инвариант таблицы возможностей.
var adminSections = []string{
	SectionDashboard,
	SectionProducts,
	SectionCategories,
	SectionOrders,
	SectionOffers,
}

// Status — результат проверки прав администратора.
type Status struct {
	// IsAdmin — true только если isAdmin === true и active !== false.
	IsAdmin bool
	// Role — эффективная роль (admin, super_admin). Пустая строка при отказе.
	Role string
}

// DenialReason — классифицированная причина отказа в доступе.
type DenialReason string

const (
	// ReasonRecordMissing — документ администратора отсутствует в реестре.
	ReasonRecordMissing DenialReason = "record_missing"
	// ReasonFieldMissing — поле isAdmin отсутствует в документе.
	ReasonFieldMissing DenialReason = "field_missing"
	// ReasonFieldWrongType — поле имеет неверный тип (например, строка "true").
	ReasonFieldWrongType DenialReason = "field_wrong_type"
	// ReasonFieldFalse — поле явно равно false.
	ReasonFieldFalse DenialReason = "field_false"
	// ReasonUnknown — причину определить не удалось (ошибка чтения реестра и т.п.).
	ReasonUnknown DenialReason = "unknown"
)

// Denial — диагностика отказа: причина, проблемное поле и uid пользователя.
// Диагностика намеренно подробная — она позволяет оператору исправить
// реестр администраторов без доступа к серверным логам.
type Denial struct {
	Reason DenialReason
	// Field — имя проблемного поля реестра ("isAdmin", "active"). Может быть пустым.
	Field string
	// UID — идентификатор пользователя, для которого проверялся доступ.
	UID string
}

// Evaluate применяет инвариант доступа к записи реестра.
// rec == nil означает отсутствующий документ.
// Возвращает статус и, при отказе, классифицированную диагностику.
func Evaluate(rec *model.AdminRecord) (Status, *Denial) {
	if rec == nil {
		return Status{}, &Denial{Reason: ReasonRecordMissing}
	}

	switch rec.IsAdmin {
	case model.FieldAbsent:
		return Status{}, &Denial{Reason: ReasonFieldMissing, Field: "isAdmin", UID: rec.UID}
	case model.FieldWrongType:
		return Status{}, &Denial{Reason: ReasonFieldWrongType, Field: "isAdmin", UID: rec.UID}
	case model.FieldFalse:
		return Status{}, &Denial{Reason: ReasonFieldFalse, Field: "isAdmin", UID: rec.UID}
	}

	// isAdmin === true; active === false отзывает доступ, отсутствие поля — нет.
	if rec.Active == model.FieldFalse {
		return Status{}, &Denial{Reason: ReasonFieldFalse, Field: "active", UID: rec.UID}
	}
	if rec.Active == model.FieldWrongType {
		// Неверный тип active трактуем fail-closed, как и для isAdmin.
		return Status{}, &Denial{Reason: ReasonFieldWrongType, Field: "active", UID: rec.UID}
	}

	return Status{IsAdmin: true, Role: NormalizeRole(rec.Role)}, nil
}

// NormalizeRole приводит сохранённое значение роли к допустимому:
// super_admin остаётся как есть, всё остальное (включая пустое) — admin.
func NormalizeRole(role string) string {
	if role == RoleSuperAdmin {
		return RoleSuperAdmin
	}
	return RoleAdmin
}

// Sections возвращает все определённые разделы в порядке меню.
func Sections() []string {
	out := make([]string, len(allSections))
	copy(out, allSections)
	return out
}

// AllowedSections возвращает набор разделов, доступных роли.
// super_admin — полный набор, admin — сокращённый, прочее — пустой набор
// (пустой набор выше по стеку приводит к принудительному выходу).
func AllowedSections(role string) map[string]bool {
	var list []string
	switch role {
	case RoleSuperAdmin:
		list = allSections
	case RoleAdmin:
		list = adminSections
	default:
		return map[string]bool{}
	}

	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

// IsSection проверяет, определён ли раздел с указанным идентификатором.
func IsSection(id string) bool {
	for _, s := range allSections {
		if s == id {
			return true
		}
	}
	return false
}
