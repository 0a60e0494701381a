// Пакет model — доменные модели Lavka Admin.
package model

import "time"

// FieldState — состояние поля документа реестра администраторов.
// Нужно для классификации причин отказа: поле может отсутствовать,
// иметь неверный тип или явное значение false.
type FieldState int

const (
	// FieldAbsent — поле отсутствует в документе.
	FieldAbsent FieldState = iota
	// FieldTrue — поле присутствует и равно boolean true.
	FieldTrue
	// FieldFalse — поле присутствует и равно boolean false.
	FieldFalse
	// FieldWrongType — поле присутствует, но не boolean (например, строка "true").
	FieldWrongType
)

// AdminRecord — запись реестра администраторов (коллекция admins, ключ — uid).
// Поля isAdmin и active сохраняют тройственное состояние исходного документа:
// доступ даёт только literal boolean true, строка "true" доступа не даёт.
type AdminRecord struct {
	// UID — идентификатор пользователя в Identity Provider (ключ документа).
	UID string
	// IsAdmin — состояние поля isAdmin.
	IsAdmin FieldState
	// Active — состояние поля active. Отсутствие трактуется как true.
	Active FieldState
	// Role — строковое значение поля role ("" если поле отсутствует).
	Role string
	// Email — email администратора (информационное поле).
	Email string
	// CreatedAt — время создания записи.
	CreatedAt time.Time
}
