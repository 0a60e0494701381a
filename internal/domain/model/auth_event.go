package model

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий аудита аутентификации.
const (
	AuthEventLogin  = "login"
	AuthEventDenied = "denied"
	AuthEventLogout = "logout"
)

// AuthEvent — событие аудита входа в панель (таблица auth_events, PostgreSQL).
// Фиксирует успешные входы, отказы с классифицированной причиной и выходы,
// чтобы оператор мог разобрать проблемы реестра без доступа к браузеру пользователя.
type AuthEvent struct {
	ID       uuid.UUID
	UID      string
	Username string
	// Event — тип события: login, denied, logout.
	Event string
	// Reason — причина отказа (record_missing, field_missing, field_wrong_type,
	// field_false, unknown). Пустая строка для login/logout.
	Reason string
	// Field — имя проблемного поля реестра (isAdmin, active). Опционально.
	Field     string
	CreatedAt time.Time
}
