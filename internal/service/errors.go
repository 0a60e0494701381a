// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidStatus — недопустимый статус заказа.
	ErrInvalidStatus = errors.New("недопустимый статус заказа")
	// ErrIDPUnavailable — провайдер идентификации недоступен.
	ErrIDPUnavailable = errors.New("провайдер идентификации недоступен")
)

// NotAuthorizedError — отказ в доступе к Admin UI.
// Несёт классификацию причины отказа для диагностики и локализованных
// сообщений на форме логина. К моменту возврата этой ошибки сессия
// пользователя у провайдера уже завершена.
type NotAuthorizedError struct {
	// Denial — классифицированная причина отказа.
	Denial authz.Denial
}

// Error реализует интерфейс error.
func (e *NotAuthorizedError) Error() string {
	if e.Denial.Field != "" {
		return fmt.Sprintf("доступ запрещён: %s (поле %q, uid %s)", e.Denial.Reason, e.Denial.Field, e.Denial.UID)
	}
	return fmt.Sprintf("доступ запрещён: %s (uid %s)", e.Denial.Reason, e.Denial.UID)
}
