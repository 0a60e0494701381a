// access.go — сервис доступа к Admin UI.
// Объединяет аутентификацию у провайдера идентификации с проверкой прав
// по реестру администраторов. Любая ошибка при проверке прав трактуется
// как отсутствие прав: вход закрыт, пока реестр явно не подтвердил обратное.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// AdminReader — чтение записей администраторов из реестра.
type AdminReader interface {
	Get(ctx context.Context, uid string) (*model.AdminRecord, error)
}

// IdentityProvider — аутентификация пользователей у внешнего провайдера.
type IdentityProvider interface {
	SignIn(ctx context.Context, username, password string) (*idp.TokenResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// AuthEventRecorder — журнал событий аутентификации.
type AuthEventRecorder interface {
	Record(ctx context.Context, event *model.AuthEvent) error
}

// AuthResult — результат успешной аутентификации администратора.
type AuthResult struct {
	// UID — идентификатор пользователя у провайдера.
	UID string
	// Username — имя пользователя.
	Username string
	// Email — email пользователя.
	Email string
	// Role — нормализованная роль администратора.
	Role string
	// AccessToken — access token провайдера.
	AccessToken string
	// RefreshToken — refresh token провайдера.
	RefreshToken string
	// ExpiresAt — время истечения access token.
	ExpiresAt time.Time
}

// AccessService — сервис аутентификации и авторизации Admin UI.
type AccessService struct {
	idp    IdentityProvider
	admins AdminReader
	audit  AuthEventRecorder
	logger *slog.Logger
}

// NewAccessService создаёт сервис доступа.
// audit может быть nil — журналирование событий тогда отключено.
func NewAccessService(
	identityProvider IdentityProvider,
	admins AdminReader,
	audit AuthEventRecorder,
	logger *slog.Logger,
) *AccessService {
	return &AccessService{
		idp:    identityProvider,
		admins: admins,
		audit:  audit,
		logger: logger.With(slog.String("component", "access_service")),
	}
}

// ResolveAdminStatus определяет статус администратора для пользователя.
// Недоступность реестра не отличается от отсутствия прав: возвращается
// пустой статус с причиной unknown. Результат не кешируется — каждый
// вызов читает реестр заново.
func (s *AccessService) ResolveAdminStatus(ctx context.Context, uid string) (authz.Status, *authz.Denial) {
	rec, err := s.admins.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return authz.Evaluate(nil)
		}

		s.logger.Error("Ошибка чтения реестра администраторов",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		return authz.Status{}, &authz.Denial{Reason: authz.ReasonUnknown, UID: uid}
	}

	status, denial := authz.Evaluate(rec)
	if denial != nil {
		denial.UID = uid
	}
	return status, denial
}

// Authenticate выполняет вход администратора: проверка пароля у провайдера,
// затем проверка прав по реестру. Пользователь без прав администратора
// принудительно разлогинивается у провайдера до возврата ошибки — валидные
// токены не должны пережить отказ в доступе.
func (s *AccessService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	tokens, err := s.idp.SignIn(ctx, username, password)
	if err != nil {
		if errors.Is(err, idp.ErrInvalidCredentials) || errors.Is(err, idp.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrIDPUnavailable, err)
	}

	principal, err := idp.ParsePrincipal(tokens.AccessToken)
	if err != nil {
		// Токен выдан, но непригоден — завершаем сессию у провайдера
		s.forceSignOut(ctx, tokens.RefreshToken, username)
		return nil, fmt.Errorf("ошибка разбора access token: %w", err)
	}

	status, denial := s.ResolveAdminStatus(ctx, principal.UID)
	if !status.IsAdmin {
		if denial == nil {
			denial = &authz.Denial{Reason: authz.ReasonUnknown, UID: principal.UID}
		}

		// Сначала разлогин у провайдера, потом отказ
		s.forceSignOut(ctx, tokens.RefreshToken, username)

		s.recordEvent(ctx, &model.AuthEvent{
			UID:      principal.UID,
			Username: principal.Username,
			Event:    model.AuthEventDenied,
			Reason:   string(denial.Reason),
			Field:    denial.Field,
		})

		s.logger.Warn("Отказ в доступе к Admin UI",
			slog.String("uid", principal.UID),
			slog.String("username", principal.Username),
			slog.String("reason", string(denial.Reason)),
			slog.String("field", denial.Field),
		)

		return nil, &NotAuthorizedError{Denial: *denial}
	}

	s.recordEvent(ctx, &model.AuthEvent{
		UID:      principal.UID,
		Username: principal.Username,
		Event:    model.AuthEventLogin,
	})

	s.logger.Info("Администратор вошёл в Admin UI",
		slog.String("uid", principal.UID),
		slog.String("username", principal.Username),
		slog.String("role", status.Role),
	)

	return &AuthResult{
		UID:          principal.UID,
		Username:     principal.Username,
		Email:        principal.Email,
		Role:         status.Role,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}, nil
}

// Logout завершает сессию администратора у провайдера и пишет событие в журнал.
func (s *AccessService) Logout(ctx context.Context, uid, username, refreshToken string) {
	if refreshToken != "" {
		if err := s.idp.SignOut(ctx, refreshToken); err != nil {
			s.logger.Warn("Ошибка завершения сессии у провайдера",
				slog.String("uid", uid),
				slog.String("error", err.Error()),
			)
		}
	}

	s.recordEvent(ctx, &model.AuthEvent{
		UID:      uid,
		Username: username,
		Event:    model.AuthEventLogout,
	})
}

// forceSignOut завершает сессию у провайдера; ошибка только логируется —
// отказ в доступе она не отменяет.
func (s *AccessService) forceSignOut(ctx context.Context, refreshToken, username string) {
	if refreshToken == "" {
		return
	}
	if err := s.idp.SignOut(ctx, refreshToken); err != nil {
		s.logger.Warn("Не удалось завершить сессию у провайдера после отказа",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
}

// recordEvent пишет событие в журнал аутентификации.
// Ошибка журнала не прерывает основной сценарий.
func (s *AccessService) recordEvent(ctx context.Context, event *model.AuthEvent) {
	if s.audit == nil {
		return
	}

	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()

	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("Ошибка записи события аутентификации",
			slog.String("event", event.Event),
			slog.String("uid", event.UID),
			slog.String("error", err.Error()),
		)
	}
}
