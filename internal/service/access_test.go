package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// fakeIDP — провайдер идентификации для тестов.
// Фиксирует порядок вызовов SignIn/SignOut.
type fakeIDP struct {
	signInResp *idp.TokenResponse
	signInErr  error
	signOutErr error

	calls []string
}

func (f *fakeIDP) SignIn(_ context.Context, _, _ string) (*idp.TokenResponse, error) {
	f.calls = append(f.calls, "sign_in")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.signInResp, nil
}

func (f *fakeIDP) SignOut(_ context.Context, _ string) error {
	f.calls = append(f.calls, "sign_out")
	return f.signOutErr
}

// fakeAdmins — реестр администраторов для тестов.
// Каждый Get читает текущее состояние records — без кеширования.
type fakeAdmins struct {
	records map[string]*model.AdminRecord
	err     error
	gets    int
}

func (f *fakeAdmins) Get(_ context.Context, uid string) (*model.AdminRecord, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[uid]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return rec, nil
}

// fakeAudit — журнал событий аутентификации для тестов.
type fakeAudit struct {
	events []*model.AuthEvent
	err    error
}

func (f *fakeAudit) Record(_ context.Context, event *model.AuthEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// testToken собирает JWT с claims пользователя.
func testToken(t *testing.T, uid, username string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"sub":                uid,
		"preferred_username": username,
		"email":              username + "@example.com",
	})
	if err != nil {
		t.Fatalf("Ошибка сериализации claims: %v", err)
	}

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func tokens(t *testing.T, uid, username string) *idp.TokenResponse {
	t.Helper()
	return &idp.TokenResponse{
		AccessToken:  testToken(t, uid, username),
		RefreshToken: "refresh-" + uid,
		ExpiresIn:    300,
	}
}

// TestAuthenticateAdmin проверяет полный сценарий входа администратора:
// пароль верный, запись в реестре корректная, роль нормализована.
func TestAuthenticateAdmin(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-1", "olga")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-1": {UID: "uid-1", IsAdmin: model.FieldTrue, Active: model.FieldAbsent, Role: "manager"},
	}}
	audit := &fakeAudit{}

	svc := NewAccessService(fidp, admins, audit, testLogger())

	result, err := svc.Authenticate(context.Background(), "olga", "secret")
	if err != nil {
		t.Fatalf("Ошибка входа: %v", err)
	}

	if result.UID != "uid-1" {
		t.Errorf("UID: want uid-1, got %q", result.UID)
	}
	// Любая роль кроме super_admin нормализуется в admin
	if result.Role != authz.RoleAdmin {
		t.Errorf("Role: want %q, got %q", authz.RoleAdmin, result.Role)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("Токены не заполнены в результате входа")
	}

	// SignOut не должен вызываться при успешном входе
	for _, call := range fidp.calls {
		if call == "sign_out" {
			t.Error("SignOut вызван при успешном входе")
		}
	}

	if len(audit.events) != 1 || audit.events[0].Event != model.AuthEventLogin {
		t.Errorf("Ожидалось одно событие login, получено: %+v", audit.events)
	}
}

// TestAuthenticateSuperAdmin проверяет, что роль super_admin сохраняется.
func TestAuthenticateSuperAdmin(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-2", "ivan")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-2": {UID: "uid-2", IsAdmin: model.FieldTrue, Active: model.FieldTrue, Role: "super_admin"},
	}}

	svc := NewAccessService(fidp, admins, nil, testLogger())

	result, err := svc.Authenticate(context.Background(), "ivan", "secret")
	if err != nil {
		t.Fatalf("Ошибка входа: %v", err)
	}
	if result.Role != authz.RoleSuperAdmin {
		t.Errorf("Role: want %q, got %q", authz.RoleSuperAdmin, result.Role)
	}
}

// TestAuthenticateNoRecord проверяет отказ пользователю с верным паролем,
// но без записи в реестре: сначала принудительный разлогин, затем ошибка
// с причиной record_missing.
func TestAuthenticateNoRecord(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-3", "petr")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{}}
	audit := &fakeAudit{}

	svc := NewAccessService(fidp, admins, audit, testLogger())

	_, err := svc.Authenticate(context.Background(), "petr", "secret")

	var notAuth *NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("Ожидалась NotAuthorizedError, получено: %v", err)
	}
	if notAuth.Denial.Reason != authz.ReasonRecordMissing {
		t.Errorf("Reason: want %q, got %q", authz.ReasonRecordMissing, notAuth.Denial.Reason)
	}

	// Разлогин у провайдера должен произойти до возврата ошибки
	if len(fidp.calls) != 2 || fidp.calls[1] != "sign_out" {
		t.Errorf("Ожидался вызов sign_out после sign_in, получено: %v", fidp.calls)
	}

	if len(audit.events) != 1 || audit.events[0].Event != model.AuthEventDenied {
		t.Errorf("Ожидалось одно событие denied, получено: %+v", audit.events)
	}
	if audit.events[0].Reason != string(authz.ReasonRecordMissing) {
		t.Errorf("Reason события: want record_missing, got %q", audit.events[0].Reason)
	}
}

// TestAuthenticateIsAdminWrongType проверяет отказ на записи,
// где isAdmin — строка "true", а не boolean.
func TestAuthenticateIsAdminWrongType(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-4", "anna")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-4": {UID: "uid-4", IsAdmin: model.FieldWrongType},
	}}

	svc := NewAccessService(fidp, admins, nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "anna", "secret")

	var notAuth *NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("Ожидалась NotAuthorizedError, получено: %v", err)
	}
	if notAuth.Denial.Reason != authz.ReasonFieldWrongType {
		t.Errorf("Reason: want %q, got %q", authz.ReasonFieldWrongType, notAuth.Denial.Reason)
	}
	if notAuth.Denial.Field != "isAdmin" {
		t.Errorf("Field: want isAdmin, got %q", notAuth.Denial.Field)
	}
}

// TestAuthenticateDeactivated проверяет отказ деактивированному
// администратору (active: false).
func TestAuthenticateDeactivated(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-5", "maria")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-5": {UID: "uid-5", IsAdmin: model.FieldTrue, Active: model.FieldFalse, Role: "admin"},
	}}

	svc := NewAccessService(fidp, admins, nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "maria", "secret")

	var notAuth *NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("Ожидалась NotAuthorizedError, получено: %v", err)
	}
	if notAuth.Denial.Reason != authz.ReasonFieldFalse {
		t.Errorf("Reason: want %q, got %q", authz.ReasonFieldFalse, notAuth.Denial.Reason)
	}
	if notAuth.Denial.Field != "active" {
		t.Errorf("Field: want active, got %q", notAuth.Denial.Field)
	}
}

// TestAuthenticateInvalidCredentials проверяет, что неверный пароль
// возвращается как есть, без обращения к реестру.
func TestAuthenticateInvalidCredentials(t *testing.T) {
	fidp := &fakeIDP{signInErr: idp.ErrInvalidCredentials}
	admins := &fakeAdmins{}

	svc := NewAccessService(fidp, admins, nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "olga", "wrong")
	if !errors.Is(err, idp.ErrInvalidCredentials) {
		t.Fatalf("Ожидалась ErrInvalidCredentials, получено: %v", err)
	}
	if admins.gets != 0 {
		t.Error("Реестр не должен читаться при неверном пароле")
	}
}

// TestAuthenticateIDPDown проверяет обработку недоступности провайдера.
func TestAuthenticateIDPDown(t *testing.T) {
	fidp := &fakeIDP{signInErr: errors.New("connection refused")}

	svc := NewAccessService(fidp, &fakeAdmins{}, nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "olga", "secret")
	if !errors.Is(err, ErrIDPUnavailable) {
		t.Fatalf("Ожидалась ErrIDPUnavailable, получено: %v", err)
	}
}

// TestAuthenticateSignOutFailureStillDenies проверяет, что ошибка
// принудительного разлогина не отменяет отказ в доступе.
func TestAuthenticateSignOutFailureStillDenies(t *testing.T) {
	fidp := &fakeIDP{
		signInResp: tokens(t, "uid-6", "denis"),
		signOutErr: errors.New("logout endpoint down"),
	}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{}}

	svc := NewAccessService(fidp, admins, nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "denis", "secret")

	var notAuth *NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("Ожидалась NotAuthorizedError, получено: %v", err)
	}
}

// TestResolveAdminStatusFailClosed проверяет fail-closed при недоступности
// реестра: статус пустой, причина unknown.
func TestResolveAdminStatusFailClosed(t *testing.T) {
	admins := &fakeAdmins{err: errors.New("mongo: no reachable servers")}

	svc := NewAccessService(&fakeIDP{}, admins, nil, testLogger())

	status, denial := svc.ResolveAdminStatus(context.Background(), "uid-1")
	if status.IsAdmin {
		t.Error("Недоступный реестр не должен давать права администратора")
	}
	if status.Role != "" {
		t.Errorf("Роль должна быть пустой, получено %q", status.Role)
	}
	if denial == nil || denial.Reason != authz.ReasonUnknown {
		t.Errorf("Ожидалась причина unknown, получено: %+v", denial)
	}
}

// TestResolveAdminStatusNoStaleRole проверяет отсутствие кеширования:
// понижение роли в реестре видно при следующем же вызове.
func TestResolveAdminStatusNoStaleRole(t *testing.T) {
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-7": {UID: "uid-7", IsAdmin: model.FieldTrue, Role: "super_admin"},
	}}

	svc := NewAccessService(&fakeIDP{}, admins, nil, testLogger())

	status, _ := svc.ResolveAdminStatus(context.Background(), "uid-7")
	if status.Role != authz.RoleSuperAdmin {
		t.Fatalf("Первая проверка: want super_admin, got %q", status.Role)
	}

	// Понижаем роль в реестре
	admins.records["uid-7"].Role = "admin"

	status, _ = svc.ResolveAdminStatus(context.Background(), "uid-7")
	if status.Role != authz.RoleAdmin {
		t.Errorf("Вторая проверка: want admin, got %q", status.Role)
	}

	// Полное удаление записи закрывает доступ
	delete(admins.records, "uid-7")

	status, denial := svc.ResolveAdminStatus(context.Background(), "uid-7")
	if status.IsAdmin {
		t.Error("Удалённая запись не должна давать права администратора")
	}
	if denial == nil || denial.Reason != authz.ReasonRecordMissing {
		t.Errorf("Ожидалась причина record_missing, получено: %+v", denial)
	}

	if admins.gets != 3 {
		t.Errorf("Каждая проверка должна читать реестр, вызовов Get: %d", admins.gets)
	}
}

// TestAuthenticateAuditFailureDoesNotBlock проверяет, что ошибка журнала
// не мешает успешному входу.
func TestAuthenticateAuditFailureDoesNotBlock(t *testing.T) {
	fidp := &fakeIDP{signInResp: tokens(t, "uid-8", "olga")}
	admins := &fakeAdmins{records: map[string]*model.AdminRecord{
		"uid-8": {UID: "uid-8", IsAdmin: model.FieldTrue, Role: "admin"},
	}}
	audit := &fakeAudit{err: errors.New("pg down")}

	svc := NewAccessService(fidp, admins, audit, testLogger())

	if _, err := svc.Authenticate(context.Background(), "olga", "secret"); err != nil {
		t.Fatalf("Ошибка журнала не должна блокировать вход: %v", err)
	}
}

// TestLogout проверяет завершение сессии и запись события logout.
func TestLogout(t *testing.T) {
	fidp := &fakeIDP{}
	audit := &fakeAudit{}

	svc := NewAccessService(fidp, &fakeAdmins{}, audit, testLogger())

	svc.Logout(context.Background(), "uid-9", "olga", "refresh-token")

	if len(fidp.calls) != 1 || fidp.calls[0] != "sign_out" {
		t.Errorf("Ожидался вызов sign_out, получено: %v", fidp.calls)
	}
	if len(audit.events) != 1 || audit.events[0].Event != model.AuthEventLogout {
		t.Errorf("Ожидалось одно событие logout, получено: %+v", audit.events)
	}
}
