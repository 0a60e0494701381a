package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/ui/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeResolver — резолвер прав администратора для тестов.
type fakeResolver struct {
	status authz.Status
	denial *authz.Denial
	calls  int
}

func (f *fakeResolver) ResolveAdminStatus(_ context.Context, _ string) (authz.Status, *authz.Denial) {
	f.calls++
	return f.status, f.denial
}

// fakeRefresher — обновление токенов для тестов.
type fakeRefresher struct {
	resp *idp.TokenResponse
	err  error
}

func (f *fakeRefresher) RefreshTokens(_ context.Context, _ string) (*idp.TokenResponse, error) {
	return f.resp, f.err
}

// newRequestWithSession собирает запрос с зашифрованным session cookie.
func newRequestWithSession(t *testing.T, sm *auth.SessionManager, session *auth.SessionData) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := sm.SetSessionCookie(rec, session); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func validSession() *auth.SessionData {
	return &auth.SessionData{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(5 * time.Minute).Unix(),
		UID:          "uid-1",
		Username:     "olga",
		Role:         authz.RoleAdmin,
	}
}

// TestUIAuthPassesValidSession проверяет пропуск запроса с валидной сессией
// и подтверждёнными правами; актуальная роль попадает в контекст.
func TestUIAuthPassesValidSession(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	resolver := &fakeResolver{status: authz.Status{IsAdmin: true, Role: authz.RoleSuperAdmin}}

	ua := NewUIAuth(sm, &fakeRefresher{}, resolver, testLogger())

	var gotSession *auth.SessionData
	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithSession(t, sm, validSession()))

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if gotSession == nil {
		t.Fatal("Сессия не попала в контекст")
	}
	// Роль в cookie — admin, но реестр вернул super_admin: действует реестр
	if gotSession.Role != authz.RoleSuperAdmin {
		t.Errorf("Role в контексте: want super_admin, got %q", gotSession.Role)
	}
	if resolver.calls != 1 {
		t.Errorf("Резолвер должен вызываться на каждый запрос, вызовов: %d", resolver.calls)
	}
}

// TestUIAuthRevokedAdmin проверяет, что отзыв прав действует немедленно:
// валидная сессия с отозванными правами уводится на login с очисткой cookie.
func TestUIAuthRevokedAdmin(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	resolver := &fakeResolver{
		status: authz.Status{},
		denial: &authz.Denial{Reason: authz.ReasonRecordMissing, UID: "uid-1"},
	}

	ua := NewUIAuth(sm, &fakeRefresher{}, resolver, testLogger())

	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Запрос с отозванными правами не должен доходить до обработчика")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithSession(t, sm, validSession()))

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался redirect 302, получен %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Location: want /admin/login, got %q", loc)
	}

	// Cookie должен быть очищен
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge == -1 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Session cookie не очищен при отзыве прав")
	}
}

// TestUIAuthNoSession проверяет redirect на login без сессии.
func TestUIAuthNoSession(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	ua := NewUIAuth(sm, &fakeRefresher{}, &fakeResolver{}, testLogger())

	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Запрос без сессии не должен доходить до обработчика")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался redirect 302, получен %d", rec.Code)
	}
}

// TestUIAuthGarbageCookie проверяет очистку повреждённого cookie.
func TestUIAuthGarbageCookie(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	ua := NewUIAuth(sm, &fakeRefresher{}, &fakeResolver{}, testLogger())

	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Запрос с повреждённым cookie не должен доходить до обработчика")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "мусор"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался redirect 302, получен %d", rec.Code)
	}
}

// TestUIAuthExpiredSessionRefreshed проверяет авто-refresh истёкшего токена.
func TestUIAuthExpiredSessionRefreshed(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	resolver := &fakeResolver{status: authz.Status{IsAdmin: true, Role: authz.RoleAdmin}}
	refresher := &fakeRefresher{resp: &idp.TokenResponse{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresIn:    300,
	}}

	ua := NewUIAuth(sm, refresher, resolver, testLogger())

	var gotSession *auth.SessionData
	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	expired := validSession()
	expired.ExpiresAt = time.Now().Add(-1 * time.Minute).Unix()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithSession(t, sm, expired))

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200 после refresh, получен %d", rec.Code)
	}
	if gotSession == nil || gotSession.AccessToken != "new-access" {
		t.Errorf("Сессия должна содержать обновлённый access token, получено: %+v", gotSession)
	}
}

// TestUIAuthExpiredSessionRefreshFailed проверяет redirect при неудачном refresh.
func TestUIAuthExpiredSessionRefreshFailed(t *testing.T) {
	sm, _ := auth.NewSessionManager("test-key", false)
	refresher := &fakeRefresher{err: idp.ErrInvalidCredentials}

	ua := NewUIAuth(sm, refresher, &fakeResolver{}, testLogger())

	handler := ua.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Запрос с невозобновимой сессией не должен доходить до обработчика")
	}))

	expired := validSession()
	expired.ExpiresAt = time.Now().Add(-1 * time.Minute).Unix()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithSession(t, sm, expired))

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался redirect 302, получен %d", rec.Code)
	}
}
