package nav

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestResolve проверяет выбор раздела с учётом роли.
func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		requested string
		want      string
	}{
		{
			name:      "admin запрашивает доступный раздел",
			role:      authz.RoleAdmin,
			requested: authz.SectionProducts,
			want:      authz.SectionProducts,
		},
		{
			name:      "admin запрашивает закрытый раздел users",
			role:      authz.RoleAdmin,
			requested: authz.SectionUsers,
			want:      authz.SectionDashboard,
		},
		{
			name:      "admin запрашивает закрытый раздел settings",
			role:      authz.RoleAdmin,
			requested: authz.SectionSettings,
			want:      authz.SectionDashboard,
		},
		{
			name:      "super_admin запрашивает settings",
			role:      authz.RoleSuperAdmin,
			requested: authz.SectionSettings,
			want:      authz.SectionSettings,
		},
		{
			name:      "неизвестный раздел",
			role:      authz.RoleSuperAdmin,
			requested: "secret",
			want:      authz.SectionDashboard,
		},
		{
			name:      "пустой запрос",
			role:      authz.RoleAdmin,
			requested: "",
			want:      authz.SectionDashboard,
		},
		{
			name:      "пустая роль всегда уходит на dashboard",
			role:      "",
			requested: authz.SectionProducts,
			want:      authz.SectionDashboard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.role, tt.requested); got != tt.want {
				t.Errorf("Resolve(%q, %q): want %q, got %q", tt.role, tt.requested, tt.want, got)
			}
		})
	}
}

// TestNewSessionView проверяет сборку SessionView.
func TestNewSessionView(t *testing.T) {
	view := NewSessionView("uid-1", "olga", "olga@example.com", authz.RoleAdmin, authz.SectionUsers)

	// Недоступный раздел заменён на dashboard
	if view.ActiveSection != authz.SectionDashboard {
		t.Errorf("ActiveSection: want dashboard, got %q", view.ActiveSection)
	}
	if !view.AllowedSections[authz.SectionProducts] {
		t.Error("Раздел products должен быть доступен роли admin")
	}
	if view.AllowedSections[authz.SectionUsers] {
		t.Error("Раздел users не должен быть доступен роли admin")
	}
}

// TestControllerNavigateTo проверяет, что вызывается ровно один рендерер.
func TestControllerNavigateTo(t *testing.T) {
	c := NewController(testLogger())

	calls := map[string]int{}
	for _, section := range authz.Sections() {
		section := section
		err := c.Register(section, func(w http.ResponseWriter, r *http.Request, view *SessionView) {
			calls[section]++
			w.WriteHeader(http.StatusOK)
		})
		if err != nil {
			t.Fatalf("Ошибка регистрации раздела %s: %v", section, err)
		}
	}

	view := NewSessionView("uid-1", "olga", "", authz.RoleAdmin, authz.SectionOrders)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)

	c.NavigateTo(rec, req, view)

	if calls[authz.SectionOrders] != 1 {
		t.Errorf("Рендерер orders должен быть вызван один раз, вызовов: %d", calls[authz.SectionOrders])
	}
	total := 0
	for _, n := range calls {
		total += n
	}
	if total != 1 {
		t.Errorf("Должен быть вызван ровно один рендерер, вызовов: %d", total)
	}
}

// TestControllerRegisterErrors проверяет ошибки регистрации рендереров.
func TestControllerRegisterErrors(t *testing.T) {
	c := NewController(testLogger())

	noop := func(w http.ResponseWriter, r *http.Request, view *SessionView) {}

	if err := c.Register("secret", noop); err == nil {
		t.Error("Ожидалась ошибка регистрации неизвестного раздела")
	}

	if err := c.Register(authz.SectionDashboard, noop); err != nil {
		t.Fatalf("Первая регистрация dashboard: %v", err)
	}
	if err := c.Register(authz.SectionDashboard, noop); err == nil {
		t.Error("Ожидалась ошибка повторной регистрации раздела")
	}
}

// TestControllerNavigateToUnregistered проверяет реакцию на раздел
// без рендерера.
func TestControllerNavigateToUnregistered(t *testing.T) {
	c := NewController(testLogger())

	view := NewSessionView("uid-1", "olga", "", authz.RoleSuperAdmin, authz.SectionReports)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)

	c.NavigateTo(rec, req, view)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Ожидался статус 500, получен %d", rec.Code)
	}
}
