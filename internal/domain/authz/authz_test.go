package authz

import (
	"testing"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		rec        *model.AdminRecord
		wantAdmin  bool
		wantRole   string
		wantReason DenialReason
		wantField  string
	}{
		{
			name:       "документ отсутствует",
			rec:        nil,
			wantReason: ReasonRecordMissing,
		},
		{
			name:       "поле isAdmin отсутствует",
			rec:        &model.AdminRecord{UID: "u1", IsAdmin: model.FieldAbsent},
			wantReason: ReasonFieldMissing,
			wantField:  "isAdmin",
		},
		{
			name:       "isAdmin строка \"true\" — неверный тип",
			rec:        &model.AdminRecord{UID: "u2", IsAdmin: model.FieldWrongType},
			wantReason: ReasonFieldWrongType,
			wantField:  "isAdmin",
		},
		{
			name:       "isAdmin false",
			rec:        &model.AdminRecord{UID: "u3", IsAdmin: model.FieldFalse},
			wantReason: ReasonFieldFalse,
			wantField:  "isAdmin",
		},
		{
			name:       "isAdmin true, active false — доступ отозван",
			rec:        &model.AdminRecord{UID: "u4", IsAdmin: model.FieldTrue, Active: model.FieldFalse, Role: RoleSuperAdmin},
			wantReason: ReasonFieldFalse,
			wantField:  "active",
		},
		{
			name:      "isAdmin true, active отсутствует — по умолчанию активен",
			rec:       &model.AdminRecord{UID: "u5", IsAdmin: model.FieldTrue, Active: model.FieldAbsent, Role: RoleSuperAdmin},
			wantAdmin: true,
			wantRole:  RoleSuperAdmin,
		},
		{
			name:      "isAdmin true, active true, роль admin",
			rec:       &model.AdminRecord{UID: "u6", IsAdmin: model.FieldTrue, Active: model.FieldTrue, Role: RoleAdmin},
			wantAdmin: true,
			wantRole:  RoleAdmin,
		},
		{
			name:      "роль отсутствует — нормализуется в admin",
			rec:       &model.AdminRecord{UID: "u7", IsAdmin: model.FieldTrue, Active: model.FieldTrue},
			wantAdmin: true,
			wantRole:  RoleAdmin,
		},
		{
			name:      "неизвестная роль — нормализуется в admin",
			rec:       &model.AdminRecord{UID: "u8", IsAdmin: model.FieldTrue, Active: model.FieldTrue, Role: "moderator"},
			wantAdmin: true,
			wantRole:  RoleAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, denial := Evaluate(tt.rec)

			if status.IsAdmin != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, ожидается %v", status.IsAdmin, tt.wantAdmin)
			}
			if status.Role != tt.wantRole {
				t.Errorf("Role = %q, ожидается %q", status.Role, tt.wantRole)
			}

			if tt.wantAdmin {
				if denial != nil {
					t.Errorf("denial = %+v, ожидается nil", denial)
				}
				return
			}
			if denial == nil {
				t.Fatal("ожидалась диагностика отказа, получен nil")
			}
			if denial.Reason != tt.wantReason {
				t.Errorf("Reason = %q, ожидается %q", denial.Reason, tt.wantReason)
			}
			if denial.Field != tt.wantField {
				t.Errorf("Field = %q, ожидается %q", denial.Field, tt.wantField)
			}
		})
	}
}

// TestEvaluateIdempotent — повторная проверка неизменной записи даёт тот же результат.
func TestEvaluateIdempotent(t *testing.T) {
	rec := &model.AdminRecord{UID: "u1", IsAdmin: model.FieldTrue, Active: model.FieldTrue, Role: RoleSuperAdmin}

	first, _ := Evaluate(rec)
	second, _ := Evaluate(rec)

	if first != second {
		t.Errorf("результаты различаются: %+v и %+v", first, second)
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{RoleSuperAdmin, RoleSuperAdmin},
		{RoleAdmin, RoleAdmin},
		{"", RoleAdmin},
		{"moderator", RoleAdmin},
		{"SUPER_ADMIN", RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := NormalizeRole(tt.role); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, ожидается %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestAllowedSections(t *testing.T) {
	superSet := AllowedSections(RoleSuperAdmin)
	adminSet := AllowedSections(RoleAdmin)
	emptySet := AllowedSections("")

	// super_admin — надмножество admin
	for s := range adminSet {
		if !superSet[s] {
			t.Errorf("раздел %q доступен admin, но не super_admin", s)
		}
	}

	// dashboard входит в набор каждой непустой роли
	if !superSet[SectionDashboard] {
		t.Error("dashboard отсутствует в наборе super_admin")
	}
	if !adminSet[SectionDashboard] {
		t.Error("dashboard отсутствует в наборе admin")
	}

	// admin — фиксированный сокращённый набор
	wantAdmin := []string{SectionDashboard, SectionProducts, SectionCategories, SectionOrders, SectionOffers}
	if len(adminSet) != len(wantAdmin) {
		t.Errorf("размер набора admin = %d, ожидается %d", len(adminSet), len(wantAdmin))
	}
	for _, s := range wantAdmin {
		if !adminSet[s] {
			t.Errorf("раздел %q отсутствует в наборе admin", s)
		}
	}
	if adminSet[SectionSettings] {
		t.Error("settings не должен входить в набор admin")
	}

	// пустая роль — пустой набор
	if len(emptySet) != 0 {
		t.Errorf("набор для пустой роли не пуст: %v", emptySet)
	}

	// super_admin видит все определённые разделы
	if len(superSet) != len(Sections()) {
		t.Errorf("размер набора super_admin = %d, ожидается %d", len(superSet), len(Sections()))
	}
}

func TestIsSection(t *testing.T) {
	for _, s := range Sections() {
		if !IsSection(s) {
			t.Errorf("IsSection(%q) = false для определённого раздела", s)
		}
	}
	if IsSection("loyalty") {
		t.Error("IsSection(\"loyalty\") = true для неопределённого раздела")
	}
}
