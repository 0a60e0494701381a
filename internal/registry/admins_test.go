package registry

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// mustRaw сериализует документ в raw BSON.
func mustRaw(t *testing.T, doc bson.M) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("Ошибка сериализации BSON: %v", err)
	}
	return raw
}

func TestAdminRecordFromRaw(t *testing.T) {
	tests := []struct {
		name        string
		doc         bson.M
		wantIsAdmin model.FieldState
		wantActive  model.FieldState
		wantRole    string
	}{
		{
			name:        "корректный документ super_admin",
			doc:         bson.M{"isAdmin": true, "active": true, "role": "super_admin"},
			wantIsAdmin: model.FieldTrue,
			wantActive:  model.FieldTrue,
			wantRole:    "super_admin",
		},
		{
			name:        "isAdmin строка \"true\" — неверный тип",
			doc:         bson.M{"isAdmin": "true"},
			wantIsAdmin: model.FieldWrongType,
			wantActive:  model.FieldAbsent,
		},
		{
			name:        "isAdmin число — неверный тип",
			doc:         bson.M{"isAdmin": 1},
			wantIsAdmin: model.FieldWrongType,
			wantActive:  model.FieldAbsent,
		},
		{
			name:        "isAdmin false",
			doc:         bson.M{"isAdmin": false, "role": "super_admin"},
			wantIsAdmin: model.FieldFalse,
			wantActive:  model.FieldAbsent,
			wantRole:    "super_admin",
		},
		{
			name:        "поле isAdmin отсутствует",
			doc:         bson.M{"email": "admin@lavka.example"},
			wantIsAdmin: model.FieldAbsent,
			wantActive:  model.FieldAbsent,
		},
		{
			name:        "active false отзывает доступ",
			doc:         bson.M{"isAdmin": true, "active": false},
			wantIsAdmin: model.FieldTrue,
			wantActive:  model.FieldFalse,
		},
		{
			name:        "роль не строка — игнорируется",
			doc:         bson.M{"isAdmin": true, "role": 42},
			wantIsAdmin: model.FieldTrue,
			wantActive:  model.FieldAbsent,
			wantRole:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := adminRecordFromRaw("u1", mustRaw(t, tt.doc))

			if rec.UID != "u1" {
				t.Errorf("UID = %q, ожидается u1", rec.UID)
			}
			if rec.IsAdmin != tt.wantIsAdmin {
				t.Errorf("IsAdmin = %v, ожидается %v", rec.IsAdmin, tt.wantIsAdmin)
			}
			if rec.Active != tt.wantActive {
				t.Errorf("Active = %v, ожидается %v", rec.Active, tt.wantActive)
			}
			if rec.Role != tt.wantRole {
				t.Errorf("Role = %q, ожидается %q", rec.Role, tt.wantRole)
			}
		})
	}
}

func TestAdminRecordFromRaw_Metadata(t *testing.T) {
	created := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	raw := mustRaw(t, bson.M{
		"isAdmin":   true,
		"email":     "admin@lavka.example",
		"createdAt": created,
	})

	rec := adminRecordFromRaw("u1", raw)

	if rec.Email != "admin@lavka.example" {
		t.Errorf("Email = %q, ожидается admin@lavka.example", rec.Email)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, ожидается %v", rec.CreatedAt, created)
	}
}
