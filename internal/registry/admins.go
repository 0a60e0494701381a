// admins.go — реестр администраторов (коллекция admins, ключ документа — uid).
// Документ читается как raw BSON: классификация полей (отсутствует / boolean /
// неверный тип) нужна для диагностики отказов — строка "true" в isAdmin
// должна быть отличима от boolean true.
package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// Admins — доступ к реестру администраторов.
type Admins struct {
	col *mongo.Collection
}

// Get возвращает запись реестра по uid.
// Возвращает ErrNotFound, если документ отсутствует.
// Любая другая ошибка чтения трактуется вызывающим кодом fail-closed.
func (a *Admins) Get(ctx context.Context, uid string) (*model.AdminRecord, error) {
	var raw bson.Raw
	err := a.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения реестра администраторов: %w", err)
	}

	return adminRecordFromRaw(uid, raw), nil
}

// adminRecordFromRaw разбирает raw-документ в AdminRecord,
// сохраняя тройственное состояние boolean-полей.
func adminRecordFromRaw(uid string, raw bson.Raw) *model.AdminRecord {
	rec := &model.AdminRecord{
		UID:     uid,
		IsAdmin: boolFieldState(raw, "isAdmin"),
		Active:  boolFieldState(raw, "active"),
	}

	if val, err := raw.LookupErr("role"); err == nil && val.Type == bsontype.String {
		rec.Role = val.StringValue()
	}
	if val, err := raw.LookupErr("email"); err == nil && val.Type == bsontype.String {
		rec.Email = val.StringValue()
	}
	if val, err := raw.LookupErr("createdAt"); err == nil && val.Type == bsontype.DateTime {
		rec.CreatedAt = val.Time()
	}

	return rec
}

// boolFieldState определяет состояние boolean-поля raw-документа.
func boolFieldState(raw bson.Raw, key string) model.FieldState {
	val, err := raw.LookupErr(key)
	if err != nil {
		return model.FieldAbsent
	}
	if val.Type != bsontype.Boolean {
		return model.FieldWrongType
	}
	if val.Boolean() {
		return model.FieldTrue
	}
	return model.FieldFalse
}
