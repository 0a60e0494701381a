// settings.go — настройки магазина (документ settings/general) и контент
// главной страницы (документ content/main). Оба документа одиночные,
// обновляются с merge-семантикой ($set + upsert): секции формы не затирают
// друг друга.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// Ключи одиночных документов.
const (
	settingsDocID = "general"
	contentDocID  = "main"
)

// Settings — доступ к настройкам магазина и контенту.
type Settings struct {
	settings *mongo.Collection
	content  *mongo.Collection
}

// GetSettings возвращает настройки магазина.
// Отсутствующий документ — пустые настройки, не ошибка.
func (s *Settings) GetSettings(ctx context.Context) (*model.StoreSettings, error) {
	var settings model.StoreSettings
	err := s.settings.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.StoreSettings{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения настроек: %w", err)
	}
	return &settings, nil
}

// MergeSettings обновляет только переданные поля настроек.
func (s *Settings) MergeSettings(ctx context.Context, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()

	_, err := s.settings.UpdateOne(ctx,
		bson.M{"_id": settingsDocID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения настроек: %w", err)
	}
	return nil
}

// GetContent возвращает контент главной страницы.
// Отсутствующий документ — пустой контент, не ошибка.
func (s *Settings) GetContent(ctx context.Context) (*model.SiteContent, error) {
	var content model.SiteContent
	err := s.content.FindOne(ctx, bson.M{"_id": contentDocID}).Decode(&content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.SiteContent{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения контента: %w", err)
	}
	return &content, nil
}

// MergeContent обновляет только переданные поля контента.
func (s *Settings) MergeContent(ctx context.Context, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()

	_, err := s.content.UpdateOne(ctx,
		bson.M{"_id": contentDocID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения контента: %w", err)
	}
	return nil
}
