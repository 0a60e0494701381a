package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// Categories — доступ к разделам каталога.
type Categories struct {
	col *mongo.Collection
}

// List возвращает все разделы, упорядоченные по полю order.
func (c *Categories) List(ctx context.Context) ([]*model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cur, err := c.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка разделов: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Category
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения разделов: %w", err)
	}
	return result, nil
}

// Get возвращает раздел по идентификатору.
func (c *Categories) Get(ctx context.Context, id string) (*model.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var category model.Category
	err = c.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения раздела: %w", err)
	}
	return &category, nil
}

// Create добавляет раздел и заполняет его ID.
func (c *Categories) Create(ctx context.Context, category *model.Category) error {
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now().UTC()

	if _, err := c.col.InsertOne(ctx, category); err != nil {
		return fmt.Errorf("ошибка создания раздела: %w", err)
	}
	return nil
}

// Update обновляет раздел по идентификатору.
func (c *Categories) Update(ctx context.Context, id string, category *model.Category) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":  category.Name,
		"order": category.Order,
		"image": category.Image,
	}}

	res, err := c.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("ошибка обновления раздела: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет раздел по идентификатору.
func (c *Categories) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ошибка удаления раздела: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
