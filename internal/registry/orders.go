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

// Orders — доступ к заказам.
type Orders struct {
	col *mongo.Collection
}

// List возвращает заказы, новые первыми. limit <= 0 — без ограничения.
func (o *Orders) List(ctx context.Context, limit int64) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := o.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Order
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения заказов: %w", err)
	}
	return result, nil
}

// ListByUser возвращает заказы покупателя, новые первыми.
func (o *Orders) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := o.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заказов покупателя: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Order
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения заказов покупателя: %w", err)
	}
	return result, nil
}

// ListSince возвращает заказы, созданные не раньше указанного момента.
func (o *Orders) ListSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := o.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заказов за период: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Order
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения заказов за период: %w", err)
	}
	return result, nil
}

// Get возвращает заказ по идентификатору.
func (o *Orders) Get(ctx context.Context, id string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var order model.Order
	err = o.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения заказа: %w", err)
	}
	return &order, nil
}

// UpdateStatus изменяет статус заказа.
func (o *Orders) UpdateStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}

	res, err := o.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заказа: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count возвращает количество заказов.
func (o *Orders) Count(ctx context.Context) (int64, error) {
	n, err := o.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заказов: %w", err)
	}
	return n, nil
}

// CountByStatus возвращает количество заказов в указанном статусе.
func (o *Orders) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := o.col.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заказов по статусу: %w", err)
	}
	return n, nil
}
