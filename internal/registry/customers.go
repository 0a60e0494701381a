package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// Customers — доступ к покупателям магазина (коллекция users).
// Документ ключуется uid из Identity Provider, как и реестр администраторов.
type Customers struct {
	col *mongo.Collection
}

// List возвращает всех покупателей, новые первыми.
func (c *Customers) List(ctx context.Context) ([]*model.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := c.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка покупателей: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Customer
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения покупателей: %w", err)
	}
	return result, nil
}

// Get возвращает покупателя по идентификатору.
func (c *Customers) Get(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения покупателя: %w", err)
	}
	return &customer, nil
}

// SetActive блокирует или разблокирует покупателя.
func (c *Customers) SetActive(ctx context.Context, id string, active bool) error {
	res, err := c.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("ошибка изменения статуса покупателя: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count возвращает количество покупателей.
func (c *Customers) Count(ctx context.Context) (int64, error) {
	n, err := c.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта покупателей: %w", err)
	}
	return n, nil
}
