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

// Products — доступ к каталогу товаров.
type Products struct {
	col *mongo.Collection
}

// List возвращает все товары, новые первыми.
func (p *Products) List(ctx context.Context) ([]*model.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := p.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка товаров: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Product
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения товаров: %w", err)
	}
	return result, nil
}

// Get возвращает товар по идентификатору.
func (p *Products) Get(ctx context.Context, id string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var product model.Product
	err = p.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения товара: %w", err)
	}
	return &product, nil
}

// Create добавляет товар и заполняет его ID.
func (p *Products) Create(ctx context.Context, product *model.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()

	if _, err := p.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("ошибка создания товара: %w", err)
	}
	return nil
}

// CreateMany добавляет несколько товаров одной операцией (импорт CSV).
func (p *Products) CreateMany(ctx context.Context, products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]any, 0, len(products))
	for _, product := range products {
		product.ID = primitive.NewObjectID()
		product.CreatedAt = now
		docs = append(docs, product)
	}

	if _, err := p.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("ошибка импорта товаров: %w", err)
	}
	return nil
}

// Update обновляет товар по идентификатору.
func (p *Products) Update(ctx context.Context, id string, product *model.Product) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	product.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":          product.Name,
		"description":   product.Description,
		"category":      product.Category,
		"price":         product.Price,
		"discountPrice": product.DiscountPrice,
		"stock":         product.Stock,
		"available":     product.Available,
		"image":         product.Image,
		"imagePublicId": product.ImagePublicID,
		"updatedAt":     product.UpdatedAt,
	}}

	res, err := p.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("ошибка обновления товара: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет товар по идентификатору.
func (p *Products) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := p.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ошибка удаления товара: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count возвращает количество товаров.
func (p *Products) Count(ctx context.Context) (int64, error) {
	n, err := p.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта товаров: %w", err)
	}
	return n, nil
}

// CountLowStock возвращает количество товаров с остатком ниже порога.
func (p *Products) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	n, err := p.col.CountDocuments(ctx, bson.M{"stock": bson.M{"$lt": threshold}})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта товаров с низким остатком: %w", err)
	}
	return n, nil
}
