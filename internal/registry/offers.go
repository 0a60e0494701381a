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

// Offers — доступ к акциям и скидкам.
type Offers struct {
	col *mongo.Collection
}

// List возвращает все акции, новые первыми.
func (o *Offers) List(ctx context.Context) ([]*model.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := o.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка акций: %w", err)
	}
	defer cur.Close(ctx)

	var result []*model.Offer
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения акций: %w", err)
	}
	return result, nil
}

// Get возвращает акцию по идентификатору.
func (o *Offers) Get(ctx context.Context, id string) (*model.Offer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var offer model.Offer
	err = o.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&offer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения акции: %w", err)
	}
	return &offer, nil
}

// Create добавляет акцию и заполняет её ID.
func (o *Offers) Create(ctx context.Context, offer *model.Offer) error {
	offer.ID = primitive.NewObjectID()
	offer.CreatedAt = time.Now().UTC()

	if _, err := o.col.InsertOne(ctx, offer); err != nil {
		return fmt.Errorf("ошибка создания акции: %w", err)
	}
	return nil
}

// Update обновляет акцию по идентификатору.
func (o *Offers) Update(ctx context.Context, id string, offer *model.Offer) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":          offer.Name,
		"description":   offer.Description,
		"discountType":  offer.DiscountType,
		"discountValue": offer.DiscountValue,
		"couponCode":    offer.CouponCode,
		"productIds":    offer.ProductIDs,
		"active":        offer.Active,
		"startDate":     offer.StartDate,
		"endDate":       offer.EndDate,
	}}

	res, err := o.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("ошибка обновления акции: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет акцию по идентификатору.
func (o *Offers) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := o.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ошибка удаления акции: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
