package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Типы скидок.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Offer — акция или скидка (коллекция offers).
type Offer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	DiscountType  string             `bson:"discountType" json:"discount_type"`
	DiscountValue float64            `bson:"discountValue" json:"discount_value"`
	CouponCode    string             `bson:"couponCode,omitempty" json:"coupon_code,omitempty"`
	ProductIDs    []string           `bson:"productIds,omitempty" json:"product_ids,omitempty"`
	Active        bool               `bson:"active" json:"active"`
	StartDate     time.Time          `bson:"startDate" json:"start_date"`
	EndDate       time.Time          `bson:"endDate" json:"end_date"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// InWindow проверяет, попадает ли момент t в окно действия акции.
func (o *Offer) InWindow(t time.Time) bool {
	return o.Active && !t.Before(o.StartDate) && !t.After(o.EndDate)
}
