package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product — товар каталога (коллекция products).
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice float64            `bson:"discountPrice,omitempty" json:"discount_price,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	Available     bool               `bson:"available" json:"available"`
	// Image — URL основного изображения в asset store.
	Image string `bson:"image,omitempty" json:"image,omitempty"`
	// ImagePublicID — public_id изображения для удаления из asset store.
	ImagePublicID string    `bson:"imagePublicId,omitempty" json:"image_public_id,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// Category — раздел каталога (коллекция categories).
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Order     int                `bson:"order,omitempty" json:"order,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
