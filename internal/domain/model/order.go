package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Статусы заказа.
const (
	OrderStatusNew        = "new"
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem — позиция заказа.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// Order — заказ покупателя (коллекция orders).
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId,omitempty" json:"user_id,omitempty"`
	Items     []OrderItem        `bson:"items,omitempty" json:"items,omitempty"`
	Total     float64            `bson:"total" json:"total"`
	Status    string             `bson:"status" json:"status"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// ValidOrderStatus проверяет, является ли строка допустимым статусом заказа.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusPending, OrderStatusProcessing,
		OrderStatusDelivering, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Customer — покупатель магазина (коллекция users).
type Customer struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`

	// OrdersCount — количество заказов покупателя (вычисляется, не хранится).
	OrdersCount int `bson:"-" json:"orders_count"`
}
