package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. pending → processing → shipped → delivered, or cancelled.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PayLater       = "pay_later"
	PaidPersonally = "paid_personally"
	BankTransfer   = "bank_transfer"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PayLater, PaidPersonally, BankTransfer:
		return true
	}
	return false
}

// OrderItem is one line of an order. Price is snapshotted from the product
// at placement time and never re-read.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     int64              `bson:"price" json:"price"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
}

// DeliveryAddress is where the order ships.
type DeliveryAddress struct {
	Address        string `bson:"address" json:"address"`
	AdditionalInfo string `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
}

// Order is a checkout document. UserID is nil for guest checkout, in which
// case the contact fields identify the customer. A pointer rather than a
// plain ObjectID so guest orders omit the field entirely instead of carrying
// the all-zero id. Items and Total are immutable after creation; only Status
// changes, by admin action.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	PhoneNumber     string              `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Email           string              `bson:"email,omitempty" json:"email,omitempty"`
	CustomerName    string              `bson:"customerName,omitempty" json:"customerName,omitempty"`
	Items           []OrderItem         `bson:"items" json:"items"`
	Total           int64               `bson:"total" json:"total"`
	DeliveryAddress DeliveryAddress     `bson:"deliveryAddress" json:"deliveryAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	OrderCode       string              `bson:"orderCode" json:"orderCode"` // unique, ≤8 chars
	Status          string              `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedOrder is an order with its references expanded for responses.
type PopulatedOrder struct {
	Order `bson:",inline"`
	User  *User           `bson:"user,omitempty" json:"user,omitempty"`
	Lines []PopulatedItem `bson:"lines,omitempty" json:"lines,omitempty"`
}

// PopulatedItem pairs an order item with a product summary.
type PopulatedItem struct {
	OrderItem `bson:",inline"`
	Product   *Product `bson:"product,omitempty" json:"product,omitempty"`
}
