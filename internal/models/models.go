package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductAvailable    ProductStatus = "Available"
	ProductNotAvailable ProductStatus = "Not Available"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "Online"
	PaymentCOD    PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCOD
}

type Product struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Offer     decimal.Decimal `json:"offer"`
	Quantity  int             `json:"quantity"`
	Status    ProductStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// OrderItem is a value snapshot of the product at order time; later product
// mutations are never observed through it.
type OrderItem struct {
	ProductID string          `json:"_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Offer     decimal.Decimal `json:"offer"`
}

var hundred = decimal.NewFromInt(100)

// LineTotal returns price × quantity with the offer percentage taken off.
func (i OrderItem) LineTotal() decimal.Decimal {
	gross := i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return gross.Sub(gross.Mul(i.Offer).Div(hundred))
}

type Order struct {
	ID             string          `json:"_id"`
	Username       string          `json:"username"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Address        Address         `json:"address"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	Status         OrderStatus     `json:"status"`
	OrderDate      time.Time       `json:"orderDate"`
	DeliveryDate   time.Time       `json:"deliveryDate"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
