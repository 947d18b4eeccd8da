package events

import (
	"encoding/json"
	"time"

	"github.com/craftculture/orders-api/internal/models"
	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID      string             `json:"order_id"`
	Username     string             `json:"username"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Items        []models.OrderItem `json:"items"`
	DeliveryDate time.Time          `json:"delivery_date"`
}

type OrderStatusChangedPayload struct {
	OrderID  string             `json:"order_id"`
	Username string             `json:"username"`
	Status   models.OrderStatus `json:"status"`
}

// PartitionKey keeps every event for one order on the same partition so
// consumers see its lifecycle in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
