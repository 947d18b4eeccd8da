package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		offer    string
		want     string
	}{
		{"no discount", "100", 3, "0", "300"},
		{"ten percent off", "100", 3, "10", "270"},
		{"full discount", "250", 2, "100", "0"},
		{"fractional price", "220.50", 2, "20", "352.8"},
		{"single unit", "95", 1, "12", "83.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := OrderItem{
				Price:    decimal.RequireFromString(tt.price),
				Quantity: tt.quantity,
				Offer:    decimal.RequireFromString(tt.offer),
			}

			assert.True(t, item.LineTotal().Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", item.LineTotal(), tt.want)
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}

	assert.False(t, OrderStatus("Refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("pending").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentOnline.Valid())
	assert.True(t, PaymentCOD.Valid())
	assert.False(t, PaymentMethod("Cheque").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
