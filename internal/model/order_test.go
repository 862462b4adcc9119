package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestProduct_Available(t *testing.T) {
	yes, no := true, false

	assert.True(t, Product{}.Available())
	assert.True(t, Product{InStock: &yes}.Available())
	assert.False(t, Product{InStock: &no}.Available())
}

func TestOrder_ShortID(t *testing.T) {
	assert.Equal(t, "5f2b9c1e", Order{ID: "5f2b9c1e-0000-4000-8000-000000000001"}.ShortID())
	assert.Equal(t, "abc", Order{ID: "abc"}.ShortID())
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"email": "Email is required"}}
	assert.Equal(t, "validation failed: email: Email is required", err.Error())
}
