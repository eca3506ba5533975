package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Amounts(t *testing.T) {
	subtotal := decimal.RequireFromString("19.98")

	order := NewOrder(nil, "buyer@example.com", subtotal, OrderStatusCompleted)

	assert.True(t, order.Tax.Equal(decimal.RequireFromString("1.998")), "tax %s", order.Tax)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("21.978")), "total %s", order.Total)
	assert.NotEmpty(t, order.OrderNo)
	assert.Nil(t, order.UserID)
}

func TestNewOrder_ZeroSubtotal(t *testing.T) {
	order := NewOrder(nil, "buyer@example.com", decimal.Zero, OrderStatusCompleted)

	assert.True(t, order.Tax.IsZero())
	assert.True(t, order.Total.IsZero())
}

func TestNewOrder_DistinctOrderNumbers(t *testing.T) {
	a := NewOrder(nil, "buyer@example.com", decimal.Zero, OrderStatusCompleted)
	b := NewOrder(nil, "buyer@example.com", decimal.Zero, OrderStatusCompleted)

	assert.NotEqual(t, a.OrderNo, b.OrderNo)
}

func TestIsOwnedBy(t *testing.T) {
	userID := uint(7)
	owned := NewOrder(&userID, "buyer@example.com", decimal.Zero, OrderStatusPending)
	guest := NewOrder(nil, "buyer@example.com", decimal.Zero, OrderStatusCompleted)

	require.True(t, owned.IsOwnedBy(7))
	assert.False(t, owned.IsOwnedBy(8))
	assert.False(t, guest.IsOwnedBy(7))
}
