package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotal(t *testing.T) {
	type TestCase struct {
		Name     string
		Items    []OrderItem
		Expected int64
	}

	testCases := []TestCase{
		{
			Name:     "No items",
			Expected: 0,
		},
		{
			Name:     "Single item with quantity",
			Items:    []OrderItem{{Price: 15000, Quantity: 2}},
			Expected: 30000,
		},
		{
			Name: "Several items including a free one",
			Items: []OrderItem{
				{Price: 12500, Quantity: 1},
				{Price: 0, Quantity: 3},
				{Price: 7000, Quantity: 4},
			},
			Expected: 40500,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, CalculateTotal(tc.Items))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.True(t, OrderStatusPaid.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
}

func TestOrderPatchApply(t *testing.T) {
	order := Order{PaymentType: "qris", PosReference: ""}
	ref := "R-001"

	OrderPatch{PosReference: &ref}.Apply(&order)

	assert.Equal(t, "qris", order.PaymentType)
	assert.Equal(t, "R-001", order.PosReference)
	assert.True(t, Order{Status: OrderStatusPaid, PosReference: ref}.IsRecorded())
	assert.False(t, Order{Status: OrderStatusPaid}.IsRecorded())
}

func TestOrderCloneDoesNotShareItems(t *testing.T) {
	order := Order{Items: []OrderItem{{ProductName: "Kopi"}}}

	clone := order.Clone()
	clone.Items[0].ProductName = "Teh"

	assert.Equal(t, "Kopi", order.Items[0].ProductName)
}
