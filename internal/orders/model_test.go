package orders

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		discount string
		want     string
	}{
		{name: "empty", items: nil, discount: "10", want: "0"},
		{name: "no discount", items: []Item{{Subtotal: dec("270")}}, discount: "0", want: "270"},
		{name: "order discount", items: []Item{{Subtotal: dec("100")}, {Subtotal: dec("300")}}, discount: "5", want: "380"},
		{name: "clamped", items: []Item{{Subtotal: dec("100")}}, discount: "120", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.items, dec(tt.discount))
			assert.True(t, got.Equal(dec(tt.want)), got.String())
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusPending.Editable())
	assert.False(t, StatusCompleted.Editable())
	assert.False(t, StatusCancelled.Editable())

	assert.True(t, StatusCompleted.IsCompleted())
	assert.False(t, StatusCompleted.IsCancelled())
	assert.True(t, StatusCancelled.IsCancelled())
	assert.Equal(t, "Cancelled", StatusCancelled.Label())

	s, err := ParseStatus(" completed ")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
}

func TestOrderJSONCarriesDerivedFlags(t *testing.T) {
	raw, err := json.Marshal(Order{ID: 3, Status: StatusCancelled, Discount: dec("0"), TotalAmount: dec("10")})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "CANCELLED", got["status"])
	assert.Equal(t, "Cancelled", got["status_label"])
	assert.Equal(t, true, got["is_cancelled"])
	assert.Equal(t, false, got["is_completed"])
	assert.Equal(t, float64(3), got["id"])
}

func TestDetailSummary(t *testing.T) {
	d := Detail{
		Order: Order{TotalAmount: dec("285.30")},
		Items: []Item{
			{Rate: dec("90"), Quantity: 3, Discount: dec("10"), Subtotal: dec("270")},
			{Rate: dec("80"), Quantity: 1, Discount: dec("0"), Subtotal: dec("80")},
			{Rate: dec("0"), Quantity: 2, Discount: dec("100"), Subtotal: dec("0")},
			{Rate: dec("40"), Quantity: 1, Discount: dec("33.33"), Subtotal: dec("40")},
		},
	}
	sum := d.Summary()
	// 300 + 80 + 0 + 60.00
	assert.True(t, sum.GrossSubtotal.Equal(dec("440")), sum.GrossSubtotal.String())
	assert.True(t, sum.DiscountAmount.Equal(dec("50")), sum.DiscountAmount.String())
	assert.True(t, sum.Total.Equal(dec("285.30")))

	empty := Detail{Order: Order{TotalAmount: decimal.Zero}}.Summary()
	assert.True(t, empty.GrossSubtotal.IsZero())
	assert.True(t, empty.DiscountAmount.IsZero())
}

func TestDetailJSONCarriesSummary(t *testing.T) {
	raw, err := json.Marshal(Detail{
		Order: Order{ID: 7, Status: StatusPending, TotalAmount: dec("270")},
		Items: []Item{{Rate: dec("90"), Quantity: 3, Discount: dec("10"), Subtotal: dec("270")}},
	})
	require.NoError(t, err)

	var got struct {
		Order   map[string]any `json:"order"`
		Items   []any          `json:"items"`
		Summary Summary        `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Pending", got.Order["status_label"])
	assert.Len(t, got.Items, 1)
	assert.True(t, got.Summary.GrossSubtotal.Equal(dec("300")))
	assert.True(t, got.Summary.DiscountAmount.Equal(dec("30")))
	assert.True(t, got.Summary.Total.Equal(dec("270")))
}
