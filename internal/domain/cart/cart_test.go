package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		wantQuantity int
		wantPrice    decimal.Decimal
	}{
		{
			name:         "empty cart",
			items:        nil,
			wantQuantity: 0,
			wantPrice:    decimal.Zero,
		},
		{
			name: "single line",
			items: []Item{
				{VariantID: "v1", Quantity: 3, Price: decimal.NewFromInt(50000)},
			},
			wantQuantity: 3,
			wantPrice:    decimal.NewFromInt(150000),
		},
		{
			name: "multiple lines",
			items: []Item{
				{VariantID: "v1", Quantity: 2, Price: decimal.NewFromInt(50000)},
				{VariantID: "v2", Quantity: 1, Price: decimal.NewFromInt(30000)},
			},
			wantQuantity: 3,
			wantPrice:    decimal.NewFromInt(130000),
		},
		{
			name: "fractional prices",
			items: []Item{
				{VariantID: "v1", Quantity: 2, Price: decimal.NewFromFloat(19.99)},
				{VariantID: "v2", Quantity: 1, Price: decimal.NewFromFloat(0.02)},
			},
			wantQuantity: 3,
			wantPrice:    decimal.NewFromFloat(40.00),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.items)
			assert.Equal(t, tt.wantQuantity, got.Quantity)
			assert.True(t, tt.wantPrice.Equal(got.Price),
				"expected price %s, got %s", tt.wantPrice, got.Price)
		})
	}
}
