package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{"zero", decimal.Zero, "0₫"},
		{"hundreds", decimal.NewFromInt(500), "500₫"},
		{"thousands", decimal.NewFromInt(1500), "1.500₫"},
		{"typical order minimum", decimal.NewFromInt(100000), "100.000₫"},
		{"millions", decimal.NewFromInt(12345678), "12.345.678₫"},
		{"fractional rounds to whole", decimal.NewFromFloat(99999.6), "100.000₫"},
		{"negative", decimal.NewFromInt(-25000), "-25.000₫"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVND(tt.amount))
		})
	}
}
