package revenue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/floramart/internal/domain/order"
)

func paidOrder(createdAt time.Time, amount int64, status order.Status) order.Order {
	return order.Order{
		Status:    status,
		CreatedAt: createdAt,
		Payment:   order.Payment{Amount: decimal.NewFromInt(amount)},
	}
}

func TestAggregate_Empty(t *testing.T) {
	report, err := Aggregate(nil, Daily)
	require.NoError(t, err)

	assert.Empty(t, report.Records)
	assert.Equal(t, 0, report.KPI.OrderCount)
	assert.True(t, report.KPI.TotalRevenue.IsZero())
	assert.True(t, report.KPI.AverageOrderValue.IsZero(),
		"zero orders must not divide by zero")
}

func TestAggregate_Daily(t *testing.T) {
	jun14 := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	jun15 := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	orders := []order.Order{
		paidOrder(jun14, 100000, order.StatusDelivered),
		paidOrder(jun14.Add(2*time.Hour), 50000, order.StatusOutForDelivery),
		paidOrder(jun15, 150000, order.StatusPending),
	}

	report, err := Aggregate(orders, Daily)
	require.NoError(t, err)

	require.Len(t, report.Records, 2)
	assert.Equal(t, "2025-06-14", report.Records[0].Date)
	assert.Equal(t, 2, report.Records[0].OrderCount)
	assert.True(t, decimal.NewFromInt(150000).Equal(report.Records[0].TotalRevenue))
	assert.Equal(t, "2025-06-15", report.Records[1].Date)
	assert.Equal(t, 1, report.Records[1].OrderCount)

	assert.Equal(t, 3, report.KPI.OrderCount)
	assert.True(t, decimal.NewFromInt(300000).Equal(report.KPI.TotalRevenue))
	assert.True(t, decimal.NewFromInt(100000).Equal(report.KPI.AverageOrderValue))
}

func TestAggregate_Monthly(t *testing.T) {
	orders := []order.Order{
		paidOrder(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), 80000, order.StatusDelivered),
		paidOrder(time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC), 20000, order.StatusDelivered),
		paidOrder(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 70000, order.StatusDelivered),
	}

	report, err := Aggregate(orders, Monthly)
	require.NoError(t, err)

	require.Len(t, report.Records, 2)
	assert.Equal(t, "2025-05", report.Records[0].Date)
	assert.True(t, decimal.NewFromInt(100000).Equal(report.Records[0].TotalRevenue))
	assert.Equal(t, "2025-06", report.Records[1].Date)
	assert.True(t, decimal.NewFromInt(70000).Equal(report.Records[1].TotalRevenue))
}

func TestAggregate_ExcludesCancelledAndReturned(t *testing.T) {
	day := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		paidOrder(day, 100000, order.StatusDelivered),
		paidOrder(day, 999999, order.StatusCancelled),
		paidOrder(day, 888888, order.StatusReturned),
	}

	report, err := Aggregate(orders, Daily)
	require.NoError(t, err)

	assert.Equal(t, 1, report.KPI.OrderCount)
	assert.True(t, decimal.NewFromInt(100000).Equal(report.KPI.TotalRevenue))
}

func TestAggregate_AverageRounds(t *testing.T) {
	day := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		paidOrder(day, 100, order.StatusDelivered),
		paidOrder(day, 101, order.StatusDelivered),
		paidOrder(day, 101, order.StatusDelivered),
	}

	report, err := Aggregate(orders, Daily)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(100.67).Equal(report.KPI.AverageOrderValue),
		"got %s", report.KPI.AverageOrderValue)
}

func TestAggregate_UnknownTimeframe(t *testing.T) {
	_, err := Aggregate(nil, "weekly")
	assert.Error(t, err)
}
