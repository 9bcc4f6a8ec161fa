// Package revenue turns completed orders into dashboard figures: per-day or
// per-month buckets plus headline KPIs.
package revenue

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/order"
)

// Timeframe selects the bucketing granularity of a report.
type Timeframe string

const (
	Daily   Timeframe = "daily"
	Monthly Timeframe = "monthly"
)

// Record is one time bucket of revenue.
type Record struct {
	// Date is the bucket's canonical label: "2006-01-02" for daily buckets,
	// "2006-01" for monthly.
	Date         string
	TotalRevenue decimal.Decimal
	OrderCount   int
}

// KPI are the headline figures over the whole reported period.
type KPI struct {
	TotalRevenue      decimal.Decimal
	OrderCount        int
	AverageOrderValue decimal.Decimal
}

// Report is the full result of a revenue aggregation.
type Report struct {
	Records []Record
	KPI     KPI
}

// Qualifies reports whether an order counts toward revenue. Cancelled and
// returned orders do not.
func Qualifies(o *order.Order) bool {
	return o.Status != order.StatusCancelled && o.Status != order.StatusReturned
}

// Aggregate buckets qualifying orders by the calendar day or month of their
// creation time and computes KPIs. Records are sorted by date ascending.
// Zero qualifying orders yields an empty record list and a zero average,
// never a division by zero.
func Aggregate(orders []order.Order, tf Timeframe) (Report, error) {
	var layout string
	switch tf {
	case Daily:
		layout = "2006-01-02"
	case Monthly:
		layout = "2006-01"
	default:
		return Report{}, errors.Errorf("unknown timeframe: %q", tf)
	}

	buckets := make(map[string]*Record)
	total := decimal.Zero
	count := 0
	for i := range orders {
		o := &orders[i]
		if !Qualifies(o) {
			continue
		}
		key := o.CreatedAt.Format(layout)
		b, ok := buckets[key]
		if !ok {
			b = &Record{Date: key, TotalRevenue: decimal.Zero}
			buckets[key] = b
		}
		b.TotalRevenue = b.TotalRevenue.Add(o.Payment.Amount)
		b.OrderCount++
		total = total.Add(o.Payment.Amount)
		count++
	}

	records := make([]Record, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, *b)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	avg := decimal.Zero
	if count > 0 {
		avg = total.Div(decimal.NewFromInt(int64(count))).Round(2)
	}

	return Report{
		Records: records,
		KPI: KPI{
			TotalRevenue:      total,
			OrderCount:        count,
			AverageOrderValue: avg,
		},
	}, nil
}

// OrderSource supplies the orders a report is built from. An empty shopID
// means platform-wide scope; otherwise only orders containing that shop's
// variants are returned.
type OrderSource interface {
	ListForRevenue(ctx context.Context, shopID string, since, until time.Time) ([]order.Order, error)
}

// Service builds revenue reports from persisted orders.
type Service struct {
	orders OrderSource
}

// NewService creates a revenue Service.
func NewService(orders OrderSource) *Service {
	return &Service{orders: orders}
}

// Report fetches qualifying orders for the scope and period and aggregates
// them with the given timeframe. A zero since/until means an unbounded period.
func (s *Service) Report(ctx context.Context, tf Timeframe, shopID string, since, until time.Time) (Report, error) {
	orders, err := s.orders.ListForRevenue(ctx, shopID, since, until)
	if err != nil {
		return Report{}, errors.Wrap(err, "list orders")
	}
	return Aggregate(orders, tf)
}
