package report

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/plantee/storefront/internal/domain"
)

// OrderSummary aggregates the order book.
type OrderSummary struct {
	Orders           int            `json:"orders"`
	Units            int            `json:"units"`
	Revenue          string         `json:"revenue"`
	MeanOrderValue   float64        `json:"meanOrderValue"`
	MedianOrderValue float64        `json:"medianOrderValue"`
	MaxOrderValue    float64        `json:"maxOrderValue"`
	ByStatus         map[string]int `json:"byStatus"`
	FlaggedTotals    int            `json:"flaggedTotals"`
}

// Summarize computes revenue from the client asserted totals, which is what
// the buyer was charged. Orders whose total disagrees with their lines are
// counted in FlaggedTotals.
func Summarize(orders []domain.Order) OrderSummary {
	sum := OrderSummary{
		Orders:   len(orders),
		Revenue:  "0.00",
		ByStatus: map[string]int{},
	}
	for _, s := range domain.OrderStatuses {
		sum.ByStatus[s] = 0
	}
	if len(orders) == 0 {
		return sum
	}

	revenue := decimal.Zero
	values := make(stats.Float64Data, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		values = append(values, o.TotalAmount)
		sum.ByStatus[o.Status]++
		for _, it := range o.Items {
			sum.Units += it.Quantity
		}
		if !o.TotalMatches() {
			sum.FlaggedTotals++
		}
	}
	sum.Revenue = revenue.StringFixed(2)
	sum.MeanOrderValue = round2(values.Mean)
	sum.MedianOrderValue = round2(values.Median)
	sum.MaxOrderValue = round2(values.Max)
	return sum
}

func round2(f func() (float64, error)) float64 {
	v, err := f()
	if err != nil {
		return 0
	}
	r, _ := stats.Round(v, 2)
	return r
}

// ParseRange parses optional free-form from/to bounds. A date-only upper
// bound covers the whole day.
func ParseRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	if s := strings.TrimSpace(from); s != "" {
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return start, end, errors.Wrapf(err, "invalid from date %q", s)
		}
		start = t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return start, end, errors.Wrapf(err, "invalid to date %q", s)
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, errors.New("to date is before from date")
	}
	return start, end, nil
}

// FilterOrders keeps orders created within [from, to]. Zero bounds are open.
func FilterOrders(orders []domain.Order, from, to time.Time) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && o.CreatedAt.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}
