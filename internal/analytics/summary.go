// Package analytics backs the admin dashboard: cached sales and user reads
// plus per-day sales aggregation.
package analytics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const dayLayout = "2006-01-02"

// MaxRangeDays bounds the span of one dashboard summary.
const MaxRangeDays = 366

var ErrRangeTooLarge = errors.New("date range exceeds 366 days")

// CheckRange rejects spans of more than MaxRangeDays calendar days.
func CheckRange(from, to time.Time) error {
	if to.Sub(from) >= MaxRangeDays*24*time.Hour {
		return ErrRangeTooLarge
	}
	return nil
}

type DayPoint struct {
	Date   string          `json:"date"`
	Profit decimal.Decimal `json:"profit"`
	Cost   decimal.Decimal `json:"cost"`
	Amount decimal.Decimal `json:"amount"`
}

type Summary struct {
	From   time.Time       `json:"from"`
	To     time.Time       `json:"to"`
	Days   []DayPoint      `json:"days"`
	Profit decimal.Decimal `json:"total_profit"`
	Cost   decimal.Decimal `json:"total_cost"`
	Amount decimal.Decimal `json:"total_amount"`
	Sales  int             `json:"sales"`
	// Trend is the profit change between the last two days, in percent.
	Trend decimal.Decimal `json:"trend"`
}

// DefaultRange is the month ending at now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -1, 0), now
}

// Filter keeps sales dated within [from, to].
func Filter(sales []domain.Sale, from, to time.Time) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, s := range sales {
		if s.SaleDate.Before(from) || s.SaleDate.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Summarize aggregates sales in [from, to] per calendar day (UTC). Every day
// in the range gets a point, zero when it had no sales.
func Summarize(sales []domain.Sale, from, to time.Time) Summary {
	sum := Summary{From: from, To: to, Days: []DayPoint{}}
	if to.Before(from) {
		return sum
	}

	byDay := make(map[string]*DayPoint)
	for _, s := range Filter(sales, from, to) {
		key := s.SaleDate.UTC().Format(dayLayout)
		p, ok := byDay[key]
		if !ok {
			p = &DayPoint{Date: key}
			byDay[key] = p
		}
		profit := decimal.NewFromFloat(s.TotalProfit)
		cost := decimal.NewFromFloat(s.TotalCost)
		amount := decimal.NewFromFloat(s.TotalAmount)
		p.Profit = p.Profit.Add(profit)
		p.Cost = p.Cost.Add(cost)
		p.Amount = p.Amount.Add(amount)

		sum.Profit = sum.Profit.Add(profit)
		sum.Cost = sum.Cost.Add(cost)
		sum.Amount = sum.Amount.Add(amount)
		sum.Sales++
	}

	last := truncateDay(to)
	for day := truncateDay(from); !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		if p, ok := byDay[key]; ok {
			sum.Days = append(sum.Days, *p)
			continue
		}
		sum.Days = append(sum.Days, DayPoint{Date: key})
	}

	sum.Trend = trend(sum.Days)
	return sum
}

func trend(days []DayPoint) decimal.Decimal {
	if len(days) < 2 {
		return decimal.Zero
	}
	prev, cur := days[len(days)-2].Profit, days[len(days)-1].Profit
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
