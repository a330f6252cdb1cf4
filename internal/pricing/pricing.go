package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DurationDays counts rental days, rounding any partial day up, with a
// minimum of one day.
func DurationDays(start, end time.Time) int {
	days := int(math.Ceil(float64(end.Sub(start)) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

type Quote struct {
	DurationDays int
	BasePrice    decimal.Decimal
	Discounted   decimal.Decimal
	Total        decimal.Decimal // tax included, two decimals
}

// Compute prices a rental: daily price times duration, minus the fidelity
// discount, plus tax, rounded to cents.
func Compute(dailyPrice float64, days int, discount, taxRate float64) Quote {
	base := decimal.NewFromFloat(dailyPrice).Mul(decimal.NewFromInt(int64(days)))
	discounted := base.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount)))
	total := discounted.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(taxRate))).Round(2)
	return Quote{
		DurationDays: days,
		BasePrice:    base,
		Discounted:   discounted,
		Total:        total,
	}
}

func (q Quote) TotalFloat() float64 {
	return q.Total.InexactFloat64()
}
