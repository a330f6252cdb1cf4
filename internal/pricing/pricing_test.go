package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{"Exact days", start.Add(48 * time.Hour), 2},
		{"Partial day rounds up", start.Add(49 * time.Hour), 3},
		{"One hour is one day", start.Add(time.Hour), 1},
		{"Same instant is one day", start, 1},
		{"One millisecond over", start.Add(72*time.Hour + time.Millisecond), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DurationDays(start, tt.end))
		})
	}
}

func TestCompute(t *testing.T) {
	t.Run("Ten percent discount", func(t *testing.T) {
		q := Compute(100, 3, 0.10, 0.19)
		assert.Equal(t, "321.3", q.Total.String())
		assert.Equal(t, 321.30, q.TotalFloat())
		assert.Equal(t, "300", q.BasePrice.String())
		assert.Equal(t, "270", q.Discounted.String())
	})

	t.Run("New client without discount", func(t *testing.T) {
		q := Compute(50, 2, 0, 0.19)
		assert.Equal(t, 119.00, q.TotalFloat())
	})

	t.Run("Rounds to cents", func(t *testing.T) {
		q := Compute(33.33, 1, 0.30, 0.19)
		// 33.33 * 0.7 * 1.19 = 27.764...
		assert.Equal(t, "27.76", q.Total.StringFixed(2))
	})

	t.Run("VIP discount", func(t *testing.T) {
		q := Compute(80, 5, 0.30, 0.19)
		assert.Equal(t, 333.20, q.TotalFloat())
	})
}
