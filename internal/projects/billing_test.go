package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

func cents(v int64) *money.Cents {
	c := money.Cents(v)
	return &c
}

func TestComputeRevenue(t *testing.T) {
	t.Run("per-log rate overrides the project hourly rate", func(t *testing.T) {
		p := &Project{HourlyRateCents: cents(3000)}
		logs := []TimeLog{
			{Minutes: 120, RateCents: cents(5000)}, // 2h at the override
			{Minutes: 60},                          // 1h at the project rate
		}

		rev := ComputeRevenue(p, logs)
		assert.EqualValues(t, 180, rev.TotalMinutes)
		assert.EqualValues(t, 13000, rev.TotalCents)
	})

	t.Run("flat fee applies when no logs and no hourly rate", func(t *testing.T) {
		p := &Project{FlatFeeCents: cents(150000)}

		rev := ComputeRevenue(p, nil)
		assert.EqualValues(t, 0, rev.TotalMinutes)
		assert.EqualValues(t, 150000, rev.TotalCents)
	})

	t.Run("an hourly rate with no logs bills zero, even with a flat fee set", func(t *testing.T) {
		p := &Project{HourlyRateCents: cents(10000), FlatFeeCents: cents(150000)}

		rev := ComputeRevenue(p, nil)
		assert.EqualValues(t, 0, rev.TotalCents)
	})

	t.Run("flat fee backstops a zero hourly sum when logs exist", func(t *testing.T) {
		p := &Project{FlatFeeCents: cents(80000)}
		logs := []TimeLog{
			{Minutes: 90}, // no log rate, no project rate
		}

		rev := ComputeRevenue(p, logs)
		assert.EqualValues(t, 90, rev.TotalMinutes)
		assert.EqualValues(t, 80000, rev.TotalCents)
	})

	t.Run("rounds to the nearest cent", func(t *testing.T) {
		p := &Project{HourlyRateCents: cents(5000)}
		logs := []TimeLog{{Minutes: 50}} // 50/60 * 5000 = 4166.66...

		rev := ComputeRevenue(p, logs)
		assert.EqualValues(t, 4167, rev.TotalCents)
	})

	t.Run("no logs and no rates yields zero", func(t *testing.T) {
		rev := ComputeRevenue(&Project{}, nil)
		assert.EqualValues(t, 0, rev.TotalMinutes)
		assert.EqualValues(t, 0, rev.TotalCents)
	})

	t.Run("mixed logs where only some carry an override", func(t *testing.T) {
		p := &Project{HourlyRateCents: cents(6000)}
		logs := []TimeLog{
			{Minutes: 30, RateCents: cents(12000)}, // 0.5h * $120 = $60
			{Minutes: 45},                          // 0.75h * $60 = $45
		}

		rev := ComputeRevenue(p, logs)
		assert.EqualValues(t, 75, rev.TotalMinutes)
		assert.EqualValues(t, 10500, rev.TotalCents)
	})
}
