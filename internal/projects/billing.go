package projects

import (
	"math"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

// Revenue is a project's accrued billable value. It is derived from the
// current time logs on every read and never persisted, unlike an invoice
// total, which is frozen at creation.
type Revenue struct {
	TotalMinutes int64       `json:"totalMinutes"`
	TotalCents   money.Cents `json:"totalCents"`
}

// ComputeRevenue aggregates a project's time logs into accrued value.
//
// With at least one time log, each log bills (minutes/60) times its
// effective rate: the log's own rateCents when set, else the project's
// hourlyRateCents, else 0. Only when that hourly sum comes out to exactly
// zero does the project's flat fee apply. With zero time logs, a project
// that has an hourly rate configured bills zero minutes against it and
// yields 0 even when a flat fee is also set; the flat fee applies only
// when no hourly rate is configured. The final amount is rounded to the
// nearest cent.
func ComputeRevenue(p *Project, logs []TimeLog) Revenue {
	var totalMinutes int64
	for _, l := range logs {
		totalMinutes += l.Minutes
	}

	var total float64
	switch {
	case len(logs) > 0:
		var sum float64
		for _, l := range logs {
			var rate float64
			if l.RateCents != nil {
				rate = float64(*l.RateCents)
			} else if p.HourlyRateCents != nil {
				rate = float64(*p.HourlyRateCents)
			}
			sum += float64(l.Minutes) / 60 * rate
		}
		if sum > 0 {
			total = sum
		} else if p.FlatFeeCents != nil {
			total = float64(*p.FlatFeeCents)
		}
	case p.HourlyRateCents != nil:
		total = float64(totalMinutes) / 60 * float64(*p.HourlyRateCents)
	case p.FlatFeeCents != nil:
		total = float64(*p.FlatFeeCents)
	}

	return Revenue{
		TotalMinutes: totalMinutes,
		TotalCents:   money.Cents(math.Round(total)),
	}
}
