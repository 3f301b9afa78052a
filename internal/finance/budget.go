package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
)

// Budget status tiers. Lower bounds are inclusive, upper bounds exclusive,
// so every non-negative progress value lands in exactly one tier.
const (
	StatusOver    = "over"     // progress >= 100
	StatusNear    = "near"     // 90 <= progress < 100
	StatusOnTrack = "on-track" // 75 <= progress < 90
	StatusUnder   = "under"    // progress < 75
)

var (
	hundred        = decimal.NewFromInt(100)
	nearThreshold  = decimal.NewFromInt(90)
	trackThreshold = decimal.NewFromInt(75)
)

// Progress returns how much of a budget is consumed as a percentage,
// clamped to 100 and rounded to 2 decimal places. A non-positive budget
// amount yields 0 rather than a division by zero; page variants of the
// old client disagreed on this guard and the unguarded form was a bug.
func Progress(amount, spent decimal.Decimal) decimal.Decimal {
	if amount.Sign() <= 0 {
		return decimal.Zero
	}
	pct := spent.Div(amount).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct.Round(2)
}

// Status classifies a progress percentage into one of the four tiers.
// Total over all non-negative inputs; boundary values resolve to the tier
// whose lower bound they match.
func Status(progress decimal.Decimal) string {
	switch {
	case progress.GreaterThanOrEqual(hundred):
		return StatusOver
	case progress.GreaterThanOrEqual(nearThreshold):
		return StatusNear
	case progress.GreaterThanOrEqual(trackThreshold):
		return StatusOnTrack
	default:
		return StatusUnder
	}
}

// ResetWindow returns the first and last instant of the current budget
// period — the calendar month or calendar year containing ref, evaluated
// in ref's own location. Callers pick the timezone by picking ref.
// Unknown budget types fall back to monthly.
func ResetWindow(budgetType string, ref time.Time) (start, end time.Time) {
	loc := ref.Location()
	switch budgetType {
	case domain.BudgetYearly:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default: // monthly
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
	return start, end
}
