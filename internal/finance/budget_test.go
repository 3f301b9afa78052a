package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/finance"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProgress(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		spent  string
		want   string
	}{
		{"halfway", "200", "100", "50"},
		{"near limit", "200", "190", "95"},
		{"at limit", "200", "200", "100"},
		{"over limit clamps", "200", "350", "100"},
		{"nothing spent", "200", "0", "0"},
		{"zero amount guards division", "0", "150", "0"},
		{"negative amount guards too", "-50", "150", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := finance.Progress(dec(tc.amount), dec(tc.spent))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("Progress(%s, %s) = %s, want %s", tc.amount, tc.spent, got, tc.want)
			}
		})
	}
}

func TestProgress_MonotonicInSpent(t *testing.T) {
	amount := dec("500")
	prev := decimal.Zero
	for spent := int64(0); spent <= 700; spent += 50 {
		got := finance.Progress(amount, decimal.NewFromInt(spent))
		if got.LessThan(prev) {
			t.Fatalf("progress decreased: %s -> %s at spent=%d", prev, got, spent)
		}
		prev = got
	}
	if !prev.Equal(dec("100")) {
		t.Errorf("expected clamp at exactly 100, got %s", prev)
	}
}

func TestStatus_Tiers(t *testing.T) {
	tests := []struct {
		progress string
		want     string
	}{
		{"0", finance.StatusUnder},
		{"74.99", finance.StatusUnder},
		{"75", finance.StatusOnTrack},
		{"89.99", finance.StatusOnTrack},
		{"90", finance.StatusNear},
		{"99.99", finance.StatusNear},
		{"100", finance.StatusOver},
		{"250", finance.StatusOver},
	}

	for _, tc := range tests {
		if got := finance.Status(dec(tc.progress)); got != tc.want {
			t.Errorf("Status(%s) = %s, want %s", tc.progress, got, tc.want)
		}
	}
}

// Progress and Status compose the way the budget page renders them.
func TestProgressStatus_Scenarios(t *testing.T) {
	p := finance.Progress(dec("200"), dec("190"))
	if !p.Equal(dec("95")) || finance.Status(p) != finance.StatusNear {
		t.Errorf("190/200: got %s/%s, want 95/near", p, finance.Status(p))
	}

	p = finance.Progress(dec("200"), dec("200"))
	if !p.Equal(dec("100")) || finance.Status(p) != finance.StatusOver {
		t.Errorf("200/200: got %s/%s, want 100/over", p, finance.Status(p))
	}
}

func TestResetWindow_Monthly(t *testing.T) {
	ref := time.Date(2024, time.February, 14, 9, 30, 0, 0, time.UTC)

	start, end := finance.ResetWindow(domain.BudgetMonthly, ref)
	if start != time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected start %s", start)
	}
	if end.Month() != time.February || end.Day() != 29 { // 2024 is a leap year
		t.Errorf("expected end on Feb 29, got %s", end)
	}
	if !end.Before(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end must precede the next period, got %s", end)
	}
}

func TestResetWindow_Yearly(t *testing.T) {
	ref := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	start, end := finance.ResetWindow(domain.BudgetYearly, ref)
	if start != time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected start %s", start)
	}
	if end.Year() != 2024 || end.Month() != time.December || end.Day() != 31 {
		t.Errorf("expected end on Dec 31 2024, got %s", end)
	}
}

func TestResetWindow_HonorsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ref := time.Date(2024, time.March, 1, 2, 0, 0, 0, loc)

	start, _ := finance.ResetWindow(domain.BudgetMonthly, ref)
	if start.Location() != loc {
		t.Errorf("window must be computed in the caller's zone, got %s", start.Location())
	}
	if start.Month() != time.March {
		t.Errorf("expected March in UTC+5, got %s", start.Month())
	}
}

func TestResetWindow_UnknownTypeFallsBackToMonthly(t *testing.T) {
	ref := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	start, _ := finance.ResetWindow("weekly", ref)
	if start.Month() != time.May || start.Day() != 1 {
		t.Errorf("expected start of May, got %s", start)
	}
}
