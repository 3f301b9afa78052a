// Package finance implements the pure derivations the UI needs over
// already-fetched transaction and budget records: totals, category and
// monthly breakdowns, running balance, and budget progress.
//
// Every function here is a deterministic, side-effect-free transform of
// its inputs. Nothing performs I/O, nothing mutates its arguments, and
// all money arithmetic is fixed-point via shopspring/decimal.
package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
)

// monthKeyLayout is the locale-independent grouping key for monthly series.
// Display formatting (e.g. "January 2024") is a UI concern.
const monthKeyLayout = "2006-01"

// TotalByType sums the amounts of all transactions whose type matches.
// Returns zero for an empty input. Zero-valued amounts contribute nothing.
func TotalByType(txns []domain.Transaction, txType string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.Type == txType {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// ExpenseByCategory sums expense amounts per category. Transactions without
// a category are bucketed under domain.UncategorizedLabel. The result holds
// exactly the categories present in the input; absent categories are not
// zero-filled.
func ExpenseByCategory(txns []domain.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Type != domain.TypeExpense {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = domain.UncategorizedLabel
		}
		sums[cat] = sums[cat].Add(t.Amount)
	}
	return sums
}

// MonthlySeries buckets transactions by calendar month of their date and
// sums income and expense per bucket. The result is sorted chronologically;
// the YYYY-MM key sorts lexicographically in date order.
func MonthlySeries(txns []domain.Transaction) []domain.MonthlyPoint {
	buckets := make(map[string]*domain.MonthlyPoint)
	for _, t := range txns {
		key := t.Date.Format(monthKeyLayout)
		p, ok := buckets[key]
		if !ok {
			p = &domain.MonthlyPoint{Month: key}
			buckets[key] = p
		}
		switch t.Type {
		case domain.TypeIncome:
			p.Income = p.Income.Add(t.Amount)
		case domain.TypeExpense:
			p.Expense = p.Expense.Add(t.Amount)
		}
	}

	series := make([]domain.MonthlyPoint, 0, len(buckets))
	for _, p := range buckets {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month < series[j].Month
	})
	return series
}

// CumulativeBalance returns one entry per transaction, ordered ascending by
// date, with the running balance after that transaction. Income adds,
// expense subtracts, the balance starts at zero and each entry is rounded
// to 2 decimal places. The input slice is not modified.
func CumulativeBalance(txns []domain.Transaction) []domain.BalancePoint {
	if len(txns) == 0 {
		return nil
	}

	ordered := make([]domain.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	points := make([]domain.BalancePoint, 0, len(ordered))
	balance := decimal.Zero
	for _, t := range ordered {
		switch t.Type {
		case domain.TypeIncome:
			balance = balance.Add(t.Amount)
		case domain.TypeExpense:
			balance = balance.Sub(t.Amount)
		}
		points = append(points, domain.BalancePoint{
			Date:    t.Date,
			Balance: balance.Round(2),
		})
	}
	return points
}

// Filter returns the transactions matching f, preserving order.
// Zero-valued filter fields match everything.
func Filter(txns []domain.Transaction, f domain.TransactionFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Month != "" && t.Date.Format(monthKeyLayout) != f.Month {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Paginate slices a transaction list for 1-based page numbers.
// Out-of-range pages yield an empty slice.
func Paginate(txns []domain.Transaction, page, pageSize int) []domain.Transaction {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(txns) {
		return []domain.Transaction{}
	}
	end := start + pageSize
	if end > len(txns) {
		end = len(txns)
	}
	return txns[start:end]
}

// SpentInWindow sums completed and pending EXPENSE transactions for a
// category that fall inside [start, end]. Used to recompute a budget's
// spent amount before syncing it upstream.
func SpentInWindow(txns []domain.Transaction, category string, start, end time.Time) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range txns {
		if t.Type != domain.TypeExpense || t.Category != category {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	return spent
}
