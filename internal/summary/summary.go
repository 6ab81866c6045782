// Package summary aggregates a user's transaction log into the report data
// the dashboard renders: per-category totals, monthly series and budget
// usage. Pure functions over snapshots; all sums are integer cents.
package summary

import (
	"math"
	"sort"

	"tally/internal/core"
)

const (
	StatusOK   BudgetStatus = "ok"
	StatusWarn BudgetStatus = "warn"
	StatusOver BudgetStatus = "over"

	warnThresholdPercent = 80
)

type (
	BudgetStatus string

	CategoryTotal struct {
		Category string
		Total    core.Money
	}

	// BudgetUsage is one budget row with its spending for the month.
	BudgetUsage struct {
		Category string
		Limit    core.Money
		Used     core.Money
		Percent  float64 // rounded to 2 decimals, display only
		Status   BudgetStatus
	}

	// Report is the month dashboard payload. The series cover every month
	// that has at least one transaction, sorted by YYYY-MM key; the
	// category totals and budget rows are scoped to the requested month
	// (or the whole log when no month is given).
	Report struct {
		Month          string
		CategoryTotals []CategoryTotal
		Months         []string
		IncomeSeries   []core.Money
		ExpenseSeries  []core.Money
		TrendSeries    []core.Money
		Budgets        []BudgetUsage
	}
)

// Build computes the report for one month of a user's ledger. month is a
// YYYY-MM key; empty means no month filter on the category totals. Budgets
// should already be filtered to the requested month by the caller.
func Build(transactions []core.Transaction, budgets []core.Budget, month string) Report {
	byCategory := make(map[string]int64)
	income := make(map[string]int64)
	expense := make(map[string]int64)

	for _, t := range transactions {
		key := t.Date.MonthKey()
		switch t.Kind {
		case core.Expense:
			expense[key] += t.Amount.Cents
			if month == "" || key == month {
				byCategory[t.Category] += t.Amount.Cents
			}
		case core.Income:
			income[key] += t.Amount.Cents
		}
	}

	report := Report{
		Month:          month,
		CategoryTotals: sortedTotals(byCategory),
		Months:         sortedMonths(income, expense),
	}
	for _, key := range report.Months {
		report.IncomeSeries = append(report.IncomeSeries, core.Money{Cents: income[key]})
		report.ExpenseSeries = append(report.ExpenseSeries, core.Money{Cents: expense[key]})
		// Trend tracks spending over time, same series the original charts.
		report.TrendSeries = append(report.TrendSeries, core.Money{Cents: expense[key]})
	}

	for _, b := range budgets {
		report.Budgets = append(report.Budgets, Usage(b, byCategory[b.Category]))
	}
	return report
}

// Usage computes one budget row: spending against the limit plus the
// three-way status used for budget coloring (ok below 80%, warn from 80%,
// over from 100%).
func Usage(b core.Budget, usedCents int64) BudgetUsage {
	u := BudgetUsage{
		Category: b.Category,
		Limit:    b.Limit,
		Used:     core.Money{Cents: usedCents},
		Status:   StatusOK,
	}
	if b.Limit.Cents > 0 {
		u.Percent = math.Round(float64(usedCents)/float64(b.Limit.Cents)*100*100) / 100
	}
	switch {
	case usedCents >= b.Limit.Cents:
		u.Status = StatusOver
	case usedCents*100 >= b.Limit.Cents*warnThresholdPercent:
		u.Status = StatusWarn
	}
	return u
}

func sortedTotals(byCategory map[string]int64) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, cents := range byCategory {
		totals = append(totals, CategoryTotal{Category: category, Total: core.Money{Cents: cents}})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals
}

func sortedMonths(series ...map[string]int64) []string {
	seen := make(map[string]bool)
	var months []string
	for _, s := range series {
		for key := range s {
			if !seen[key] {
				seen[key] = true
				months = append(months, key)
			}
		}
	}
	sort.Strings(months)
	return months
}
