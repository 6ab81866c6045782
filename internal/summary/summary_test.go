package summary

import (
	"reflect"
	"testing"

	"tally/internal/core"
)

func tx(kind core.TransactionKind, cents int64, category string, year, month, day int) core.Transaction {
	return core.Transaction{
		Kind:     kind,
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     core.NewDate(year, month, day),
	}
}

func TestBuild(t *testing.T) {
	transactions := []core.Transaction{
		tx(core.Expense, 1500, "food", 2025, 5, 3),
		tx(core.Expense, 2500, "food", 2025, 5, 20),
		tx(core.Expense, 8000, "rent", 2025, 5, 1),
		tx(core.Income, 30000, "salary", 2025, 5, 1),
		tx(core.Expense, 1200, "food", 2025, 6, 2),
		tx(core.Income, 30000, "salary", 2025, 6, 1),
	}

	t.Run("month scoped category totals", func(t *testing.T) {
		report := Build(transactions, nil, "2025-05")

		wantTotals := []CategoryTotal{
			{Category: "food", Total: core.Money{Cents: 4000}},
			{Category: "rent", Total: core.Money{Cents: 8000}},
		}
		if !reflect.DeepEqual(report.CategoryTotals, wantTotals) {
			t.Errorf("CategoryTotals = %v, want %v", report.CategoryTotals, wantTotals)
		}

		wantMonths := []string{"2025-05", "2025-06"}
		if !reflect.DeepEqual(report.Months, wantMonths) {
			t.Errorf("Months = %v, want %v", report.Months, wantMonths)
		}
		wantExpense := []core.Money{{Cents: 12000}, {Cents: 1200}}
		if !reflect.DeepEqual(report.ExpenseSeries, wantExpense) {
			t.Errorf("ExpenseSeries = %v, want %v", report.ExpenseSeries, wantExpense)
		}
		wantIncome := []core.Money{{Cents: 30000}, {Cents: 30000}}
		if !reflect.DeepEqual(report.IncomeSeries, wantIncome) {
			t.Errorf("IncomeSeries = %v, want %v", report.IncomeSeries, wantIncome)
		}
		if !reflect.DeepEqual(report.TrendSeries, wantExpense) {
			t.Errorf("TrendSeries = %v, want %v", report.TrendSeries, wantExpense)
		}
	})

	t.Run("no month filter sums everything", func(t *testing.T) {
		report := Build(transactions, nil, "")
		for _, ct := range report.CategoryTotals {
			if ct.Category == "food" && ct.Total.Cents != 5200 {
				t.Errorf("food total = %d, want 5200", ct.Total.Cents)
			}
		}
	})

	t.Run("budget rows use the month's category spending", func(t *testing.T) {
		budgets := []core.Budget{
			{Category: "food", Limit: core.Money{Cents: 5000}, Month: "2025-05"},
			{Category: "rent", Limit: core.Money{Cents: 20000}, Month: "2025-05"},
		}
		report := Build(transactions, budgets, "2025-05")
		if len(report.Budgets) != 2 {
			t.Fatalf("got %d budget rows, want 2", len(report.Budgets))
		}
		food := report.Budgets[0]
		if food.Used.Cents != 4000 || food.Percent != 80.0 || food.Status != StatusWarn {
			t.Errorf("food usage = %+v, want used=4000 percent=80 status=warn", food)
		}
		rent := report.Budgets[1]
		if rent.Used.Cents != 8000 || rent.Status != StatusOK {
			t.Errorf("rent usage = %+v, want used=8000 status=ok", rent)
		}
	})

	t.Run("empty ledger", func(t *testing.T) {
		report := Build(nil, nil, "2025-05")
		if len(report.CategoryTotals) != 0 || len(report.Months) != 0 {
			t.Errorf("empty ledger produced %+v", report)
		}
	})
}

func TestUsageStatus(t *testing.T) {
	budget := core.Budget{Category: "food", Limit: core.Money{Cents: 10000}, Month: "2025-05"}

	tests := []struct {
		name        string
		used        int64
		wantStatus  BudgetStatus
		wantPercent float64
	}{
		{"well under", 4000, StatusOK, 40.0},
		{"just under warn cutoff", 7999, StatusOK, 79.99},
		{"at warn cutoff", 8000, StatusWarn, 80.0},
		{"close to limit", 9999, StatusWarn, 99.99},
		{"at limit", 10000, StatusOver, 100.0},
		{"over limit", 15000, StatusOver, 150.0},
		{"nothing spent", 0, StatusOK, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := Usage(budget, tt.used)
			if u.Status != tt.wantStatus {
				t.Errorf("Usage(%d).Status = %s, want %s", tt.used, u.Status, tt.wantStatus)
			}
			if u.Percent != tt.wantPercent {
				t.Errorf("Usage(%d).Percent = %v, want %v", tt.used, u.Percent, tt.wantPercent)
			}
		})
	}
}
