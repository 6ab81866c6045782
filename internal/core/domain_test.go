package core

import (
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Kind:     Expense,
		Amount:   Money{Cents: 1500},
		Category: "food",
		Note:     "groceries",
		Date:     NewDate(2025, 6, 15),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(tr *Transaction) {}, nil},
		{"income is valid", func(tr *Transaction) { tr.Kind = Income }, nil},
		{"bad kind", func(tr *Transaction) { tr.Kind = "transfer" }, ErrInvalidKind},
		{"zero amount", func(tr *Transaction) { tr.Amount = Money{} }, ErrInvalidAmount},
		{"empty category", func(tr *Transaction) { tr.Category = "  " }, ErrEmptyCategory},
		{"zero date", func(tr *Transaction) { tr.Date = Date{} }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTransaction()
			tt.mutate(&tr)
			err := tr.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("note too long", func(t *testing.T) {
		tr := validTransaction()
		tr.Note = strings.Repeat("x", 256)
		if tr.Validate() == nil {
			t.Error("overlong note accepted")
		}
	})
}

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		budget  Budget
		wantErr error
	}{
		{"valid", Budget{Category: "food", Limit: Money{Cents: 50000}, Month: "2025-06"}, nil},
		{"empty category", Budget{Category: "", Limit: Money{Cents: 1}, Month: "2025-06"}, ErrEmptyCategory},
		{"zero limit", Budget{Category: "food", Month: "2025-06"}, ErrInvalidAmount},
		{"month without dash", Budget{Category: "food", Limit: Money{Cents: 1}, Month: "202506"}, ErrInvalidMonth},
		{"month out of range", Budget{Category: "food", Limit: Money{Cents: 1}, Month: "2025-13"}, ErrInvalidMonth},
		{"short year", Budget{Category: "food", Limit: Money{Cents: 1}, Month: "25-06"}, ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.MonthKey() != "2025-06" {
		t.Errorf("MonthKey() = %q, want 2025-06", d.MonthKey())
	}
	if d.String() != "2025-06-15" {
		t.Errorf("String() = %q, want 2025-06-15", d.String())
	}

	if _, err := ParseDate("15/06/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(bad) error = %v, want %v", err, ErrInvalidDate)
	}
}

func TestValidMonth(t *testing.T) {
	valid := []string{"2025-01", "2025-12", "1999-06"}
	invalid := []string{"", "2025", "2025-00", "2025-13", "2025-1", "abcd-ef"}
	for _, m := range valid {
		if !ValidMonth(m) {
			t.Errorf("ValidMonth(%q) = false, want true", m)
		}
	}
	for _, m := range invalid {
		if ValidMonth(m) {
			t.Errorf("ValidMonth(%q) = true, want false", m)
		}
	}
}
