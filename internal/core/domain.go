package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

type (
	TransactionKind string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense entry in a user's personal
	// ledger.
	Transaction struct {
		ID       int64
		Kind     TransactionKind
		Amount   Money
		Category string
		Note     string
		Date     Date
	}

	// Budget is a per-category spending limit for one month.
	Budget struct {
		ID       int64
		Category string
		Limit    Money
		Month    string // YYYY-MM
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidMonth    = errors.New("invalid month, want YYYY-MM")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDuplicateMember = errors.New("duplicate member")
	ErrUnknownMember   = errors.New("unknown member")
	ErrInvalidSplit    = errors.New("custom split shares must sum to the expense total")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket the date falls into, the key used by
// budgets and the monthly report series.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// ValidMonth reports whether s is a well-formed YYYY-MM month key.
func ValidMonth(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return false
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil || y < 1 {
		return false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return false
	}
	return true
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Note) > 255 {
		return errors.New("note too long (max 255 characters)")
	}
	return t.Date.Validate()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Limit.Validate(); err != nil {
		return err
	}
	if !ValidMonth(b.Month) {
		return ErrInvalidMonth
	}
	return nil
}
