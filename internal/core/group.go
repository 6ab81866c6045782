package core

import (
	"errors"
	"strings"
)

const (
	SplitEqual  SplitMode = "equal"
	SplitCustom SplitMode = "custom"
)

type (
	SplitMode string

	// Member is an individual participant in a shared-expense group.
	Member struct {
		ID   string
		Name string
	}

	// Group is a named collection of members sharing expenses. Members keeps
	// insertion order; that order is the membership order used when an equal
	// split leaves remainder cents to place.
	Group struct {
		ID      string
		Name    string
		Members []Member
	}

	// Split is a tagged variant: either an equal split across the whole
	// group, or a custom mapping from member ID to owed cents. Shares is nil
	// unless Mode is SplitCustom.
	Split struct {
		Mode   SplitMode
		Shares map[string]int64
	}

	// GroupExpense is a recorded payment by one member on behalf of the
	// group. Expenses are append-only: once recorded they are never edited,
	// so balances stay derivable from the expense log alone.
	GroupExpense struct {
		ID          string
		GroupID     string
		Description string
		PayerID     string
		Amount      Money
		Date        Date
		Split       Split
	}

	// Settlement is a recorded payment between two members that reduces
	// their outstanding balances. Distinct from a computed transfer: a
	// settlement only exists once a user explicitly records it.
	Settlement struct {
		ID      string
		GroupID string
		FromID  string
		ToID    string
		Amount  Money
		Date    Date
		Note    string
	}
)

var ErrEmptyDescription = errors.New("empty description")

// EqualSplit returns the equal split tag.
func EqualSplit() Split {
	return Split{Mode: SplitEqual}
}

// CustomSplit returns a custom split over the given shares.
func CustomSplit(shares map[string]int64) Split {
	return Split{Mode: SplitCustom, Shares: shares}
}

func (s SplitMode) Valid() bool {
	return s == SplitEqual || s == SplitCustom
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if seen[m.ID] {
			return ErrDuplicateMember
		}
		seen[m.ID] = true
	}
	return nil
}

// MemberIDs returns the member identifiers in membership order.
func (g Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether id belongs to the group.
func (g Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// ValidateExpense checks an expense against the group it belongs to. A
// custom split whose shares do not sum exactly to the amount is rejected
// here, before persistence; the settlement engine assumes a balanced ledger.
func (g Group) ValidateExpense(e GroupExpense) error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !g.HasMember(e.PayerID) {
		return ErrUnknownMember
	}
	switch e.Split.Mode {
	case SplitEqual:
		if len(g.Members) == 0 {
			return ErrUnknownMember
		}
		return nil
	case SplitCustom:
		if len(e.Split.Shares) == 0 {
			return ErrInvalidSplit
		}
		var sum int64
		for id, cents := range e.Split.Shares {
			if !g.HasMember(id) {
				return ErrUnknownMember
			}
			if cents <= 0 {
				return ErrInvalidSplit
			}
			sum += cents
		}
		if sum != e.Amount.Cents {
			return ErrInvalidSplit
		}
		return nil
	default:
		return errors.New("invalid split mode")
	}
}

// ValidateSettlement checks a recorded settlement payment against the group.
func (g Group) ValidateSettlement(s Settlement) error {
	if !g.HasMember(s.FromID) || !g.HasMember(s.ToID) {
		return ErrUnknownMember
	}
	if s.FromID == s.ToID {
		return errors.New("settlement must be between two distinct members")
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	return s.Date.Validate()
}
