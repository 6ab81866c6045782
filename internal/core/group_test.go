package core

import (
	"errors"
	"testing"
)

func tripGroup() Group {
	return Group{
		ID:   "g1",
		Name: "Trip",
		Members: []Member{
			{ID: "m1", Name: "Ada"},
			{ID: "m2", Name: "Ben"},
			{ID: "m3", Name: "Cleo"},
		},
	}
}

func validExpense() GroupExpense {
	return GroupExpense{
		ID:          "e1",
		GroupID:     "g1",
		Description: "dinner",
		PayerID:     "m1",
		Amount:      Money{Cents: 3000},
		Date:        NewDate(2025, 6, 1),
		Split:       EqualSplit(),
	}
}

func TestGroupValidate(t *testing.T) {
	g := tripGroup()
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	g.Members = append(g.Members, Member{ID: "m1", Name: "Ada again"})
	if err := g.Validate(); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("Validate() = %v, want %v", err, ErrDuplicateMember)
	}

	if err := (Group{Name: " "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Validate() = %v, want %v", err, ErrEmptyName)
	}
}

func TestValidateExpense(t *testing.T) {
	g := tripGroup()

	tests := []struct {
		name    string
		mutate  func(*GroupExpense)
		wantErr error
	}{
		{"equal split ok", func(e *GroupExpense) {}, nil},
		{
			"custom split ok",
			func(e *GroupExpense) {
				e.Split = CustomSplit(map[string]int64{"m1": 1000, "m2": 2000})
			},
			nil,
		},
		{"empty description", func(e *GroupExpense) { e.Description = "" }, ErrEmptyDescription},
		{"zero amount", func(e *GroupExpense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"zero date", func(e *GroupExpense) { e.Date = Date{} }, ErrInvalidDate},
		{"payer not a member", func(e *GroupExpense) { e.PayerID = "zz" }, ErrUnknownMember},
		{
			"custom shares must sum to total",
			func(e *GroupExpense) {
				e.Split = CustomSplit(map[string]int64{"m1": 1000, "m2": 1999})
			},
			ErrInvalidSplit,
		},
		{
			"custom shares reject zero share",
			func(e *GroupExpense) {
				e.Split = CustomSplit(map[string]int64{"m1": 3000, "m2": 0})
			},
			ErrInvalidSplit,
		},
		{
			"custom shares reject non-member",
			func(e *GroupExpense) {
				e.Split = CustomSplit(map[string]int64{"m1": 1000, "zz": 2000})
			},
			ErrUnknownMember,
		},
		{
			"empty custom shares",
			func(e *GroupExpense) { e.Split = CustomSplit(nil) },
			ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := g.ValidateExpense(e)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateExpense() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExpense() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("bad split mode", func(t *testing.T) {
		e := validExpense()
		e.Split = Split{Mode: "ratio"}
		if g.ValidateExpense(e) == nil {
			t.Error("invalid split mode accepted")
		}
	})
}

func TestValidateSettlement(t *testing.T) {
	g := tripGroup()
	s := Settlement{
		ID: "s1", GroupID: "g1", FromID: "m2", ToID: "m1",
		Amount: Money{Cents: 500}, Date: NewDate(2025, 6, 2),
	}
	if err := g.ValidateSettlement(s); err != nil {
		t.Errorf("ValidateSettlement() = %v, want nil", err)
	}

	bad := s
	bad.ToID = "m2"
	if g.ValidateSettlement(bad) == nil {
		t.Error("self-settlement accepted")
	}

	bad = s
	bad.FromID = "zz"
	if err := g.ValidateSettlement(bad); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("ValidateSettlement() = %v, want %v", err, ErrUnknownMember)
	}

	bad = s
	bad.Amount = Money{}
	if err := g.ValidateSettlement(bad); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ValidateSettlement() = %v, want %v", err, ErrInvalidAmount)
	}
}

func TestGroupHelpers(t *testing.T) {
	g := tripGroup()
	ids := g.MemberIDs()
	want := []string{"m1", "m2", "m3"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("MemberIDs()[%d] = %s, want %s", i, ids[i], id)
		}
	}
	if !g.HasMember("m2") || g.HasMember("zz") {
		t.Error("HasMember misbehaves")
	}
}
