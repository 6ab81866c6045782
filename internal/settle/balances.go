package settle

import (
	"fmt"

	"tally/internal/core"
)

// Shares computes each member's owed cents for one expense.
//
// An equal split divides the total across the whole group; when the total
// does not divide evenly the remainder cents go one each to the earliest
// members in membership order, so the shares always sum exactly to the
// total. A custom split returns a copy of its recorded shares. The expense
// is re-validated against the group so a corrupt log surfaces here instead
// of as a silent imbalance.
func Shares(g core.Group, e core.GroupExpense) (map[string]int64, error) {
	if err := g.ValidateExpense(e); err != nil {
		return nil, fmt.Errorf("expense %s: %w", e.ID, err)
	}

	shares := make(map[string]int64, len(g.Members))
	switch e.Split.Mode {
	case core.SplitEqual:
		n := int64(len(g.Members))
		base := e.Amount.Cents / n
		remainder := e.Amount.Cents % n
		for i, m := range g.Members {
			shares[m.ID] = base
			if int64(i) < remainder {
				shares[m.ID]++
			}
		}
	case core.SplitCustom:
		for id, cents := range e.Split.Shares {
			shares[id] = cents
		}
	}
	return shares, nil
}

// Balances derives the net balance of every group member from the expense
// log and any recorded settlement payments. Positive means the member is
// owed money, negative means they owe. The result always sums to zero and
// contains an entry for every member, including those at zero.
//
// Balances are derived state: they are recomputed from the log on demand
// and never persisted as authoritative.
func Balances(g core.Group, expenses []core.GroupExpense, settlements []core.Settlement) (map[string]int64, error) {
	balances := make(map[string]int64, len(g.Members))
	for _, m := range g.Members {
		balances[m.ID] = 0
	}

	for _, e := range expenses {
		shares, err := Shares(g, e)
		if err != nil {
			return nil, err
		}
		balances[e.PayerID] += e.Amount.Cents
		for id, cents := range shares {
			balances[id] -= cents
		}
	}

	for _, s := range settlements {
		if err := g.ValidateSettlement(s); err != nil {
			return nil, fmt.Errorf("settlement %s: %w", s.ID, err)
		}
		// Paying down a debt improves the payer's balance and consumes the
		// receiver's credit.
		balances[s.FromID] += s.Amount.Cents
		balances[s.ToID] -= s.Amount.Cents
	}

	return balances, nil
}

// Plan derives balances from the logs and settles them in one step.
func Plan(g core.Group, expenses []core.GroupExpense, settlements []core.Settlement) (map[string]int64, []Transfer, error) {
	balances, err := Balances(g, expenses, settlements)
	if err != nil {
		return nil, nil, err
	}
	transfers, err := Settle(balances)
	if err != nil {
		return nil, nil, err
	}
	return balances, transfers, nil
}
