// Package settle derives net balances from a group's expense log and reduces
// them to a short list of direct transfers that zero every balance.
//
// All arithmetic is integer cents. The package is pure: no I/O, no shared
// state, safe for concurrent use on independent inputs. Callers hand it a
// consistent snapshot; serializing concurrent writes to one group is the
// storage layer's job.
package settle

import (
	"errors"
	"sort"

	"tally/internal/core"
)

// ErrImbalancedLedger is returned when the input balances do not sum to
// exactly zero minor units. It indicates a data-integrity bug upstream
// (every expense redistributes money without creating or destroying it),
// so it is surfaced to the caller and never retried.
var ErrImbalancedLedger = errors.New("ledger balances do not sum to zero")

// Transfer is a suggested direct payment from a debtor to a creditor.
type Transfer struct {
	From   string
	To     string
	Amount core.Money
}

type party struct {
	id    string
	cents int64 // always positive: credit for creditors, debt for debtors
}

// Settle reduces a zero-sum balance snapshot to at most N-1 transfers, where
// N is the number of members with a nonzero balance.
//
// The algorithm repeatedly pairs the creditor with the largest outstanding
// credit against the debtor with the largest outstanding debt and moves
// min(credit, debt) between them. Ties break ascending by member identifier,
// making the output deterministic. Applying the returned transfers in order
// zeroes every balance exactly; a minimum-cardinality solution is not
// attempted.
func Settle(balances map[string]int64) ([]Transfer, error) {
	var sum int64
	var creditors, debtors []party
	for id, cents := range balances {
		sum += cents
		switch {
		case cents > 0:
			creditors = append(creditors, party{id: id, cents: cents})
		case cents < 0:
			debtors = append(debtors, party{id: id, cents: -cents})
		}
	}
	if sum != 0 {
		return nil, ErrImbalancedLedger
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		c := largest(creditors)
		d := largest(debtors)

		amount := creditors[c].cents
		if debtors[d].cents < amount {
			amount = debtors[d].cents
		}
		transfers = append(transfers, Transfer{
			From:   debtors[d].id,
			To:     creditors[c].id,
			Amount: core.Money{Cents: amount},
		})

		creditors[c].cents -= amount
		debtors[d].cents -= amount
		if creditors[c].cents == 0 {
			creditors = remove(creditors, c)
		}
		if debtors[d].cents == 0 {
			debtors = remove(debtors, d)
		}
	}
	return transfers, nil
}

// largest returns the index of the party with the biggest outstanding
// amount, ties broken by the smaller identifier.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].cents > parties[best].cents ||
			(parties[i].cents == parties[best].cents && parties[i].id < parties[best].id) {
			best = i
		}
	}
	return best
}

func remove(parties []party, i int) []party {
	return append(parties[:i], parties[i+1:]...)
}

// SortTransfers orders transfers for stable display: by payer, then payee.
// Settle's output order is already deterministic; this is for callers that
// merge transfer lists from several sources.
func SortTransfers(ts []Transfer) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].From != ts[j].From {
			return ts[i].From < ts[j].From
		}
		return ts[i].To < ts[j].To
	})
}
