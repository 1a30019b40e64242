package ledger

import (
	"fmt"
	"maps"
)

// Side names the half of a transaction that reconciliation tops up.
type Side string

const (
	SideNone     Side = ""
	SideItems    Side = "items"
	SidePayments Side = "payments"
)

func shortfall(itemsTotal, paymentsTotal int64) (Side, int64) {
	switch {
	case itemsTotal < paymentsTotal:
		return SideItems, paymentsTotal - itemsTotal
	case paymentsTotal < itemsTotal:
		return SidePayments, itemsTotal - paymentsTotal
	default:
		return SideNone, 0
	}
}

// Reconcile balances one transaction's totals. The side with the smaller sum
// is topped up by the difference, divided among all participants with
// Distribute. A missing item total reads as an unlogged shared purchase; a
// missing payment total as a shared reimbursement still due.
//
// The returned maps are new; items and payments are not modified. Both have
// an entry, possibly zero, for every participant and their sums are equal.
// Reconciling balanced totals returns them unchanged.
func Reconcile(participants []Person, items, payments Totals) (Totals, Totals, error) {
	everyone := newPersonSet(participants...)
	for _, totals := range []Totals{items, payments} {
		for p := range totals {
			if !everyone.has(p) {
				return nil, nil, fmt.Errorf("%w: %s has money in the transaction but is not a participant", ErrInvalidParticipants, p)
			}
		}
	}

	adjustedItems := make(Totals, len(everyone))
	adjustedPayments := make(Totals, len(everyone))
	for p := range everyone {
		adjustedItems[p] = 0
		adjustedPayments[p] = 0
	}
	maps.Copy(adjustedItems, items)
	maps.Copy(adjustedPayments, payments)

	side, missing := shortfall(items.Sum(), payments.Sum())
	if side == SideNone {
		return adjustedItems, adjustedPayments, nil
	}

	topUp, err := Distribute(missing, participants)
	if err != nil {
		return nil, nil, err
	}
	target := adjustedItems
	if side == SidePayments {
		target = adjustedPayments
	}
	for p, amount := range topUp {
		target[p] += amount
	}
	return adjustedItems, adjustedPayments, nil
}
