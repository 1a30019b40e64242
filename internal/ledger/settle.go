package ledger

import "fmt"

// Debt is a settlement instruction: Debtor pays Amount cents to Creditor.
type Debt struct {
	Debtor   Person `json:"debtor"`
	Amount   int64  `json:"amount"`
	Creditor Person `json:"creditor"`
}

func (d Debt) String() string {
	return fmt.Sprintf("%s pays %d to %s", d.Debtor, d.Amount, d.Creditor)
}

// Settle turns balances into debts that, applied in full, bring every
// balance to zero.
//
// Each round the person owed the most (most negative balance) is paid by
// the person owing the most (most positive balance), for the smaller of the
// two magnitudes, so at least one of them drops out. Ties go to the person
// whose name sorts first. Debts are returned in the order produced.
//
// balances is not modified. Balances that do not sum to zero yield
// ErrLedgerCorrupted.
func Settle(balances Totals) ([]Debt, error) {
	remaining := make(Totals, len(balances))
	for p, amount := range balances {
		if amount != 0 {
			remaining[p] = amount
		}
	}

	debts := []Debt{}
	for len(remaining) > 1 {
		creditor, debtor := extremes(remaining)
		owed, owes := -remaining[creditor], remaining[debtor]
		if owed <= 0 || owes <= 0 {
			return nil, fmt.Errorf("%w: %d persons left with balances of one sign", ErrLedgerCorrupted, len(remaining))
		}

		amount := min(owed, owes)
		debts = append(debts, Debt{Debtor: debtor, Amount: amount, Creditor: creditor})
		remaining[debtor] -= amount
		remaining[creditor] += amount
		for _, p := range []Person{debtor, creditor} {
			if remaining[p] == 0 {
				delete(remaining, p)
			}
		}
	}

	for p, amount := range remaining {
		return nil, fmt.Errorf("%w: %s left with balance %d", ErrLedgerCorrupted, p, amount)
	}
	return debts, nil
}

// extremes returns the persons with the lowest and highest balance, taking
// the first name in sort order on ties.
func extremes(balances Totals) (lowest, highest Person) {
	ordered := balances.Persons()
	lowest, highest = ordered[0], ordered[0]
	for _, p := range ordered[1:] {
		if balances[p] < balances[lowest] {
			lowest = p
		}
		if balances[p] > balances[highest] {
			highest = p
		}
	}
	return lowest, highest
}
