package ledger

import "slices"

// Ledger is a named collection of transactions. Totals, balances and debts
// are recomputed from the transactions on every call.
type Ledger struct {
	Name         string
	transactions []*Transaction
}

// New returns an empty ledger.
func New(name string) *Ledger {
	return &Ledger{Name: name}
}

// Add attaches t to the ledger and returns it. Adding the same transaction
// twice has no effect.
func (l *Ledger) Add(t *Transaction) *Transaction {
	if t != nil && !slices.Contains(l.transactions, t) {
		l.transactions = append(l.transactions, t)
	}
	return t
}

// Remove detaches t and reports whether it was attached.
func (l *Ledger) Remove(t *Transaction) bool {
	n := len(l.transactions)
	l.transactions = slices.DeleteFunc(l.transactions, func(x *Transaction) bool { return x == t })
	return len(l.transactions) != n
}

// Transactions returns the transactions in the order they were added.
func (l *Ledger) Transactions() []*Transaction {
	return slices.Clone(l.transactions)
}

// Persons returns everyone taking part in any transaction, sorted by name.
func (l *Ledger) Persons() Persons {
	everyone := make(personSet)
	for _, t := range l.transactions {
		everyone.add(t.Participants()...)
	}
	return everyone.sorted()
}

// ComputeTotals returns, per person, the reconciled amount consumed and the
// reconciled amount paid across all transactions.
func (l *Ledger) ComputeTotals() (items, payments Totals, err error) {
	items, payments = make(Totals), make(Totals)
	for _, t := range l.transactions {
		ti, tp, err := t.Reconciled()
		if err != nil {
			return nil, nil, err
		}
		if items, err = MergeTotals(items, ti); err != nil {
			return nil, nil, err
		}
		if payments, err = MergeTotals(payments, tp); err != nil {
			return nil, nil, err
		}
	}
	return items, payments, nil
}

// ComputeBalances returns consumed minus paid for every person. A positive
// balance owes money, a negative one is owed money. The balances sum to zero.
func (l *Ledger) ComputeBalances() (Totals, error) {
	items, payments, err := l.ComputeTotals()
	if err != nil {
		return nil, err
	}
	return Balances(items, payments), nil
}

// Balances subtracts payments from items for every person in either map.
func Balances(items, payments Totals) Totals {
	result := make(Totals, len(items))
	for p, amount := range items {
		result[p] += amount
	}
	for p, amount := range payments {
		result[p] -= amount
	}
	return result
}

// ComputeDebts reduces the ledger's balances to settlement payments. See
// Settle.
func (l *Ledger) ComputeDebts() ([]Debt, error) {
	balances, err := l.ComputeBalances()
	if err != nil {
		return nil, err
	}
	return Settle(balances)
}
