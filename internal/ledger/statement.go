package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Line is one person's share of a single item or payment.
type Line struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Statement lists what one person consumed, or paid, in one transaction.
// Total is the transaction's reconciled total, not the person's share.
type Statement struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Total int64     `json:"total"`
	Lines []Line    `json:"lines"`
}

// Sum returns the person's share over all lines.
func (s Statement) Sum() int64 {
	var sum int64
	for _, l := range s.Lines {
		sum += l.Amount
	}
	return sum
}

// ItemsPerPerson returns, for each person, a statement of what they
// consumed in each transaction, ordered by date then label.
func (l *Ledger) ItemsPerPerson() (map[Person][]Statement, error) {
	return l.statements(SideItems)
}

// PaymentsPerPerson returns, for each person, a statement of what they paid
// in each transaction, ordered by date then label.
func (l *Ledger) PaymentsPerPerson() (map[Person][]Statement, error) {
	return l.statements(SidePayments)
}

func (l *Ledger) statements(side Side) (map[Person][]Statement, error) {
	result := make(map[Person][]Statement)
	for _, t := range l.transactions {
		perPerson, err := transactionStatements(t, side)
		if err != nil {
			return nil, err
		}
		for p, s := range perPerson {
			result[p] = append(result[p], s)
		}
	}
	for p := range result {
		slices.SortStableFunc(result[p], func(a, b Statement) int {
			if c := a.Date.Compare(b.Date); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	}
	return result, nil
}

func transactionStatements(t *Transaction, side Side) (map[Person]Statement, error) {
	items, payments, err := t.Reconciled()
	if err != nil {
		return nil, err
	}
	reconciled := items
	var splits []lineSource
	if side == SidePayments {
		reconciled = payments
		for _, p := range t.payments {
			splits = append(splits, lineSource{label: "payment", split: p})
		}
	} else {
		for _, i := range t.items {
			splits = append(splits, lineSource{label: i.Label, split: i})
		}
	}

	participants := t.Participants()
	shareLabel := fmt.Sprintf("(1/%d share)", len(participants))
	result := make(map[Person]Statement)
	for _, person := range participants {
		var lines []Line
		var logged int64
		for _, src := range splits {
			amounts, err := src.split.AmountPerPerson()
			if err != nil {
				return nil, err
			}
			amount, ok := amounts[person]
			if !ok {
				continue
			}
			lines = append(lines, Line{Label: src.label, Amount: amount})
			logged += amount
		}
		if extra := reconciled[person] - logged; extra > 0 {
			lines = append(lines, Line{Label: shareLabel, Amount: extra})
		}
		if len(lines) == 0 {
			continue
		}
		result[person] = Statement{
			Date:  t.Date,
			Label: t.Label(),
			Total: reconciled.Sum(),
			Lines: lines,
		}
	}
	return result, nil
}

type lineSource struct {
	label string
	split Split
}
