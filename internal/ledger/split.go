package ledger

import (
	"fmt"
	"maps"
	"math"
)

// Totals maps each person to an amount in cents.
type Totals map[Person]int64

// Sum returns the sum of all amounts.
func (t Totals) Sum() int64 {
	var sum int64
	for _, amount := range t {
		sum += amount
	}
	return sum
}

// Persons returns the keys of t sorted by name.
func (t Totals) Persons() Persons {
	out := make(Persons, 0, len(t))
	for p := range t {
		out = append(out, p)
	}
	SortPersons(out)
	return out
}

// Split is an amount of money attributed to a set of persons: an Item or a
// Payment.
type Split interface {
	Total() int64
	Participants() Persons
	AmountPerPerson() (Totals, error)
}

// share is the part common to items and payments.
type share struct {
	amount  int64
	persons personSet
}

func newShare(amount int64, persons []Person) (share, error) {
	if amount < 0 {
		return share{}, fmt.Errorf("%w: amount %d is negative", ErrInvalidSplit, amount)
	}
	for _, p := range persons {
		if err := p.validate(); err != nil {
			return share{}, err
		}
	}
	return share{amount: amount, persons: newPersonSet(persons...)}, nil
}

// Total returns the undivided amount.
func (s *share) Total() int64 {
	return s.amount
}

// Participants returns the persons sharing the amount, sorted by name.
func (s *share) Participants() Persons {
	return s.persons.sorted()
}

// AddPersons adds persons to the split.
func (s *share) AddPersons(persons ...Person) error {
	for _, p := range persons {
		if err := p.validate(); err != nil {
			return err
		}
	}
	if s.persons == nil {
		s.persons = make(personSet, len(persons))
	}
	s.persons.add(persons...)
	return nil
}

// AmountPerPerson divides the amount among the split's own participants.
// See Distribute for the rounding rule.
func (s *share) AmountPerPerson() (Totals, error) {
	return Distribute(s.amount, s.persons.sorted())
}

// Item is something consumed by one or more persons.
type Item struct {
	share
	Label string
}

// NewItem returns an item worth amount cents consumed by persons.
func NewItem(label string, amount int64, persons ...Person) (*Item, error) {
	s, err := newShare(amount, persons)
	if err != nil {
		return nil, err
	}
	return &Item{share: s, Label: label}, nil
}

// Equal reports whether two items have the same label, amount and
// participants.
func (i *Item) Equal(o *Item) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.Label == o.Label && i.amount == o.amount && i.persons.equal(o.persons)
}

// Payment is money paid by one or more persons.
type Payment struct {
	share
}

// NewPayment returns a payment of amount cents made by persons.
func NewPayment(amount int64, persons ...Person) (*Payment, error) {
	s, err := newShare(amount, persons)
	if err != nil {
		return nil, err
	}
	return &Payment{share: s}, nil
}

// Distribute divides amount among persons. Everyone receives
// amount / len(persons); the remainder is handed out one cent at a time to
// the first persons in name order. The shares always sum to amount.
//
// Duplicate persons are counted once. An amount of zero among no persons
// yields an empty mapping; any other amount among no persons is an error.
func Distribute(amount int64, persons []Person) (Totals, error) {
	ordered := newPersonSet(persons...).sorted()
	result := make(Totals, len(ordered))
	if len(ordered) == 0 {
		if amount != 0 {
			return nil, fmt.Errorf("%w: participants must be a non-empty collection of persons", ErrInvalidSplit)
		}
		return result, nil
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount %d is negative", ErrInvalidSplit, amount)
	}

	n := int64(len(ordered))
	base := amount / n
	remainder := amount - base*n
	for i, p := range ordered {
		result[p] = base
		if int64(i) < remainder {
			result[p]++
		}
	}
	return result, nil
}

// SumPerPerson adds up AmountPerPerson over splits. It fails with
// ErrInvalidSplit if the amounts add up to more than an int64 holds.
func SumPerPerson[S Split](splits ...S) (Totals, error) {
	result := make(Totals)
	var total int64
	for _, s := range splits {
		var err error
		if total, err = addCents(total, s.Total()); err != nil {
			return nil, err
		}
		amounts, err := s.AmountPerPerson()
		if err != nil {
			return nil, err
		}
		for p, amount := range amounts {
			result[p] += amount
		}
	}
	return result, nil
}

// MergeTotals adds b to a key-wise, treating missing keys as zero. Neither
// input is modified. Totals whose merged sum would overflow an int64 are
// rejected with ErrInvalidSplit.
func MergeTotals(a, b Totals) (Totals, error) {
	if _, err := addCents(a.Sum(), b.Sum()); err != nil {
		return nil, err
	}
	result := make(Totals, len(a)+len(b))
	maps.Copy(result, a)
	for p, amount := range b {
		result[p] += amount
	}
	return result, nil
}

// addCents returns a+b for non-negative a and b.
func addCents(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, fmt.Errorf("%w: amounts add up to more than %d cents", ErrInvalidSplit, int64(math.MaxInt64))
	}
	return a + b, nil
}
