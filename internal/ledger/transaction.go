package ledger

import (
	"fmt"
	"slices"
	"time"
)

// Kind distinguishes outlays from refunds.
type Kind string

const (
	KindOutlay Kind = "outlay"
	KindRefund Kind = "refund"
)

// Transaction is a dated event: a set of items, a set of payments and the
// persons who took part. Build one with NewOutlay or NewRefund.
type Transaction struct {
	Date  time.Time
	label string
	kind  Kind

	items    []*Item
	payments []*Payment
	persons  personSet
}

// NewOutlay returns an empty shared purchase.
func NewOutlay(date time.Time, label string) *Transaction {
	return &Transaction{
		Date:    date,
		label:   label,
		kind:    KindOutlay,
		persons: make(personSet),
	}
}

// NewRefund returns a direct reimbursement of amount cents from debit to
// credit. It holds one item owed to credit and one payment made by debit.
func NewRefund(date time.Time, debit Person, amount int64, credit Person) (*Transaction, error) {
	item, err := NewItem("Refund from "+debit.Name, amount, credit)
	if err != nil {
		return nil, err
	}
	payment, err := NewPayment(amount, debit)
	if err != nil {
		return nil, err
	}
	t := &Transaction{
		Date:     date,
		kind:     KindRefund,
		items:    []*Item{item},
		payments: []*Payment{payment},
		persons:  newPersonSet(debit, credit),
	}
	return t, nil
}

// Kind reports whether t is an outlay or a refund.
func (t *Transaction) Kind() Kind {
	return t.kind
}

// Label returns the outlay's label, or "Refund to <credit>" for a refund.
func (t *Transaction) Label() string {
	if t.kind == KindRefund {
		return "Refund to " + t.Credit().Name
	}
	return t.label
}

// SetLabel renames an outlay. Refund labels are derived and cannot be set.
func (t *Transaction) SetLabel(label string) error {
	if t.kind == KindRefund {
		return ErrRefundReadOnly
	}
	t.label = label
	return nil
}

// Debit returns the person who paid back a refund.
func (t *Transaction) Debit() Person {
	if t.kind != KindRefund {
		return Person{}
	}
	return t.payments[0].Participants()[0]
}

// Credit returns the person who received a refund.
func (t *Transaction) Credit() Person {
	if t.kind != KindRefund {
		return Person{}
	}
	return t.items[0].Participants()[0]
}

// Amount returns a refund's amount. For an outlay it returns the larger of
// the item and payment sums, which is the outlay's total once reconciled.
func (t *Transaction) Amount() int64 {
	if t.kind == KindRefund {
		return t.items[0].Total()
	}
	var items, payments int64
	for _, i := range t.items {
		items += i.Total()
	}
	for _, p := range t.payments {
		payments += p.Total()
	}
	return max(items, payments)
}

// AddItem attaches an item and its persons. An item equal to one already
// attached is ignored.
func (t *Transaction) AddItem(item *Item) error {
	if t.kind == KindRefund {
		return ErrRefundReadOnly
	}
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidSplit)
	}
	for _, existing := range t.items {
		if existing == item || existing.Equal(item) {
			return nil
		}
	}
	t.items = append(t.items, item)
	t.persons.add(item.Participants()...)
	return nil
}

// AddPayment attaches a payment and its persons.
func (t *Transaction) AddPayment(payment *Payment) error {
	if t.kind == KindRefund {
		return ErrRefundReadOnly
	}
	if payment == nil {
		return fmt.Errorf("%w: nil payment", ErrInvalidSplit)
	}
	if slices.Contains(t.payments, payment) {
		return nil
	}
	t.payments = append(t.payments, payment)
	t.persons.add(payment.Participants()...)
	return nil
}

// RemoveItem detaches item. Its persons stay participants of t.
func (t *Transaction) RemoveItem(item *Item) (bool, error) {
	if t.kind == KindRefund {
		return false, ErrRefundReadOnly
	}
	n := len(t.items)
	t.items = slices.DeleteFunc(t.items, func(i *Item) bool { return i == item })
	return len(t.items) != n, nil
}

// RemovePayment detaches payment. Its persons stay participants of t.
func (t *Transaction) RemovePayment(payment *Payment) (bool, error) {
	if t.kind == KindRefund {
		return false, ErrRefundReadOnly
	}
	n := len(t.payments)
	t.payments = slices.DeleteFunc(t.payments, func(p *Payment) bool { return p == payment })
	return len(t.payments) != n, nil
}

// AddPersons records persons who took part without buying or paying.
func (t *Transaction) AddPersons(persons ...Person) error {
	for _, p := range persons {
		if err := p.validate(); err != nil {
			return err
		}
	}
	t.persons.add(persons...)
	return nil
}

// Items returns the attached items in insertion order.
func (t *Transaction) Items() []*Item {
	return slices.Clone(t.items)
}

// Payments returns the attached payments in insertion order.
func (t *Transaction) Payments() []*Payment {
	return slices.Clone(t.payments)
}

// Participants returns every person involved in t, sorted by name.
func (t *Transaction) Participants() Persons {
	t.syncPersons()
	return t.persons.sorted()
}

// HasParticipant reports whether p takes part in t.
func (t *Transaction) HasParticipant(p Person) bool {
	t.syncPersons()
	return t.persons.has(p)
}

// syncPersons folds in persons added to a split after it was attached.
func (t *Transaction) syncPersons() {
	for _, i := range t.items {
		t.persons.add(i.Participants()...)
	}
	for _, p := range t.payments {
		t.persons.add(p.Participants()...)
	}
}

// Totals returns the raw per-person item and payment totals, before
// reconciliation.
func (t *Transaction) Totals() (items, payments Totals, err error) {
	items, err = SumPerPerson(t.items...)
	if err != nil {
		return nil, nil, err
	}
	payments, err = SumPerPerson(t.payments...)
	if err != nil {
		return nil, nil, err
	}
	return items, payments, nil
}

// Reconciled returns the item and payment totals after the short side has
// been topped up. Both cover exactly the transaction's participants.
func (t *Transaction) Reconciled() (items, payments Totals, err error) {
	items, payments, err = t.Totals()
	if err != nil {
		return nil, nil, err
	}
	return Reconcile(t.Participants(), items, payments)
}

// Shortfall reports which side of t is short and by how much. It returns
// SideNone and zero when items and payments already balance.
func (t *Transaction) Shortfall() (Side, int64, error) {
	items, payments, err := t.Totals()
	if err != nil {
		return SideNone, 0, err
	}
	side, amount := shortfall(items.Sum(), payments.Sum())
	return side, amount, nil
}
