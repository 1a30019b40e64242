package models

// Transaction kinds, matching ledger.Kind.
const (
	KindOutlay = "outlay"
	KindRefund = "refund"
)

// Transaction is a stored outlay or refund.
//
// For a refund, Items holds exactly one entry (owed to the credited person)
// and Payments exactly one (paid by the debited person).
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// LedgerID is the ledger this transaction belongs to.
	LedgerID string

	// Kind is KindOutlay or KindRefund.
	Kind string

	// Label describes an outlay (e.g., "Restaurant"). Refunds carry their
	// derived "Refund to <credit>" label.
	Label string

	// Date is when the outlay or refund happened, as Unix seconds.
	Date int64

	// Participants lists everyone taking part, including people who
	// neither bought nor paid anything.
	Participants []string

	Items    []Item
	Payments []Payment

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}

// Item is something consumed, split evenly among its participants.
type Item struct {
	ID           string
	Label        string
	Amount       int64
	Participants []string
}

// Payment is money paid, split evenly among its participants.
type Payment struct {
	ID           string
	Amount       int64
	Participants []string
}
