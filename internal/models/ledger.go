package models

// Ledger is a named collection of transactions owned by one user.
type Ledger struct {
	// ID is the unique identifier for the ledger (UUID format).
	ID string

	// Name is the display name (e.g., "Ski trip", "Flat 3B").
	Name string

	// OwnerID is the user who created the ledger.
	OwnerID string

	// CreatedAt is the Unix timestamp when the ledger was created.
	CreatedAt int64
}
