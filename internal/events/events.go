// Package events publishes ledger changes for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types.
const (
	TransactionRecorded = "transaction.recorded"
	TransactionDeleted  = "transaction.deleted"
	DebtSettled         = "debt.settled"
)

// Event describes one change to a ledger. Debtor and Creditor are set for
// refunds and settlements.
type Event struct {
	Type          string          `json:"type"`
	LedgerID      string          `json:"ledger_id"`
	TransactionID string          `json:"transaction_id"`
	Kind          string          `json:"kind,omitempty"`
	Label         string          `json:"label,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Debtor        string          `json:"debtor,omitempty"`
	Creditor      string          `json:"creditor,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
