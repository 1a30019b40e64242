// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/sharedpot/internal/models"
)

// ErrNotFound is returned, wrapped, when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore

	// CreateLedger persists a new ledger. ID and CreatedAt are filled in
	// when empty.
	CreateLedger(ctx context.Context, ledger *models.Ledger) error

	// GetLedger retrieves a ledger by its ID.
	GetLedger(ctx context.Context, ledgerID string) (*models.Ledger, error)

	// ListLedgers returns the ledgers owned by a user, newest first.
	ListLedgers(ctx context.Context, ownerID string) ([]*models.Ledger, error)

	// DeleteLedger removes a ledger and all its transactions.
	DeleteLedger(ctx context.Context, ledgerID string) error

	// CreateTransaction persists a transaction with its items, payments and
	// participants. IDs and CreatedAt are filled in when empty.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves a complete transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// ListTransactions returns every transaction of a ledger, complete, in
	// date order.
	ListTransactions(ctx context.Context, ledgerID string) ([]*models.Transaction, error)

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, txID string) error

	// Close releases any resources held by the store.
	Close() error
}

// UserStore is the subset of Store used for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
