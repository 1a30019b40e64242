package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/sharedpot/internal/models"
	"github.com/mmynk/sharedpot/internal/storage"
)

const (
	splitKindItem    = "item"
	splitKindPayment = "payment"
)

// CreateTransaction persists a transaction with its participants, items and
// payments in one database transaction.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = s.exec(ctx, dbTx,
		"INSERT INTO transactions (id, ledger_id, kind, label, occurred_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.LedgerID, t.Kind, t.Label, t.Date, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, name := range dedupe(t.Participants) {
		_, err = s.exec(ctx, dbTx,
			"INSERT INTO transaction_participants (transaction_id, name) VALUES (?, ?)",
			t.ID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	seq := 0
	for i := range t.Items {
		item := &t.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if err := s.insertSplit(ctx, dbTx, t.ID, splitKindItem, item.ID, item.Label, item.Amount, seq, item.Participants); err != nil {
			return err
		}
		seq++
	}
	for i := range t.Payments {
		payment := &t.Payments[i]
		if payment.ID == "" {
			payment.ID = uuid.New().String()
		}
		if err := s.insertSplit(ctx, dbTx, t.ID, splitKindPayment, payment.ID, "", payment.Amount, seq, payment.Participants); err != nil {
			return err
		}
		seq++
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) insertSplit(ctx context.Context, dbTx *sql.Tx, txID, kind, id, label string, amount int64, seq int, participants []string) error {
	_, err := s.exec(ctx, dbTx,
		"INSERT INTO splits (id, transaction_id, kind, label, amount, seq) VALUES (?, ?, ?, ?, ?, ?)",
		id, txID, kind, label, amount, seq,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", kind, err)
	}
	for _, name := range dedupe(participants) {
		_, err = s.exec(ctx, dbTx,
			"INSERT INTO split_participants (split_id, name) VALUES (?, ?)",
			id, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s participant: %w", kind, err)
		}
	}
	return nil
}

// GetTransaction retrieves a transaction by ID, including items, payments
// and participants.
func (s *Store) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := s.queryRow(ctx, s.db,
		"SELECT id, ledger_id, kind, label, occurred_at, created_at FROM transactions WHERE id = ?",
		txID,
	).Scan(&t.ID, &t.LedgerID, &t.Kind, &t.Label, &t.Date, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", txID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if err := s.loadDetails(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions retrieves all transactions of a ledger in date order.
func (s *Store) ListTransactions(ctx context.Context, ledgerID string) ([]*models.Transaction, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT id, ledger_id, kind, label, occurred_at, created_at
		 FROM transactions WHERE ledger_id = ? ORDER BY occurred_at, created_at, id`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var txs []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.LedgerID, &t.Kind, &t.Label, &t.Date, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	// Details are loaded after the cursor is closed: SQLite runs on a
	// single connection.
	for _, t := range txs {
		if err := s.loadDetails(ctx, t); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// DeleteTransaction removes a transaction by ID.
func (s *Store) DeleteTransaction(ctx context.Context, txID string) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM transactions WHERE id = ?", txID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(res, "transaction", txID)
}

func (s *Store) loadDetails(ctx context.Context, t *models.Transaction) error {
	rows, err := s.query(ctx, s.db,
		"SELECT name FROM transaction_participants WHERE transaction_id = ? ORDER BY name",
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	if t.Participants, err = scanStrings(rows); err != nil {
		return fmt.Errorf("failed to scan participants: %w", err)
	}

	type splitRow struct {
		id, kind, label string
		amount          int64
	}
	rows, err = s.query(ctx, s.db,
		"SELECT id, kind, label, amount FROM splits WHERE transaction_id = ? ORDER BY seq",
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	var splits []splitRow
	for rows.Next() {
		var r splitRow
		if err := rows.Scan(&r.id, &r.kind, &r.label, &r.amount); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	t.Items, t.Payments = nil, nil
	for _, r := range splits {
		names, err := s.query(ctx, s.db,
			"SELECT name FROM split_participants WHERE split_id = ? ORDER BY name",
			r.id,
		)
		if err != nil {
			return fmt.Errorf("failed to get split participants: %w", err)
		}
		participants, err := scanStrings(names)
		if err != nil {
			return fmt.Errorf("failed to scan split participants: %w", err)
		}

		switch r.kind {
		case splitKindItem:
			t.Items = append(t.Items, models.Item{ID: r.id, Label: r.label, Amount: r.amount, Participants: participants})
		case splitKindPayment:
			t.Payments = append(t.Payments, models.Payment{ID: r.id, Amount: r.amount, Participants: participants})
		default:
			return fmt.Errorf("unknown split kind %q in transaction %s", r.kind, t.ID)
		}
	}
	return nil
}

// dedupe drops repeated names, keeping first occurrences.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
