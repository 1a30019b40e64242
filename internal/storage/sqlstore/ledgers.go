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

// CreateLedger persists a new ledger to the database.
func (s *Store) CreateLedger(ctx context.Context, ledger *models.Ledger) error {
	if ledger.ID == "" {
		ledger.ID = uuid.New().String()
	}
	if ledger.CreatedAt == 0 {
		ledger.CreatedAt = time.Now().Unix()
	}

	_, err := s.exec(ctx, s.db,
		"INSERT INTO ledgers (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		ledger.ID, ledger.Name, ledger.OwnerID, ledger.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}
	return nil
}

// GetLedger retrieves a ledger by ID.
func (s *Store) GetLedger(ctx context.Context, ledgerID string) (*models.Ledger, error) {
	ledger := &models.Ledger{}
	err := s.queryRow(ctx, s.db,
		"SELECT id, name, owner_id, created_at FROM ledgers WHERE id = ?",
		ledgerID,
	).Scan(&ledger.ID, &ledger.Name, &ledger.OwnerID, &ledger.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger %s: %w", ledgerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

// ListLedgers retrieves the ledgers owned by a user.
func (s *Store) ListLedgers(ctx context.Context, ownerID string) ([]*models.Ledger, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT id, name, owner_id, created_at FROM ledgers WHERE owner_id = ? ORDER BY created_at DESC, name",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*models.Ledger
	for rows.Next() {
		ledger := &models.Ledger{}
		if err := rows.Scan(&ledger.ID, &ledger.Name, &ledger.OwnerID, &ledger.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledgers: %w", err)
	}
	return ledgers, nil
}

// DeleteLedger removes a ledger; its transactions go with it.
func (s *Store) DeleteLedger(ctx context.Context, ledgerID string) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM ledgers WHERE id = ?", ledgerID)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	return expectOneRow(res, "ledger", ledgerID)
}

func expectOneRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}
