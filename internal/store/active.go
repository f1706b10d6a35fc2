package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetActive sets the process-wide active pointer to claimID.
func (s *Store) SetActive(ctx context.Context, claimID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getClaimTx(ctx, tx, claimID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO active_pointer (singleton, claim_id) VALUES (1, ?)
			ON CONFLICT(singleton) DO UPDATE SET claim_id = excluded.claim_id
		`, claimID)
		if err != nil {
			return fmt.Errorf("set active pointer: %w", err)
		}
		return nil
	})
}

// ClearActive clears the active pointer, if any.
func (s *Store) ClearActive(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_pointer WHERE singleton = 1`)
	if err != nil {
		return fmt.Errorf("clear active pointer: %w", err)
	}
	return nil
}

// GetActive returns the currently focused claim id, and false if none
// is set (either no row, or the pointed-to claim was removed and the
// foreign key's ON DELETE SET NULL cleared it, per spec.md §3
// Lifecycle: "cleared on delete").
func (s *Store) GetActive(ctx context.Context) (int64, bool, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT claim_id FROM active_pointer WHERE singleton = 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get active pointer: %w", err)
	}
	if !id.Valid {
		return 0, false, nil
	}
	return id.Int64, true, nil
}
