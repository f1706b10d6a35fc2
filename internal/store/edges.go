package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/proofcarrying/roadmap/internal/model"
)

// insertEdge writes one blocker->blocked edge. Acyclicity is validated
// by the Graph Kernel before this is ever called; Store only enforces
// "both endpoints exist" (foreign keys) and "at most one edge per
// ordered pair, no self-loops" (primary key + CHECK in schema.sql).
func insertEdge(ctx context.Context, tx *sql.Tx, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return model.NewError(model.ErrWouldCycle, "a claim cannot depend on itself")
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO edges (blocker_id, blocked_id) VALUES (?, ?)
	`, blockerID, blockedID)
	if err != nil {
		return model.WrapError(model.ErrNotFound, "insert edge: both claims must exist", err)
	}
	return nil
}

// ReplaceEdges atomically rewrites the full edge set touching claimID:
// removes every existing edge where claimID is blocker or blocked, then
// inserts the edges described by after/blocks. Used by edit's
// --after/--blocks handling. The caller (Graph Kernel) must have
// already validated the prospective result is acyclic.
func (s *Store) ReplaceEdges(ctx context.Context, claimID int64, after, blocks []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM edges WHERE blocker_id = ? OR blocked_id = ?
		`, claimID, claimID); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		for _, blockerID := range after {
			if err := insertEdge(ctx, tx, blockerID, claimID); err != nil {
				return err
			}
		}
		for _, blockedID := range blocks {
			if err := insertEdge(ctx, tx, claimID, blockedID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListEdges returns every edge currently in the store.
func (s *Store) ListEdges(ctx context.Context) ([]model.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT blocker_id, blocked_id FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var e model.Edge
		if err := rows.Scan(&e.Blocker, &e.Blocked); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
