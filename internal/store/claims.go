package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/proofcarrying/roadmap/internal/model"
)

// CreateClaim inserts a new claim and, in the same transaction, any
// initial dependency edges. Edge validation (acyclicity) is the Graph
// Kernel's job; Store only enforces that both endpoints exist, via
// foreign keys.
func (s *Store) CreateClaim(ctx context.Context, spec model.ClaimSpec, after, blocks []int64) (model.Claim, error) {
	var claim model.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		slug, err := uniqueSlug(ctx, tx, spec.Statement)
		if err != nil {
			return model.WrapError(model.ErrAlreadyExists, "generate unique slug", err)
		}

		scopeJSON, err := marshalScope(spec.Scope)
		if err != nil {
			return model.WrapError(model.ErrScopeSyntax, "encode scope", err)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO claims (slug, statement, prove_cmd, scope_json, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, slug, spec.Statement, spec.ProveCmd, scopeJSON, now.Format(time.RFC3339Nano))
		if err != nil {
			return model.WrapError(model.ErrAlreadyExists, "insert claim", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		for _, blockerID := range after {
			if err := insertEdge(ctx, tx, blockerID, id); err != nil {
				return err
			}
		}
		for _, blockedID := range blocks {
			if err := insertEdge(ctx, tx, id, blockedID); err != nil {
				return err
			}
		}

		claim = model.Claim{
			ID:        id,
			Slug:      slug,
			Statement: spec.Statement,
			ProveCmd:  spec.ProveCmd,
			Scope:     spec.Scope,
			CreatedAt: now,
		}
		return nil
	})
	return claim, err
}

// EditClaim updates the non-identity fields of a claim (spec.md §3
// Lifecycle: "edited only in non-identity fields"). Edge edits are
// applied separately through the Graph Kernel, which needs to run
// cycle detection before committing them.
func (s *Store) EditClaim(ctx context.Context, id int64, edits model.ClaimEdits) (model.Claim, error) {
	var claim model.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getClaimTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if edits.Statement != nil {
			existing.Statement = *edits.Statement
		}
		if edits.ProveCmd != nil {
			existing.ProveCmd = *edits.ProveCmd
		}
		if edits.Scope != nil {
			existing.Scope = *edits.Scope
		}

		scopeJSON, err := marshalScope(existing.Scope)
		if err != nil {
			return model.WrapError(model.ErrScopeSyntax, "encode scope", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE claims SET statement = ?, prove_cmd = ?, scope_json = ? WHERE id = ?
		`, existing.Statement, existing.ProveCmd, scopeJSON, id)
		if err != nil {
			return fmt.Errorf("update claim: %w", err)
		}

		claim = existing
		return nil
	})
	return claim, err
}

// RemoveClaim deletes a claim and cascades its edges and proofs
// (enforced by ON DELETE CASCADE with foreign_keys=ON). Also clears the
// active pointer if it referenced this claim.
func (s *Store) RemoveClaim(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getClaimTx(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete claim: %w", err)
		}
		return nil
	})
}

// GetClaim loads a single claim by id.
func (s *Store) GetClaim(ctx context.Context, id int64) (model.Claim, error) {
	var claim model.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getClaimTx(ctx, tx, id)
		if err != nil {
			return err
		}
		claim = c
		return nil
	})
	return claim, err
}

// GetClaimBySlug loads a single claim by its exact slug.
func (s *Store) GetClaimBySlug(ctx context.Context, slug string) (model.Claim, error) {
	var claim model.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, claimSelectSQL+` WHERE slug = ?`, slug)
		c, err := scanClaim(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.NewError(model.ErrNotFound, fmt.Sprintf("no claim with slug %q", slug))
			}
			return fmt.Errorf("get claim by slug: %w", err)
		}
		claim = c
		return nil
	})
	return claim, err
}

// ListClaims returns every live claim, ordered by id ascending.
func (s *Store) ListClaims(ctx context.Context) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelectSQL+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

const claimSelectSQL = `SELECT id, slug, statement, prove_cmd, scope_json, created_at FROM claims`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (model.Claim, error) {
	var (
		c         model.Claim
		scopeJSON string
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Slug, &c.Statement, &c.ProveCmd, &scopeJSON, &createdAt); err != nil {
		return model.Claim{}, err
	}
	scope, err := unmarshalScope(scopeJSON)
	if err != nil {
		return model.Claim{}, fmt.Errorf("decode scope: %w", err)
	}
	c.Scope = scope
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Claim{}, fmt.Errorf("decode created_at: %w", err)
	}
	c.CreatedAt = t
	return c, nil
}

func getClaimTx(ctx context.Context, tx *sql.Tx, id int64) (model.Claim, error) {
	row := tx.QueryRowContext(ctx, claimSelectSQL+` WHERE id = ?`, id)
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Claim{}, model.NewError(model.ErrNotFound, fmt.Sprintf("no claim with id %d", id))
		}
		return model.Claim{}, fmt.Errorf("get claim: %w", err)
	}
	return c, nil
}
