package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/proofcarrying/roadmap/internal/model"
)

// AppendProof appends one proof row within its own transaction — the
// proof log is append-only at the API level (no Update/Delete entry
// points exist on this type at all), per spec.md §3 and §9.
func (s *Store) AppendProof(ctx context.Context, p model.Proof) (model.Proof, error) {
	if p.Kind == model.KindVerified && p.CommitID == "" {
		return model.Proof{}, model.NewError(model.ErrNoCommits, "a VERIFIED proof requires a non-empty commit_id")
	}
	if p.Kind == model.KindAttested && p.Reason == "" {
		return model.Proof{}, model.NewError(model.ErrScopeSyntax, "an ATTESTED proof requires a non-empty reason")
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getClaimTx(ctx, tx, p.ClaimID); err != nil {
			return err
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO proofs
			(claim_id, recorded_at, cmd, exit_code, commit_id, duration_ms, stdout_tail, stderr_tail, kind, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			p.ClaimID, now.Format(time.RFC3339Nano), p.Cmd, p.ExitCode, p.CommitID,
			p.DurationMS, p.StdoutTail, p.StderrTail, string(p.Kind), p.Reason,
		)
		if err != nil {
			return fmt.Errorf("append proof: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		p.ID = id
		p.RecordedAt = now
		return nil
	})
	return p, err
}

const proofSelectSQL = `
	SELECT id, claim_id, recorded_at, cmd, exit_code, commit_id, duration_ms, stdout_tail, stderr_tail, kind, reason
	FROM proofs
`

func scanProof(row rowScanner) (model.Proof, error) {
	var (
		p          model.Proof
		recordedAt string
		kind       string
	)
	if err := row.Scan(
		&p.ID, &p.ClaimID, &recordedAt, &p.Cmd, &p.ExitCode, &p.CommitID,
		&p.DurationMS, &p.StdoutTail, &p.StderrTail, &kind, &p.Reason,
	); err != nil {
		return model.Proof{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return model.Proof{}, fmt.Errorf("decode recorded_at: %w", err)
	}
	p.RecordedAt = t
	p.Kind = model.ProofKind(kind)
	return p, nil
}

// LatestProof returns the most recent proof recorded for claimID,
// ordered by recorded_at then id (recorded_at is wall-clock and only
// advisory per spec.md §5; id is the monotonic total order).
// Returns (model.Proof{}, false, nil) if the claim has never been proven.
func (s *Store) LatestProof(ctx context.Context, claimID int64) (model.Proof, bool, error) {
	row := s.db.QueryRowContext(ctx, proofSelectSQL+`
		WHERE claim_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1
	`, claimID)
	p, err := scanProof(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proof{}, false, nil
		}
		return model.Proof{}, false, fmt.Errorf("latest proof: %w", err)
	}
	return p, true, nil
}

// ProofHistory returns every proof recorded for claimID, oldest first.
func (s *Store) ProofHistory(ctx context.Context, claimID int64) ([]model.Proof, error) {
	rows, err := s.db.QueryContext(ctx, proofSelectSQL+`
		WHERE claim_id = ? ORDER BY recorded_at ASC, id ASC
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("proof history: %w", err)
	}
	defer rows.Close()

	var proofs []model.Proof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		proofs = append(proofs, p)
	}
	return proofs, rows.Err()
}

// ProofCount returns the total number of proof rows across all claims.
// Used to assert the append-only cardinality invariant in tests
// (spec.md §8 property 4).
func (s *Store) ProofCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proofs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("proof count: %w", err)
	}
	return n, nil
}
