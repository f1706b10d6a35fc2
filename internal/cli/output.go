// Package cli is a thin cobra front-end over internal/session: each
// command resolves a reference, calls exactly one core method, and
// renders the stable JSON or text shape from spec.md §6. It carries no
// bootstrap/init command and no interactive polish — those are the
// out-of-scope external CLI's job.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/proofcarrying/roadmap/internal/model"
)

// Exit codes, spec.md §6.
const (
	ExitSuccess            = 0
	ExitFailure            = 1
	ExitResolutionFailure  = 2
	ExitGraphConstraint    = 3
	ExitHygieneViolation   = 4
	ExitVerificationFailed = 5
	ExitStoreError         = 6
)

// ExitError pairs an error with the exit code the entrypoint should
// return, mirroring the corpus's ExitError/WrapExitError/GetExitCode
// trio.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps err, mapping a *model.Error to its canonical exit
// code (spec.md §6) or falling back to ExitFailure for anything else.
func WrapExitError(message string, err error) *ExitError {
	return &ExitError{Code: exitCodeFor(err), Message: message, Err: err}
}

func exitCodeFor(err error) int {
	switch model.KindOf(err) {
	case model.ErrNotFound, model.ErrAmbiguous:
		return ExitResolutionFailure
	case model.ErrWouldCycle, model.ErrBlockedByUnproven:
		return ExitGraphConstraint
	case model.ErrDirtyWorkingTree:
		return ExitHygieneViolation
	case model.ErrNoCommits, model.ErrNoProveCommand, model.ErrTimeout:
		return ExitVerificationFailed
	case model.ErrStoreBusy, model.ErrStoreCorrupt:
		return ExitStoreError
	default:
		return ExitFailure
	}
}

// GetExitCode extracts the exit code carried by err, defaulting to
// ExitFailure when err isn't an *ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if unwrapAs(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func unwrapAs(err error, target **ExitError) bool {
	for err != nil {
		if e, ok := err.(*ExitError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ClaimDTO is the stable Claim JSON shape (spec.md §6).
type ClaimDTO struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Statement   string    `json:"statement"`
	ProveCmd    string    `json:"prove_cmd,omitempty"`
	Scope       []string  `json:"scope"`
	Status      string    `json:"status"`
	LatestProof *ProofDTO `json:"latest_proof,omitempty"`
}

// ProofDTO is the stable Proof JSON shape (spec.md §6).
type ProofDTO struct {
	ID         int64  `json:"id"`
	ClaimID    int64  `json:"claim_id"`
	RecordedAt string `json:"recorded_at"`
	Cmd        string `json:"cmd"`
	ExitCode   int    `json:"exit_code"`
	CommitID   string `json:"commit_id"`
	DurationMS int64  `json:"duration_ms"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason,omitempty"`
}

// ErrorDTO is the stable Error JSON shape (spec.md §6).
type ErrorDTO struct {
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	Candidates []model.Candidate `json:"candidates,omitempty"`
}

func toProofDTO(p model.Proof) *ProofDTO {
	return &ProofDTO{
		ID:         p.ID,
		ClaimID:    p.ClaimID,
		RecordedAt: p.RecordedAt.Format("2006-01-02T15:04:05.999999999Z07:00"),
		Cmd:        p.Cmd,
		ExitCode:   p.ExitCode,
		CommitID:   p.CommitID,
		DurationMS: p.DurationMS,
		Kind:       string(p.Kind),
		Reason:     p.Reason,
	}
}

func toClaimDTO(c model.Claim, status model.Status, latest *model.Proof) ClaimDTO {
	dto := ClaimDTO{
		ID:        c.ID,
		Slug:      c.Slug,
		Statement: c.Statement,
		ProveCmd:  c.ProveCmd,
		Scope:     c.Scope,
		Status:    string(status),
	}
	if dto.Scope == nil {
		dto.Scope = []string{}
	}
	if latest != nil {
		dto.LatestProof = toProofDTO(*latest)
	}
	return dto
}

func toErrorDTO(err error) ErrorDTO {
	var merr *model.Error
	if unwrapAsModelError(err, &merr) {
		return ErrorDTO{Kind: string(merr.Kind), Message: merr.Message, Candidates: merr.Candidates}
	}
	return ErrorDTO{Kind: "Failure", Message: err.Error()}
}

func unwrapAsModelError(err error, target **model.Error) bool {
	for err != nil {
		if e, ok := err.(*model.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// writeJSON encodes v as pretty JSON to w.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
