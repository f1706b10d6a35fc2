// Package model holds the domain types shared by every core package:
// claims, edges, proofs, derived status, and the typed error taxonomy.
package model

import "time"

// Claim is a proposition about the repository.
type Claim struct {
	ID         int64
	Slug       string
	Statement  string
	ProveCmd   string   // empty means no falsifier recorded yet
	Scope      []string // ordered glob patterns; empty/nil means global decay
	CreatedAt  time.Time
}

// HasProveCmd reports whether the claim carries a falsifier command.
func (c Claim) HasProveCmd() bool {
	return c.ProveCmd != ""
}

// ClaimSpec is the input to creating a new claim: everything about a
// claim that isn't assigned by the Store itself (id, slug, created_at).
type ClaimSpec struct {
	Statement string
	ProveCmd  string
	Scope     []string
}

// ClaimEdits describes which non-identity fields of a claim to change.
// A nil pointer leaves the corresponding field untouched.
type ClaimEdits struct {
	Statement *string
	ProveCmd  *string
	Scope     *[]string
}

// Edge is a directed dependency edge: Blocker must be PROVEN before
// Blocked can be focused.
type Edge struct {
	Blocker int64
	Blocked int64
}

// ProofKind distinguishes a mechanically executed proof from an
// operator attestation.
type ProofKind string

const (
	KindVerified ProofKind = "VERIFIED"
	KindAttested ProofKind = "ATTESTED"
)

// Proof is one append-only row capturing a single verification attempt
// or attestation.
type Proof struct {
	ID         int64
	ClaimID    int64
	RecordedAt time.Time
	Cmd        string
	ExitCode   int
	CommitID   string // repo head at time of execution; required for VERIFIED
	DurationMS int64
	StdoutTail string
	StderrTail string
	Kind       ProofKind
	Reason     string // non-empty iff Kind == KindAttested
}

// Succeeded reports whether the proof constitutes evidence the claim
// held at CommitID.
func (p Proof) Succeeded() bool {
	return p.ExitCode == 0
}

// TimeoutExitCode is the synthetic exit code recorded when a prove_cmd
// is killed after exceeding its timeout (spec §4.6, §9). The Runner also
// records it when the shell could not be run at all; the stderr tail's
// annotation tells the two cases apart.
const TimeoutExitCode = -1
