package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proofcarrying/roadmap/internal/model"
	"github.com/proofcarrying/roadmap/internal/repo/repotest"
)

type fakeProofSource struct {
	proofs map[int64]model.Proof
}

func (f *fakeProofSource) LatestProof(ctx context.Context, claimID int64) (model.Proof, bool, error) {
	p, ok := f.proofs[claimID]
	return p, ok, nil
}

func newFakeProofSource() *fakeProofSource {
	return &fakeProofSource{proofs: make(map[int64]model.Proof)}
}

func TestDeriveUnprovenWithNoProof(t *testing.T) {
	proofs := newFakeProofSource()
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c1", true, true

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusUnproven, status)
}

func TestDeriveBrokenOnNonzeroExit(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 1, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c1", true, true

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusBroken, status)
}

func TestDeriveProvenOnExactCommitClean(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c1", true, true

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusProven, status)
}

// S2: global decay -> STALE. Any non-empty invalidation set trips it.
func TestDeriveGlobalDecayStale(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c2", true, true
	repo.Commits["c1..c2"] = []string{"c2"}
	repo.ChangedFiles["c2"] = map[string]struct{}{"README.md": {}}

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusStale, status)
}

// S3: smart decay keeps PROVEN when the change is outside scope.
func TestDeriveSmartDecayStaysProvenOutsideScope(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c2", true, true
	repo.Commits["c1..c2"] = []string{"c2"}
	repo.ChangedFiles["c2"] = map[string]struct{}{"src/a/x": {}}

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1, Scope: []string{"src/b/**"}})
	require.NoError(t, err)
	require.Equal(t, model.StatusProven, status)
}

// S4: smart decay trips STALE when the change is inside scope.
func TestDeriveSmartDecayTripsStaleInsideScope(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c2", true, true
	repo.Commits["c1..c2"] = []string{"c2"}
	repo.ChangedFiles["c2"] = map[string]struct{}{"src/b/impl": {}}

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1, Scope: []string{"src/b/**"}})
	require.NoError(t, err)
	require.Equal(t, model.StatusStale, status)
}

func TestDeriveDirtyWorkingTreeContributesToInvalidation(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c1", true, false
	repo.Dirty = []string{"src/b/dirty.go"}

	d := New(proofs, repo)
	status, err := d.Derive(context.Background(), model.Claim{ID: 1, Scope: []string{"src/b/**"}})
	require.NoError(t, err)
	require.Equal(t, model.StatusStale, status)
}

func TestScopeMatchesHonoursNegationOrdering(t *testing.T) {
	d := New(newFakeProofSource(), repotest.NewFakeContext())
	claim := model.Claim{ID: 7, Scope: []string{"src/**", "!src/generated/**"}}
	patterns, err := d.compilePatterns(claim)
	require.NoError(t, err)

	require.True(t, scopeMatches(patterns, "src/a.go"))
	require.False(t, scopeMatches(patterns, "src/generated/a.go"), "later negated pattern wins")
}

func TestDeriveNoCommitsIsAnError(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HasHead = false

	d := New(proofs, repo)
	_, err := d.Derive(context.Background(), model.Claim{ID: 1})
	require.Error(t, err)
	require.Equal(t, model.ErrNoCommits, model.KindOf(err))
}

func TestDerivePurity(t *testing.T) {
	proofs := newFakeProofSource()
	proofs.proofs[1] = model.Proof{ClaimID: 1, ExitCode: 0, CommitID: "c1"}
	repo := repotest.NewFakeContext()
	repo.HeadID, repo.HasHead, repo.Clean = "c2", true, true
	repo.Commits["c1..c2"] = []string{"c2"}
	repo.ChangedFiles["c2"] = map[string]struct{}{"src/b/impl": {}}

	d := New(proofs, repo)
	c := model.Claim{ID: 1, Scope: []string{"src/b/**"}}
	first, err := d.Derive(context.Background(), c)
	require.NoError(t, err)
	second, err := d.Derive(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
