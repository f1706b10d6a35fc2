package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proofcarrying/roadmap/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	st1, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	st2, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, st2.Close())
}

func TestCreateClaimAssignsSlugAndID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	claim, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "Set up the database"}, nil, nil)
	require.NoError(t, err)
	require.NotZero(t, claim.ID)
	require.Equal(t, "set-up-the-database", claim.Slug)
}

func TestCreateClaimDisambiguatesSlugCollision(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "Auth"}, nil, nil)
	require.NoError(t, err)
	b, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "Auth"}, nil, nil)
	require.NoError(t, err)

	require.Equal(t, "auth", a.Slug)
	require.Equal(t, "auth-2", b.Slug)
}

func TestCreateClaimWithEdges(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A"}, nil, nil)
	require.NoError(t, err)
	b, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "B"}, []int64{a.ID}, nil)
	require.NoError(t, err)

	edges, err := st.ListEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, a.ID, edges[0].Blocker)
	require.Equal(t, b.ID, edges[0].Blocked)
}

func TestCreateClaimRejectsSelfLoop(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// after=[self] can't be expressed before the id exists; exercise the
	// self-loop guard directly through ReplaceEdges instead.
	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A"}, nil, nil)
	require.NoError(t, err)

	err = st.ReplaceEdges(ctx, a.ID, []int64{a.ID}, nil)
	require.Error(t, err)
}

func TestEditClaimChangesOnlyGivenFields(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "Original", ProveCmd: "true"}, nil, nil)
	require.NoError(t, err)

	newStatement := "Updated"
	edited, err := st.EditClaim(ctx, a.ID, model.ClaimEdits{Statement: &newStatement})
	require.NoError(t, err)

	require.Equal(t, "Updated", edited.Statement)
	require.Equal(t, "true", edited.ProveCmd)
	require.Equal(t, a.Slug, edited.Slug, "editing must not change identity fields")
}

func TestRemoveClaimCascadesEdgesAndProofs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A", ProveCmd: "true"}, nil, nil)
	require.NoError(t, err)
	_, err = st.CreateClaim(ctx, model.ClaimSpec{Statement: "B"}, []int64{a.ID}, nil)
	require.NoError(t, err)
	_, err = st.AppendProof(ctx, testProof(a.ID, "deadbeef"))
	require.NoError(t, err)

	require.NoError(t, st.RemoveClaim(ctx, a.ID))

	edges, err := st.ListEdges(ctx)
	require.NoError(t, err)
	require.Empty(t, edges)

	history, err := st.ProofHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestRemoveActiveClaimClearsPointer(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, st.SetActive(ctx, a.ID))

	require.NoError(t, st.RemoveClaim(ctx, a.ID))

	_, ok, err := st.GetActive(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAppendProofIsAppendOnly(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A", ProveCmd: "true"}, nil, nil)
	require.NoError(t, err)

	before, err := st.ProofCount(ctx)
	require.NoError(t, err)

	_, err = st.AppendProof(ctx, testProof(a.ID, "deadbeef"))
	require.NoError(t, err)
	_, err = st.AppendProof(ctx, testProof(a.ID, "deadbeef"))
	require.NoError(t, err)

	after, err := st.ProofCount(ctx)
	require.NoError(t, err)
	require.Equal(t, before+2, after, "two checks with no code/head change yield two rows")

	history, err := st.ProofHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, history[0].ExitCode, history[1].ExitCode)
	require.Equal(t, history[0].CommitID, history[1].CommitID)
}

func TestAppendVerifiedProofRequiresCommitID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A", ProveCmd: "true"}, nil, nil)
	require.NoError(t, err)

	p := testProof(a.ID, "")
	_, err = st.AppendProof(ctx, p)
	require.Error(t, err)
}

func TestLatestProofReturnsMostRecent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateClaim(ctx, model.ClaimSpec{Statement: "A", ProveCmd: "true"}, nil, nil)
	require.NoError(t, err)

	_, ok, err := st.LatestProof(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, ok, "no proof yet")

	_, err = st.AppendProof(ctx, testProof(a.ID, "commit1"))
	require.NoError(t, err)
	second, err := st.AppendProof(ctx, testProof(a.ID, "commit2"))
	require.NoError(t, err)

	latest, ok, err := st.LatestProof(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, "commit2", latest.CommitID)
}
