package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proofcarrying/roadmap/internal/model"
	"github.com/proofcarrying/roadmap/internal/repo/repotest"
	"github.com/proofcarrying/roadmap/internal/resolve"
	"github.com/proofcarrying/roadmap/internal/store"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fake := repotest.NewFakeContext()
	fake.HeadID, fake.HasHead, fake.Clean = "c1", true, true

	sess := &Session{Store: st, Repo: fake}
	sess.Resolver = resolve.New(sess, resolve.Lenient)
	return sess
}

func TestInsertClaimRejectsIndirectCycle(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)
	y, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Y"}, []int64{x.ID}, nil)
	require.NoError(t, err)

	_, err = sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Z"}, []int64{y.ID}, []int64{x.ID})
	require.Error(t, err)
	require.Equal(t, model.ErrWouldCycle, model.KindOf(err))
}

func TestInsertClaimAllowsAcyclicChain(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)
	_, err = sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Y"}, []int64{x.ID}, nil)
	require.NoError(t, err)
}

func TestReplaceDependenciesRejectsCycle(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)
	y, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Y"}, []int64{x.ID}, nil)
	require.NoError(t, err)

	err = sess.ReplaceDependencies(ctx, x.ID, []int64{y.ID}, nil)
	require.Error(t, err)
	require.Equal(t, model.ErrWouldCycle, model.KindOf(err))
}

func TestReplaceDependenciesAllowsReattachingSameEdge(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)
	y, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Y"}, []int64{x.ID}, nil)
	require.NoError(t, err)

	// Re-declaring the same after=[x] edge on y must not be flagged as a
	// self-referential cycle just because it already exists.
	err = sess.ReplaceDependencies(ctx, y.ID, []int64{x.ID}, nil)
	require.NoError(t, err)
}

func TestFocusRejectsUnprovenBlocker(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)
	y, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "Y"}, []int64{x.ID}, nil)
	require.NoError(t, err)

	err = sess.Focus(ctx, y.ID)
	require.Error(t, err)
	require.Equal(t, model.ErrBlockedByUnproven, model.KindOf(err))
}

func TestFocusSucceedsWithNoBlockers(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	x, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: "X"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, sess.Focus(ctx, x.ID))
	active, ok, err := sess.Store.GetActive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, x.ID, active)
}
