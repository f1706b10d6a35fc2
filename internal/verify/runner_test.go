package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proofcarrying/roadmap/internal/model"
)

type fakeAppender struct {
	proofs []model.Proof
}

func (f *fakeAppender) AppendProof(ctx context.Context, p model.Proof) (model.Proof, error) {
	if p.Kind == model.KindVerified && p.CommitID == "" {
		return model.Proof{}, model.NewError(model.ErrNoCommits, "verified proof needs a commit id")
	}
	if p.Kind == model.KindAttested && p.Reason == "" {
		return model.Proof{}, model.NewError(model.ErrScopeSyntax, "attested proof needs a reason")
	}
	p.ID = int64(len(f.proofs) + 1)
	p.RecordedAt = time.Now()
	f.proofs = append(f.proofs, p)
	return p, nil
}

type fakeRepoState struct {
	head    string
	hasHead bool
	clean   bool
}

func (f *fakeRepoState) Head(ctx context.Context) (string, bool, error) { return f.head, f.hasHead, nil }
func (f *fakeRepoState) IsClean(ctx context.Context) (bool, error)      { return f.clean, nil }

func TestCheckFailsWithoutProveCmd(t *testing.T) {
	r := New(&fakeAppender{}, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	_, err := r.Check(context.Background(), model.Claim{ID: 1}, 0)
	require.Error(t, err)
	require.Equal(t, model.ErrNoProveCommand, model.KindOf(err))
}

func TestCheckFailsOnDirtyTree(t *testing.T) {
	r := New(&fakeAppender{}, &fakeRepoState{clean: false, hasHead: true, head: "c1"}, nil)
	_, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "true"}, 0)
	require.Error(t, err)
	require.Equal(t, model.ErrDirtyWorkingTree, model.KindOf(err))
}

func TestCheckFailsWithNoCommits(t *testing.T) {
	r := New(&fakeAppender{}, &fakeRepoState{clean: true, hasHead: false}, nil)
	_, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "true"}, 0)
	require.Error(t, err)
	require.Equal(t, model.ErrNoCommits, model.KindOf(err))
}

func TestCheckSuccessRecordsProvenProof(t *testing.T) {
	appender := &fakeAppender{}
	r := New(appender, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	out, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "true"}, time.Second)
	require.NoError(t, err)
	require.Equal(t, model.StatusProven, out.Status)
	require.Equal(t, 0, out.Proof.ExitCode)
	require.Equal(t, "c1", out.Proof.CommitID)
	require.Equal(t, model.KindVerified, out.Proof.Kind)
	require.Len(t, appender.proofs, 1)
}

func TestCheckFailureRecordsBrokenProof(t *testing.T) {
	appender := &fakeAppender{}
	r := New(appender, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	out, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "exit 3"}, time.Second)
	require.NoError(t, err)
	require.Equal(t, model.StatusBroken, out.Status)
	require.Equal(t, 3, out.Proof.ExitCode)
}

func TestCheckCapturesStdoutTail(t *testing.T) {
	appender := &fakeAppender{}
	r := New(appender, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	out, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "echo hello"}, time.Second)
	require.NoError(t, err)
	require.Contains(t, out.Proof.StdoutTail, "hello")
}

func TestCheckTimeoutRecordsTimeoutExitCode(t *testing.T) {
	appender := &fakeAppender{}
	r := New(appender, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	out, err := r.Check(context.Background(), model.Claim{ID: 1, ProveCmd: "sleep 5"}, 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, model.TimeoutExitCode, out.Proof.ExitCode)
	require.Equal(t, model.StatusBroken, out.Status)
}

func TestAttestRequiresReason(t *testing.T) {
	r := New(&fakeAppender{}, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	_, err := r.Attest(context.Background(), model.Claim{ID: 1}, "")
	require.Error(t, err)
}

func TestAttestRequiresCleanTree(t *testing.T) {
	r := New(&fakeAppender{}, &fakeRepoState{clean: false, hasHead: true, head: "c1"}, nil)
	_, err := r.Attest(context.Background(), model.Claim{ID: 1}, "manually verified")
	require.Error(t, err)
	require.Equal(t, model.ErrDirtyWorkingTree, model.KindOf(err))
}

func TestAttestRecordsAttestedProof(t *testing.T) {
	appender := &fakeAppender{}
	r := New(appender, &fakeRepoState{clean: true, hasHead: true, head: "c1"}, nil)
	out, err := r.Attest(context.Background(), model.Claim{ID: 1}, "manually verified in staging")
	require.NoError(t, err)
	require.Equal(t, model.StatusProven, out.Status)
	require.Equal(t, model.KindAttested, out.Proof.Kind)
	require.Equal(t, "manually verified in staging", out.Proof.Reason)
	require.Equal(t, "", out.Proof.Cmd)
}

func TestTailWriterKeepsOnlyTrailingBytes(t *testing.T) {
	w := newTailWriter(8)
	_, err := w.Write([]byte("0123456789ABCDEF"))
	require.NoError(t, err)
	require.Equal(t, truncationMarker+"89ABCDEF", w.String())
}

func TestTailWriterUntouchedUnderLimit(t *testing.T) {
	w := newTailWriter(64)
	_, err := w.Write([]byte("short"))
	require.NoError(t, err)
	require.Equal(t, "short", w.String())
}
