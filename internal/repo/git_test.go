package repo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// initRepo creates a throwaway git repository with one commit and
// returns its root path. Skips the test if git isn't on PATH.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	run("commit", "--allow-empty", "-q", "-m", "initial")
	return dir
}

func TestGitContextHeadAndClean(t *testing.T) {
	dir := initRepo(t)
	gc := NewGitContext(dir, "", 0)
	ctx := context.Background()

	head, ok, err := gc.Head(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, head, 40)

	clean, err := gc.IsClean(ctx)
	require.NoError(t, err)
	require.True(t, clean)
}

func TestGitContextDetectsDirtyTree(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0o644))

	gc := NewGitContext(dir, "", 0)
	clean, err := gc.IsClean(context.Background())
	require.NoError(t, err)
	require.False(t, clean)
}

func TestGitContextCommitsBetweenAndFilesChanged(t *testing.T) {
	dir := initRepo(t)
	gc := NewGitContext(dir, "", 0)
	ctx := context.Background()

	first, _, err := gc.Head(ctx)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.go"), []byte("package a"), 0o644))
	commitAll(t, dir, "add a.go")
	second, _, err := gc.Head(ctx)
	require.NoError(t, err)

	commits, err := gc.CommitsBetween(ctx, first, second)
	require.NoError(t, err)
	require.Equal(t, []string{second}, commits)

	changed, err := gc.FilesChangedIn(ctx, commits)
	require.NoError(t, err)
	_, ok := changed["src/a.go"]
	require.True(t, ok)
}

func commitAll(t *testing.T, dir, message string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("add", "-A")
	run("commit", "-q", "-m", message)
}
