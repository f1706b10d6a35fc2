package repo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/proofcarrying/roadmap/internal/model"
)

// GitContext implements Context by shelling out to the local git
// binary, grounded on the corpus's DefaultGitClient pattern: a small
// run() helper capturing stdout/stderr and translating a timed-out
// context into a clear error.
type GitContext struct {
	repoRoot string
	gitBin   string
	timeout  time.Duration
}

// NewGitContext builds a GitContext rooted at repoRoot. gitBin defaults
// to "git" if empty (internal/config's VCSBinary can override it).
func NewGitContext(repoRoot, gitBin string, timeout time.Duration) *GitContext {
	if gitBin == "" {
		gitBin = "git"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitContext{repoRoot: repoRoot, gitBin: gitBin, timeout: timeout}
}

func (g *GitContext) run(ctx context.Context, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.gitBin, args...)
	cmd.Dir = g.repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", "", fmt.Errorf("git %s: timed out after %s", strings.Join(args, " "), g.timeout)
	}
	if err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), stderr.String(), nil
}

// Head returns HEAD's commit id, or ("", false, nil) if the repository
// has no commits yet.
func (g *GitContext) Head(ctx context.Context) (string, bool, error) {
	out, stderr, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		if strings.Contains(stderr, "unknown revision") || strings.Contains(stderr, "ambiguous argument 'HEAD'") {
			return "", false, nil
		}
		return "", false, model.WrapError(model.ErrNoCommits, "resolve HEAD", err)
	}
	return strings.TrimSpace(out), true, nil
}

// IsClean reports whether `git status --porcelain` produced no output.
func (g *GitContext) IsClean(ctx context.Context) (bool, error) {
	out, _, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// DirtyPaths returns the repository-relative paths with uncommitted
// changes, parsed from `git status --porcelain`.
func (g *GitContext) DirtyPaths(ctx context.Context) ([]string, error) {
	out, _, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		// Porcelain format: "XY path" or "XY orig -> path" for renames.
		path := strings.TrimSpace(line[3:])
		if arrow := strings.Index(path, " -> "); arrow != -1 {
			path = path[arrow+4:]
		}
		paths = append(paths, filepathToSlash(path))
	}
	return paths, nil
}

// CommitsBetween returns commits on old..new (first-parent, exclusive of
// old), oldest first. Falls back to the full reachability difference
// when old is not an ancestor of new.
func (g *GitContext) CommitsBetween(ctx context.Context, old, new string) ([]string, error) {
	if old == "" {
		out, _, err := g.run(ctx, "rev-list", "--first-parent", "--reverse", new)
		if err != nil {
			return nil, err
		}
		return splitLines(out), nil
	}

	_, _, ancestorErr := g.run(ctx, "merge-base", "--is-ancestor", old, new)
	if ancestorErr == nil {
		out, _, err := g.run(ctx, "rev-list", "--first-parent", "--reverse", old+".."+new)
		if err != nil {
			return nil, err
		}
		return splitLines(out), nil
	}

	// old is not an ancestor of new (history rewrite, force push): fall
	// back to everything reachable from new but not from old, per
	// spec.md §9 Open Question 2.
	out, _, err := g.run(ctx, "rev-list", "--reverse", new, "--not", old)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// FilesChangedIn returns the union of paths touched by each commit in
// commits, via `git diff-tree` against each commit's parent.
func (g *GitContext) FilesChangedIn(ctx context.Context, commits []string) (map[string]struct{}, error) {
	changed := make(map[string]struct{})
	for _, c := range commits {
		out, _, err := g.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", c)
		if err != nil {
			return nil, err
		}
		for _, p := range splitLines(out) {
			changed[filepathToSlash(p)] = struct{}{}
		}
	}
	return changed, nil
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// filepathToSlash normalizes a git-reported path to forward slashes.
// git already reports paths with '/' on all platforms, but this keeps
// the contract explicit (spec.md §6: "reported as repository-relative
// with forward-slash separators").
func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
