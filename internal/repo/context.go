// Package repo is the read-only window onto the working tree that the
// Status Deriver and Verification Runner consume: head commit, dirty
// check, commit history between two refs, and changed-path lookups.
// See spec.md §4.2.
package repo

import "context"

// Context is the read-only snapshot of a working tree. All operations
// read VCS state as of construction; nothing here mutates the
// repository (spec.md §4.2 Guarantee).
type Context interface {
	// Head returns the repository head commit id (40-hex), or ("", false)
	// if there are no commits yet.
	Head(ctx context.Context) (string, bool, error)

	// IsClean reports whether the working tree has no untracked, staged,
	// or unstaged changes.
	IsClean(ctx context.Context) (bool, error)

	// CommitsBetween returns commit ids on the path from old (exclusive)
	// to new (inclusive), oldest first. If old is not an ancestor of new,
	// it falls back to every commit reachable from new but not from old
	// (spec.md §4.2, §9 Open Question 2).
	CommitsBetween(ctx context.Context, old, new string) ([]string, error)

	// FilesChangedIn returns the set of repository-relative,
	// forward-slash paths changed across the union of the given commits.
	FilesChangedIn(ctx context.Context, commits []string) (map[string]struct{}, error)

	// DirtyPaths returns the repository-relative paths with uncommitted
	// modifications (staged, unstaged, or untracked).
	DirtyPaths(ctx context.Context) ([]string, error)
}
