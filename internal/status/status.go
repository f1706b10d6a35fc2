// Package status implements the derived-status computation: a pure
// function of a claim's latest proof, the repository's current state,
// and the claim's scope. See spec.md §4.5.
package status

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/proofcarrying/roadmap/internal/model"
)

// ProofSource loads the latest proof for a claim, decoupling the
// Deriver from any particular Store implementation.
type ProofSource interface {
	LatestProof(ctx context.Context, claimID int64) (model.Proof, bool, error)
}

// Deriver computes derived statuses for claims against a fixed
// RepoContext snapshot, caching compiled scope globs per claim for the
// lifetime of one invocation (spec.md §9 "Scope matching").
type Deriver struct {
	proofs ProofSource
	repo   repoContext

	compiled map[int64][]compiledPattern
}

// repoContext is the subset of repo.Context the Deriver needs; kept
// unexported and structurally compatible so tests can pass a fake
// without importing the repo package.
type repoContext interface {
	Head(ctx context.Context) (string, bool, error)
	IsClean(ctx context.Context) (bool, error)
	CommitsBetween(ctx context.Context, old, new string) ([]string, error)
	FilesChangedIn(ctx context.Context, commits []string) (map[string]struct{}, error)
	DirtyPaths(ctx context.Context) ([]string, error)
}

// New builds a Deriver bound to a proof source and a repo snapshot.
func New(proofs ProofSource, repo repoContext) *Deriver {
	return &Deriver{proofs: proofs, repo: repo, compiled: make(map[int64][]compiledPattern)}
}

type compiledPattern struct {
	pattern  string
	negate   bool
}

// Derive computes claim's status per spec.md §4.5's five-step rule.
// Step 1: no proof means UNPROVEN. Step 2: a nonzero exit code is
// BROKEN regardless of anything else. Step 3: the exact commit
// witnessed by the proof, checked out clean, is PROVEN outright. Steps
// 4-5: otherwise compute the invalidation set and apply the scope
// rule (global decay vs smart decay).
func (d *Deriver) Derive(ctx context.Context, claim model.Claim) (model.Status, error) {
	proof, ok, err := d.proofs.LatestProof(ctx, claim.ID)
	if err != nil {
		return "", fmt.Errorf("load latest proof: %w", err)
	}
	if !ok {
		return model.StatusUnproven, nil
	}
	if !proof.Succeeded() {
		return model.StatusBroken, nil
	}

	head, hasHead, err := d.repo.Head(ctx)
	if err != nil {
		return "", fmt.Errorf("repo head: %w", err)
	}
	if !hasHead {
		return "", model.NewError(model.ErrNoCommits, "repository has no commits")
	}

	clean, err := d.repo.IsClean(ctx)
	if err != nil {
		return "", fmt.Errorf("repo clean check: %w", err)
	}
	if proof.CommitID == head && clean {
		return model.StatusProven, nil
	}

	invalidated, err := d.invalidationSet(ctx, proof.CommitID, head, clean)
	if err != nil {
		return "", err
	}

	if len(claim.Scope) == 0 {
		if len(invalidated) == 0 {
			return model.StatusProven, nil
		}
		return model.StatusStale, nil
	}

	patterns, err := d.compilePatterns(claim)
	if err != nil {
		return "", err
	}
	for path := range invalidated {
		if scopeMatches(patterns, path) {
			return model.StatusStale, nil
		}
	}
	return model.StatusProven, nil
}

// invalidationSet is the union of files changed between the proof's
// commit and head, plus any currently-dirty paths (spec.md §4.5 step 4).
func (d *Deriver) invalidationSet(ctx context.Context, old, new string, clean bool) (map[string]struct{}, error) {
	commits, err := d.repo.CommitsBetween(ctx, old, new)
	if err != nil {
		return nil, fmt.Errorf("commits between: %w", err)
	}
	changed, err := d.repo.FilesChangedIn(ctx, commits)
	if err != nil {
		return nil, fmt.Errorf("files changed: %w", err)
	}
	if clean {
		return changed, nil
	}
	dirty, err := d.repo.DirtyPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("dirty paths: %w", err)
	}
	for _, p := range dirty {
		changed[p] = struct{}{}
	}
	return changed, nil
}

// compilePatterns compiles claim.Scope once and caches it for the
// lifetime of this Deriver (one command invocation).
func (d *Deriver) compilePatterns(claim model.Claim) ([]compiledPattern, error) {
	if cached, ok := d.compiled[claim.ID]; ok {
		return cached, nil
	}
	patterns := make([]compiledPattern, 0, len(claim.Scope))
	for _, raw := range claim.Scope {
		p := compiledPattern{pattern: raw}
		if len(raw) > 0 && raw[0] == '!' {
			p.negate = true
			p.pattern = raw[1:]
		}
		if !doublestar.ValidatePattern(p.pattern) {
			return nil, model.NewError(model.ErrScopeSyntax, fmt.Sprintf("invalid scope glob %q", raw))
		}
		patterns = append(patterns, p)
	}
	d.compiled[claim.ID] = patterns
	return patterns, nil
}

// scopeMatches implements spec.md §4.5's negation-ordering rule: a path
// matches the scope iff the last matching pattern, in declared order,
// is non-negated.
func scopeMatches(patterns []compiledPattern, path string) bool {
	matched := false
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p.pattern, path); ok {
			matched = !p.negate
		}
	}
	return matched
}
