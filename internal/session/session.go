// Package session owns the collaborators a single command invocation
// needs — an open Store, a RepoContext, the loaded config —
// and the orchestration that has to see more than one of them at once:
// building the Graph Kernel fresh from Store rows, running cycle
// detection before a Store write is allowed to land. See spec.md §9's
// note to "model them as a scoped Session value".
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/proofcarrying/roadmap/internal/config"
	"github.com/proofcarrying/roadmap/internal/graph"
	"github.com/proofcarrying/roadmap/internal/model"
	"github.com/proofcarrying/roadmap/internal/repo"
	"github.com/proofcarrying/roadmap/internal/resolve"
	"github.com/proofcarrying/roadmap/internal/status"
	"github.com/proofcarrying/roadmap/internal/store"
	"github.com/proofcarrying/roadmap/internal/verify"
)

// Session bundles everything one CLI invocation needs and releases on
// Close. Every field is safe to use concurrently within the one
// invocation the corpus's single-writer CLI model assumes.
type Session struct {
	Store    *store.Store
	Repo     repo.Context
	Config   config.Config
	Log      *slog.Logger
	Resolver *resolve.Resolver

	invocationID string
}

// Open builds a Session rooted at repoRoot, opening the Store at
// dbPath and constructing a git-backed RepoContext. cfg supplies
// operator overrides (vcs binary, default scope); its zero value is a
// safe, fully-defaulted Config.
func Open(dbPath, repoRoot string, cfg config.Config, mode resolve.Mode, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.WithDefaults()

	invocationID := uuid.New().String()
	log = log.With(slog.String("invocation_id", invocationID))

	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	gitCtx := repo.NewGitContext(repoRoot, cfg.VCSBinary, 0)

	sess := &Session{
		Store:        st,
		Repo:         gitCtx,
		Config:       cfg,
		Log:          log,
		invocationID: invocationID,
	}
	sess.Resolver = resolve.New(sess, mode)
	return sess, nil
}

// Close releases the Store handle. Idempotent.
func (s *Session) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// GetClaim, GetClaimBySlug, and ListClaims satisfy resolve.Source by
// delegating straight to the Store.
func (s *Session) GetClaim(ctx context.Context, id int64) (model.Claim, error) {
	return s.Store.GetClaim(ctx, id)
}

func (s *Session) GetClaimBySlug(ctx context.Context, slug string) (model.Claim, error) {
	return s.Store.GetClaimBySlug(ctx, slug)
}

func (s *Session) ListClaims(ctx context.Context) ([]model.Claim, error) {
	return s.Store.ListClaims(ctx)
}

// Resolve maps ref to exactly one claim through this session's
// Resolver.
func (s *Session) Resolve(ctx context.Context, ref string) (model.Claim, error) {
	return s.Resolver.Resolve(ctx, ref)
}

// Deriver builds a status.Deriver bound to this session's Store and
// RepoContext, freshly scoped so its per-claim glob cache lives no
// longer than the call that needs it.
func (s *Session) Deriver() *status.Deriver {
	return status.New(s.Store, s.Repo)
}

// Runner builds a verify.Runner bound to this session's Store and
// RepoContext.
func (s *Session) Runner() *verify.Runner {
	return verify.New(s.Store, s.Repo, s.Log)
}

// LoadGraph assembles the in-memory Graph Kernel from every current
// claim and edge (spec.md §4.3: "built fresh ... on every command
// invocation").
func (s *Session) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	claims, err := s.Store.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	edges, err := s.Store.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	return graph.Build(claims, edges), nil
}

// StatusOf derives claim's current status through a fresh Deriver,
// returning the Deriver's error unchanged.
func (s *Session) StatusOf(ctx context.Context, claim model.Claim) (model.Status, error) {
	return s.Deriver().Derive(ctx, claim)
}

// InsertClaim runs the Graph Kernel's cycle check against the
// prospective edges before writing anything, then delegates the
// actual insert to the Store — the sequencing spec.md §4.3 requires
// ("Cycle detection is performed on the prospective adjacency").
func (s *Session) InsertClaim(ctx context.Context, spec model.ClaimSpec, after, blocks []int64) (model.Claim, error) {
	g, err := s.LoadGraph(ctx)
	if err != nil {
		return model.Claim{}, err
	}

	// A not-yet-created claim has no id; use a sentinel that cannot
	// collide with a real row (ids start at 1) purely to exercise the
	// cycle check against the edges as declared.
	const pendingID = int64(-1)
	prospective := make([]model.Edge, 0, len(after)+len(blocks))
	for _, blockerID := range after {
		prospective = append(prospective, model.Edge{Blocker: blockerID, Blocked: pendingID})
	}
	for _, blockedID := range blocks {
		prospective = append(prospective, model.Edge{Blocker: pendingID, Blocked: blockedID})
	}

	if would, path := g.WouldCycle(prospective); would {
		return model.Claim{}, &model.Error{Kind: model.ErrWouldCycle, Message: fmt.Sprintf("would introduce a cycle: %v", path)}
	}

	return s.Store.CreateClaim(ctx, spec, after, blocks)
}

// ReplaceDependencies runs the same cycle check for an edit's
// --after/--blocks changes, then delegates to the Store. A side given
// no ids keeps the claim's current edges on that side, so `edit
// --after` alone leaves the claims it blocks in place.
func (s *Session) ReplaceDependencies(ctx context.Context, claimID int64, after, blocks []int64) error {
	g, err := s.LoadGraph(ctx)
	if err != nil {
		return err
	}

	if len(after) == 0 {
		after = g.Blockers(claimID)
	}
	if len(blocks) == 0 {
		blocks = g.Blocked(claimID)
	}

	prospective := make([]model.Edge, 0, len(after)+len(blocks))
	for _, blockerID := range after {
		prospective = append(prospective, model.Edge{Blocker: blockerID, Blocked: claimID})
	}
	for _, blockedID := range blocks {
		prospective = append(prospective, model.Edge{Blocker: claimID, Blocked: blockedID})
	}

	adjWithoutClaim := g.WithoutEdgesTouching(claimID)
	if would, path := adjWithoutClaim.WouldCycle(prospective); would {
		return &model.Error{Kind: model.ErrWouldCycle, Message: fmt.Sprintf("would introduce a cycle: %v", path)}
	}

	return s.Store.ReplaceEdges(ctx, claimID, after, blocks)
}

// Focus validates that every blocker of claimID is PROVEN, then sets
// it as the active pointer (spec.md §4.3 focus rule).
func (s *Session) Focus(ctx context.Context, claimID int64) error {
	g, err := s.LoadGraph(ctx)
	if err != nil {
		return err
	}
	claim, ok := g.Claim(claimID)
	if !ok {
		return model.NewError(model.ErrNotFound, fmt.Sprintf("no claim with id %d", claimID))
	}

	statusFn := func(c model.Claim) model.Status {
		st, err := s.StatusOf(ctx, c)
		if err != nil {
			return model.StatusUnproven
		}
		return st
	}

	ok, unproven := g.ValidateFocus(claim.ID, statusFn)
	if !ok {
		return &model.Error{Kind: model.ErrBlockedByUnproven, Message: fmt.Sprintf("blocked by unproven claims: %v", unproven)}
	}
	return s.Store.SetActive(ctx, claimID)
}
