package cli

import (
	"context"

	"github.com/proofcarrying/roadmap/internal/graph"
	"github.com/proofcarrying/roadmap/internal/model"
	"github.com/proofcarrying/roadmap/internal/session"
)

// resolveOrActive resolves ref if non-empty, otherwise falls back to
// the session's active claim (spec.md §4.6 step 1: "the active one if
// none supplied").
func resolveOrActive(ctx context.Context, sess *session.Session, ref string) (model.Claim, error) {
	if ref != "" {
		return sess.Resolve(ctx, ref)
	}
	id, ok, err := sess.Store.GetActive(ctx)
	if err != nil {
		return model.Claim{}, err
	}
	if !ok {
		return model.Claim{}, model.NewError(model.ErrNotFound, "no active claim and no ref given")
	}
	return sess.Store.GetClaim(ctx, id)
}

// cachedStatusFn derives every claim's status once up front and
// returns a graph.StatusFunc backed by that snapshot, since the Graph
// Kernel's StatusFunc signature has no room for a propagated error.
func cachedStatusFn(ctx context.Context, sess *session.Session) (graph.StatusFunc, error) {
	claims, err := sess.Store.ListClaims(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make(map[int64]model.Status, len(claims))
	deriver := sess.Deriver()
	for _, c := range claims {
		st, err := deriver.Derive(ctx, c)
		if err != nil {
			return nil, err
		}
		statuses[c.ID] = st
	}
	return func(c model.Claim) model.Status {
		if st, ok := statuses[c.ID]; ok {
			return st
		}
		return model.StatusUnproven
	}, nil
}
