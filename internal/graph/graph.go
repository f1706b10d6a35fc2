// Package graph is the in-memory DAG kernel: acyclic insertion,
// dependency validation, frontier computation, and topological
// ordering, built fresh from Store rows on every command invocation.
// See spec.md §4.3.
package graph

import (
	"sort"

	"github.com/proofcarrying/roadmap/internal/model"
)

// StatusFunc derives a claim's current status; the Graph Kernel is
// deliberately decoupled from internal/status so it can be tested with
// a stub function instead of a full RepoContext.
type StatusFunc func(claim model.Claim) model.Status

// Graph is the in-memory DAG assembled from Store rows. Building and
// querying a Graph never touches the Store: internal/session loads the
// rows, calls Build, and only writes back through Store once the
// Graph Kernel has approved a mutation (spec.md §4.3).
type Graph struct {
	claims map[int64]model.Claim
	// adjacency: blocker -> blocked
	out map[int64][]int64
	// reverse adjacency: blocked -> blocker
	in map[int64][]int64
}

// Build assembles a Graph from a flat claim list and edge list, as
// loaded fresh from the Store at the start of a command.
func Build(claims []model.Claim, edges []model.Edge) *Graph {
	g := &Graph{
		claims: make(map[int64]model.Claim, len(claims)),
		out:    make(map[int64][]int64),
		in:     make(map[int64][]int64),
	}
	for _, c := range claims {
		g.claims[c.ID] = c
	}
	for _, e := range edges {
		g.out[e.Blocker] = append(g.out[e.Blocker], e.Blocked)
		g.in[e.Blocked] = append(g.in[e.Blocked], e.Blocker)
	}
	return g
}

// Claim looks up a claim by id.
func (g *Graph) Claim(id int64) (model.Claim, bool) {
	c, ok := g.claims[id]
	return c, ok
}

// Claims returns every claim in the graph, id ascending.
func (g *Graph) Claims() []model.Claim {
	out := make([]model.Claim, 0, len(g.claims))
	for _, c := range g.claims {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Blockers returns the claims that must be PROVEN before id can be
// focused.
func (g *Graph) Blockers(id int64) []int64 {
	return append([]int64(nil), g.in[id]...)
}

// Blocked returns the claims that depend on id.
func (g *Graph) Blocked(id int64) []int64 {
	return append([]int64(nil), g.out[id]...)
}

// WouldCycle reports whether adding the given prospective edges to the
// graph's current adjacency would introduce a cycle, returning the
// first offending cycle path if so (spec.md §4.3).
func (g *Graph) WouldCycle(prospective []model.Edge) (bool, []int64) {
	adj := make(map[int64][]int64, len(g.out))
	for k, v := range g.out {
		adj[k] = append([]int64(nil), v...)
	}
	for _, e := range prospective {
		adj[e.Blocker] = append(adj[e.Blocker], e.Blocked)
	}
	return detectCycle(adj, g.nodeIDs(prospective))
}

// WithoutEdgesTouching returns a copy of the graph with every edge
// where id is blocker or blocked removed, letting a caller re-run
// WouldCycle against a replacement edge set for id without the stale
// edges being counted twice.
func (g *Graph) WithoutEdgesTouching(id int64) *Graph {
	out := &Graph{
		claims: g.claims,
		out:    make(map[int64][]int64, len(g.out)),
		in:     make(map[int64][]int64, len(g.in)),
	}
	for blocker, blockeds := range g.out {
		if blocker == id {
			continue
		}
		for _, blocked := range blockeds {
			if blocked == id {
				continue
			}
			out.out[blocker] = append(out.out[blocker], blocked)
		}
	}
	for blocked, blockers := range g.in {
		if blocked == id {
			continue
		}
		for _, blocker := range blockers {
			if blocker == id {
				continue
			}
			out.in[blocked] = append(out.in[blocked], blocker)
		}
	}
	return out
}

// nodeIDs returns every node id known to the graph plus any introduced
// by prospective edges, so a brand-new claim's self-loop is still
// checked even before it exists in g.claims.
func (g *Graph) nodeIDs(prospective []model.Edge) []int64 {
	seen := make(map[int64]struct{}, len(g.claims))
	for id := range g.claims {
		seen[id] = struct{}{}
	}
	for _, e := range prospective {
		seen[e.Blocker] = struct{}{}
		seen[e.Blocked] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
