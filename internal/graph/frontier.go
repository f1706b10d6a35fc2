package graph

import (
	"sort"

	"github.com/proofcarrying/roadmap/internal/model"
)

// Frontier returns claims whose derived status is not PROVEN and whose
// every blocker derives to PROVEN, ordered topological-layer ascending,
// then created_at ascending, then id ascending (spec.md §4.3).
func (g *Graph) Frontier(status StatusFunc) []model.Claim {
	layers := g.topoLayers()

	var frontier []model.Claim
	for _, c := range g.claims {
		if status(c) == model.StatusProven {
			continue
		}
		if g.allBlockersProven(c.ID, status) {
			frontier = append(frontier, c)
		}
	}

	sort.Slice(frontier, func(i, j int) bool {
		li, lj := layers[frontier[i].ID], layers[frontier[j].ID]
		if li != lj {
			return li < lj
		}
		if !frontier[i].CreatedAt.Equal(frontier[j].CreatedAt) {
			return frontier[i].CreatedAt.Before(frontier[j].CreatedAt)
		}
		return frontier[i].ID < frontier[j].ID
	})
	return frontier
}

func (g *Graph) allBlockersProven(id int64, status StatusFunc) bool {
	for _, blockerID := range g.in[id] {
		blocker, ok := g.claims[blockerID]
		if !ok {
			continue
		}
		if status(blocker) != model.StatusProven {
			return false
		}
	}
	return true
}

// ValidateFocus ensures every blocker of id is PROVEN under the given
// status function; on failure it returns the ids of the offending
// blockers (spec.md §4.3).
func (g *Graph) ValidateFocus(id int64, status StatusFunc) (ok bool, unprovenBlockers []int64) {
	for _, blockerID := range g.in[id] {
		blocker, found := g.claims[blockerID]
		if !found {
			continue
		}
		if status(blocker) != model.StatusProven {
			unprovenBlockers = append(unprovenBlockers, blockerID)
		}
	}
	return len(unprovenBlockers) == 0, unprovenBlockers
}

// TopoOrder returns a deterministic topological ordering of every claim
// in the graph, ties broken by id ascending (spec.md §4.3).
func (g *Graph) TopoOrder() []model.Claim {
	layers := g.topoLayers()
	claims := g.Claims()
	sort.SliceStable(claims, func(i, j int) bool {
		li, lj := layers[claims[i].ID], layers[claims[j].ID]
		if li != lj {
			return li < lj
		}
		return claims[i].ID < claims[j].ID
	})
	return claims
}

// topoLayers assigns each node its longest-path distance from a root
// (a node with no blockers), via Kahn's algorithm run layer by layer.
// Ids not reachable from any layer (shouldn't happen in an acyclic
// graph with all nodes present) default to layer 0.
func (g *Graph) topoLayers() map[int64]int {
	inDegree := make(map[int64]int, len(g.claims))
	for id := range g.claims {
		inDegree[id] = len(g.in[id])
	}

	layer := make(map[int64]int, len(g.claims))
	var frontier []int64
	for id, deg := range inDegree {
		if deg == 0 {
			frontier = append(frontier, id)
			layer[id] = 0
		}
	}
	sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })

	remaining := make(map[int64]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	for len(frontier) > 0 {
		var next []int64
		for _, id := range frontier {
			for _, blockedID := range g.out[id] {
				remaining[blockedID]--
				if l := layer[id] + 1; l > layer[blockedID] {
					layer[blockedID] = l
				}
				if remaining[blockedID] == 0 {
					next = append(next, blockedID)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		frontier = next
	}
	return layer
}
