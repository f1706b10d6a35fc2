package graph

// color states for the standard three-colour DFS cycle check.
const (
	white = iota // unvisited
	gray         // on the current DFS stack
	black        // fully explored
)

// detectCycle runs a three-colour DFS over adj, restricted to the given
// node ids, and reports the first back-edge found as a cycle path
// (spec.md §4.3: "Cycle detection is performed on the prospective
// adjacency ... using a standard DFS colouring; on detection, the
// offending back-edge is reported"). Grounded on the corpus's
// compiler.AnalyzeCycles, simplified from Tarjan-SCC-with-warnings to a
// plain DFS hard-reject since Roadmap treats any cycle as fatal rather
// than an advisory.
func detectCycle(adj map[int64][]int64, nodes []int64) (bool, []int64) {
	color := make(map[int64]int, len(nodes))
	parent := make(map[int64]int64, len(nodes))

	var cyclePath []int64
	var visit func(v int64) bool
	visit = func(v int64) bool {
		color[v] = gray
		for _, w := range adj[v] {
			switch color[w] {
			case white:
				parent[w] = v
				if visit(w) {
					return true
				}
			case gray:
				cyclePath = reconstructPath(parent, v, w)
				return true
			case black:
				// already fully explored, no cycle through here
			}
		}
		color[v] = black
		return false
	}

	for _, n := range nodes {
		if color[n] == white {
			if visit(n) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// reconstructPath walks parent pointers from the back-edge's tail v up
// to its head w, then appends w again to close the cycle, producing a
// path like [w, x, y, w].
func reconstructPath(parent map[int64]int64, v, w int64) []int64 {
	path := []int64{v}
	cur := v
	for cur != w {
		p, ok := parent[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	// reverse so the path reads head-to-tail
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	path = append(path, w)
	return path
}
