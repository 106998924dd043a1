package pathengine

import (
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

// KShortestSPaths finds up to k shortest s-paths between a and b using a
// Yen-style adaptation (spec.md §4.2): find the shortest path, then for
// each node along the committed paths generate spur paths that forbid the
// previously-used prefix edges, keeping a candidate pool sorted by length
// then lexicographic edge-id tuple. Stops at k paths or when candidates
// run out.
func KShortestSPaths(store *hypergraph.Store, a, b string, k, s, maxHops int) PathResult {
	first := ShortestSPath(store, a, b, s)
	if !first.Found {
		return PathResult{Found: false}
	}

	accepted := [][]*hypergraph.HyperEdge{first.Paths[0]}
	var candidates [][]*hypergraph.HyperEdge

	for len(accepted) < k {
		lastAccepted := accepted[len(accepted)-1]
		for i := 0; i < len(lastAccepted); i++ {
			spurNode := spurNodeAt(lastAccepted, i, a)
			rootPath := lastAccepted[:i]

			forbidden := make(map[string]struct{})
			for _, p := range accepted {
				if len(p) > i && samePrefix(p, rootPath) {
					forbidden[p[i].ID] = struct{}{}
				}
			}

			spur := shortestAvoiding(store, spurNode, b, s, forbidden, rootPath)
			if spur == nil {
				continue
			}
			if len(rootPath)+len(spur) > maxHops && maxHops > 0 {
				continue
			}
			total := append(append([]*hypergraph.HyperEdge(nil), rootPath...), spur...)
			if !pathAlreadyKnown(total, accepted) && !pathAlreadyKnown(total, candidates) {
				candidates = append(candidates, total)
			}
		}

		if len(candidates) == 0 {
			break
		}
		sort.Slice(candidates, func(i, j int) bool {
			if len(candidates[i]) != len(candidates[j]) {
				return len(candidates[i]) < len(candidates[j])
			}
			return pathKeyLess(candidates[i], candidates[j])
		})
		accepted = append(accepted, candidates[0])
		candidates = candidates[1:]
	}

	if len(accepted) > k {
		accepted = accepted[:k]
	}
	return PathResult{Found: true, Paths: accepted}
}

func spurNodeAt(path []*hypergraph.HyperEdge, i int, start string) string {
	if i == 0 {
		return start
	}
	// The spur node is a node shared between path[i-1] and path[i].
	shared := path[i-1].Intersection(path[i])
	if len(shared) > 0 {
		return shared[0]
	}
	return start
}

func samePrefix(p, prefix []*hypergraph.HyperEdge) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if p[i].ID != prefix[i].ID {
			return false
		}
	}
	return true
}

func pathAlreadyKnown(p []*hypergraph.HyperEdge, known [][]*hypergraph.HyperEdge) bool {
	for _, k := range known {
		if len(k) != len(p) {
			continue
		}
		match := true
		for i := range k {
			if k[i].ID != p[i].ID {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// shortestAvoiding is ShortestSPath restricted to never step onto an edge
// in forbidden or revisit an edge already used in usedPrefix.
func shortestAvoiding(store *hypergraph.Store, a, b string, s int, forbidden map[string]struct{}, usedPrefix []*hypergraph.HyperEdge) []*hypergraph.HyperEdge {
	if !store.HasNode(a) || !store.HasNode(b) {
		return nil
	}
	if a == b {
		return []*hypergraph.HyperEdge{}
	}

	usedIDs := make(map[string]struct{}, len(usedPrefix))
	for _, e := range usedPrefix {
		usedIDs[e.ID] = struct{}{}
	}

	start := store.IncidentEdges(a)
	sortEdgesByID(start)

	type frame struct{ path []*hypergraph.HyperEdge }
	visited := make(map[string]struct{})
	var frontier []frame
	for _, e := range start {
		if _, f := forbidden[e.ID]; f {
			continue
		}
		if _, u := usedIDs[e.ID]; u {
			continue
		}
		visited[e.ID] = struct{}{}
		frontier = append(frontier, frame{path: []*hypergraph.HyperEdge{e}})
	}
	sort.Slice(frontier, func(i, j int) bool { return pathKeyLess(frontier[i].path, frontier[j].path) })

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		last := cur.path[len(cur.path)-1]
		if last.ContainsNode(b) {
			return cur.path
		}
		var next []frame
		for _, nid := range last.Nodes() {
			for _, candidate := range store.IncidentEdges(nid) {
				if _, seen := visited[candidate.ID]; seen {
					continue
				}
				if !SConnected(last, candidate, s) {
					continue
				}
				visited[candidate.ID] = struct{}{}
				np := append(append([]*hypergraph.HyperEdge(nil), cur.path...), candidate)
				next = append(next, frame{path: np})
			}
		}
		sort.Slice(next, func(i, j int) bool { return pathKeyLess(next[i].path, next[j].path) })
		frontier = append(frontier, next...)
		sort.SliceStable(frontier, func(i, j int) bool {
			if len(frontier[i].path) != len(frontier[j].path) {
				return len(frontier[i].path) < len(frontier[j].path)
			}
			return pathKeyLess(frontier[i].path, frontier[j].path)
		})
	}
	return nil
}
