// Package priority computes, for every package name in a working graph, an
// ordered list of candidate ids ranked by desirability of occupying that
// name at ancestor slots.
package priority

import (
	"sort"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/pkgid"
)

// Ranking maps a PackageName to its candidate ids, most-desired first. The
// index of an id within its group is that id's priority depth.
type Ranking map[pkgid.PackageName][]pkgid.PackageId

// DepthOf returns the priority depth of id within name's ranking, or -1 if
// id never occurs under that name.
func (r Ranking) DepthOf(name pkgid.PackageName, id pkgid.PackageId) int {
	for i, candidate := range r[name] {
		if candidate == id {
			return i
		}
	}
	return -1
}

type occurrence struct {
	placementClass int
	parents        map[pkgid.PackageId]struct{}
}

// Analyze computes the ranking for the whole graph rooted at g.Root. Names
// are already baked into the working graph's slot keys by the importer, so
// no NameFunc is needed here; it exists on the sibling importer/exporter
// APIs, not this one.
func Analyze(g *graphmodel.Graph) Ranking {
	return analyzeFrom(g.Root)
}

// AnalyzeSubgraph computes a local ranking over the subgraph reachable from
// root, for a workspace to use as a more accurate fallback-eligible
// ranking than the global one.
func AnalyzeSubgraph(root *graphmodel.Node) Ranking {
	return analyzeFrom(root)
}

func analyzeFrom(root *graphmodel.Node) Ranking {
	byID := make(map[pkgid.PackageId]*occurrence)
	byName := make(map[pkgid.PackageName]map[pkgid.PackageId]struct{})

	touch := func(id pkgid.PackageId, name pkgid.PackageName, class int, parent pkgid.PackageId) {
		occ, ok := byID[id]
		if !ok {
			occ = &occurrence{parents: make(map[pkgid.PackageId]struct{})}
			byID[id] = occ
		}
		if class > occ.placementClass {
			occ.placementClass = class
		}
		occ.parents[parent] = struct{}{}

		if byName[name] == nil {
			byName[name] = make(map[pkgid.PackageId]struct{})
		}
		byName[name][id] = struct{}{}
	}

	onPath := map[*graphmodel.Node]bool{}
	var walk func(path graphmodel.Path, node *graphmodel.Node, viaWorkspace bool)
	walk = func(path graphmodel.Path, node *graphmodel.Node, viaWorkspace bool) {
		onPath[node] = true
		defer delete(onPath, node)

		// Placement class of node's children: 2 under a portal, 1 under a
		// node reached via a workspace edge, 0 otherwise.
		class := 0
		if viaWorkspace {
			class = 1
		}
		if node.PackageType == graphmodel.Portal {
			class = 2
		}

		for name, child := range node.Workspaces {
			touch(child.ID, name, class, node.ID)
			if !onPath[child] {
				walk(append(append(graphmodel.Path{}, path...), child), child, true)
			}
		}
		for name, child := range node.Dependencies {
			touch(child.ID, name, class, node.ID)
			if !onPath[child] {
				walk(append(append(graphmodel.Path{}, path...), child), child, false)
			}
		}

		// Peer-induced usage: v's peer name p resolves, starting from v's
		// parent scope, to some ancestor's dependency d; v itself counts
		// as a parent of d's popularity, not v's own parent. The walk
		// stops at the first (nearest) ancestor match.
		if len(path) >= 2 {
			parentScope := path[:len(path)-1]
			for peerName := range node.PeerNames {
				if target, ok := graphmodel.Resolve(parentScope, peerName); ok {
					touch(target.ID, peerName, 0, node.ID)
				}
			}
		}
	}
	walk(graphmodel.Path{root}, root, false)

	ranking := make(Ranking, len(byName))
	for name, ids := range byName {
		list := make([]pkgid.PackageId, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		sort.Slice(list, func(i, j int) bool {
			oi, oj := byID[list[i]], byID[list[j]]
			if oi.placementClass != oj.placementClass {
				return oi.placementClass > oj.placementClass
			}
			if len(oi.parents) != len(oj.parents) {
				return len(oi.parents) > len(oj.parents)
			}
			return list[i] < list[j]
		})
		ranking[name] = list
	}

	return ranking
}
