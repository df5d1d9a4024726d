// Package cycles finds strongly connected components in the small directed
// graphs the hoister builds out of peer-dependency references, using
// Tarjan's algorithm the same way the teacher's file-dependency-cycle
// detector does, but over gonum node ids derived from PackageNames instead
// of file paths.
package cycles

import (
	"sort"

	"github.com/ritzau/dephoist/pkg/pkgid"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// SCCs returns every strongly connected component of size greater than one
// among nodes, where successors(n) gives n's outgoing edges, followed by a
// single-member group for every node that lists itself as a successor. A group
// returned here is a cycle that must be resolved jointly during the
// peer-order pre-sort, since a cycle of peers can only be broken arbitrarily.
func SCCs(nodes []pkgid.PackageName, successors func(pkgid.PackageName) []pkgid.PackageName) [][]pkgid.PackageName {
	idOf := make(map[pkgid.PackageName]int64, len(nodes))
	nameOf := make(map[int64]pkgid.PackageName, len(nodes))
	for i, n := range nodes {
		idOf[n] = int64(i)
		nameOf[int64(i)] = n
	}

	g := simple.NewDirectedGraph()
	for _, n := range nodes {
		g.AddNode(simple.Node(idOf[n]))
	}
	for _, n := range nodes {
		for _, succ := range successors(n) {
			if _, ok := idOf[succ]; !ok {
				continue // successor outside the batch under consideration
			}
			if idOf[n] == idOf[succ] {
				continue // self-loops are handled separately below
			}
			if !g.HasEdgeFromTo(idOf[n], idOf[succ]) {
				g.SetEdge(g.NewEdge(g.Node(idOf[n]), g.Node(idOf[succ])))
			}
		}
	}

	t := newTarjanSCC(g)
	rawSCCs := t.findSCCs()

	groups := make([][]pkgid.PackageName, 0, len(rawSCCs))
	for _, scc := range rawSCCs {
		group := make([]pkgid.PackageName, 0, len(scc))
		for _, id := range scc {
			group = append(group, nameOf[id])
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		groups = append(groups, group)
	}

	// Also treat a self-loop (n depends on itself as a peer) as its own
	// single-member cycle group.
	for _, n := range nodes {
		for _, succ := range successors(n) {
			if succ == n {
				groups = append(groups, []pkgid.PackageName{n})
				break
			}
		}
	}

	return groups
}

// tarjanSCC finds all strongly connected components using Tarjan's algorithm.
type tarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjanSCC(g graph.Directed) *tarjanSCC {
	return &tarjanSCC{
		graph:   g,
		stack:   make([]int64, 0),
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
		sccs:    make([][]int64, 0),
	}
}

func (t *tarjanSCC) findSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		if _, visited := t.indices[node.ID()]; !visited {
			t.strongConnect(node.ID())
		}
	}
	return t.sccs
}

func (t *tarjanSCC) strongConnect(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	successors := t.graph.From(nodeID)
	for successors.Next() {
		successorID := successors.Node().ID()

		if _, visited := t.indices[successorID]; !visited {
			t.strongConnect(successorID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[successorID])
		} else if t.onStack[successorID] {
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[successorID])
		}
	}

	if t.lowLink[nodeID] == t.indices[nodeID] {
		scc := make([]int64, 0)
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
