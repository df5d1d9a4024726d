package graphmodel

import "github.com/ritzau/dephoist/pkg/pkgid"

// Graph is a rooted working graph. Root.ID is always pkgid.Root.
type Graph struct {
	Root *Node
}

// NewGraph creates an empty graph with a fresh root node.
func NewGraph() *Graph {
	return &Graph{Root: NewNode(pkgid.Root)}
}

// Path is an ancestor chain, root first, ending at the node under
// consideration (or its parent, depending on caller).
type Path []*Node

// Resolve implements the "nearest ancestor or self" lookup that both the
// require promise (I3) and the verdict procedure depend on: walk path from
// its tail toward the root and return the first node that owns name.
func Resolve(path Path, name pkgid.PackageName) (*Node, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if v, ok := path[i].Slot(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IndexOf returns the index of node within path by pointer identity, or -1.
func IndexOf(path Path, node *Node) int {
	for i, v := range path {
		if v == node {
			return i
		}
	}
	return -1
}

// Walk performs a pre-order traversal over the graph starting at root,
// calling visit(path, node) for every node reachable via Workspaces then
// Dependencies edges. path always ends with node itself. A node already on
// the current path is not re-entered (cycle guard), matching the hoister
// driver's own traversal discipline.
func Walk(root *Node, visit func(path Path, node *Node)) {
	var rec func(path Path, node *Node, onPath map[*Node]bool)
	rec = func(path Path, node *Node, onPath map[*Node]bool) {
		visit(path, node)
		onPath[node] = true
		defer delete(onPath, node)

		for _, name := range sortedNames(node.Workspaces) {
			child := node.Workspaces[name]
			if onPath[child] {
				continue
			}
			rec(append(append(Path{}, path...), child), child, onPath)
		}
		for _, name := range sortedNames(node.Dependencies) {
			child := node.Dependencies[name]
			if onPath[child] {
				continue
			}
			rec(append(append(Path{}, path...), child), child, onPath)
		}
	}
	rec(Path{root}, root, map[*Node]bool{})
}

func sortedNames(m map[pkgid.PackageName]*Node) []pkgid.PackageName {
	names := make([]pkgid.PackageName, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// Simple insertion sort keeps this dependency-free and is plenty fast
	// for the slot counts a package graph produces per node.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
