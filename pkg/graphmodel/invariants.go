package graphmodel

import (
	"fmt"

	"github.com/ritzau/dephoist/pkg/pkgid"
)

// Violation describes a single invariant failure found by CheckRequirePromise.
type Violation struct {
	Property string // "I1" or "I3" (peer-name bindings are reported as "I3" too)
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Property, v.Detail)
}

// binding records, for one (name, path-prefix) occurrence in the original
// graph, which id served that name.
type binding struct {
	name pkgid.PackageName
	id   pkgid.PackageId
}

// CheckRequirePromise walks both the original and the hoisted graph in
// lockstep by path and verifies I2/I3 (the require promise) and I1 (no slot
// collision) hold on the hoisted graph, plus I4 (self-loops are legal, so it
// is never itself a violation). It returns every violation found. Bindings
// are compared only at id paths that exist in both graphs; a node reached in
// the hoisted graph by a path the original graph lacks (as every lifted
// node is) is not checked, nor is anything below it on that path.
func CheckRequirePromise(original, hoisted *Graph) []Violation {
	var violations []Violation

	// I1: at most one PackageName across Dependencies ∪ Workspaces, for
	// every node reachable in the hoisted graph.
	Walk(hoisted.Root, func(path Path, node *Node) {
		seen := make(map[pkgid.PackageName]bool)
		for name := range node.Dependencies {
			if seen[name] {
				violations = append(violations, Violation{"I1", fmt.Sprintf("name %q duplicated at node %q", name, node.ID)})
			}
			seen[name] = true
		}
		for name := range node.Workspaces {
			if seen[name] {
				violations = append(violations, Violation{"I1", fmt.Sprintf("name %q duplicated at node %q", name, node.ID)})
			}
			seen[name] = true
		}
	})

	// Build the original graph's binding: for every path (by node identity
	// is unsafe across two separately-imported graphs, so we key by the
	// sequence of ids from the root) record what each name/peer resolved
	// to. We then replay the same paths against the hoisted graph.
	type pathKey string
	originalBindings := make(map[pathKey]map[pkgid.PackageName]pkgid.PackageId)

	keyOf := func(path Path) pathKey {
		k := ""
		for _, n := range path {
			k += string(n.ID) + "/"
		}
		return pathKey(k)
	}

	Walk(original.Root, func(path Path, node *Node) {
		bindings := make(map[pkgid.PackageName]pkgid.PackageId)
		for name := range node.Dependencies {
			if target, ok := Resolve(path, name); ok {
				bindings[name] = target.ID
			}
		}
		for name := range node.PeerNames {
			if target, ok := Resolve(path[:len(path)-1], name); ok {
				bindings[name] = target.ID
			}
		}
		originalBindings[keyOf(path)] = bindings
	})

	Walk(hoisted.Root, func(path Path, node *Node) {
		want, ok := originalBindings[keyOf(path)]
		if !ok {
			// A node reachable at a path that did not exist in the
			// original graph cannot be checked against it. Every lifted
			// node lands on such a shortened path, so its bindings are
			// skipped here.
			return
		}
		for name, wantID := range want {
			got, ok := Resolve(path, name)
			if !ok {
				violations = append(violations, Violation{"I3", fmt.Sprintf("%q at %q no longer resolves %q (expected %q)", node.ID, keyOf(path), name, wantID)})
				continue
			}
			if got.ID != wantID {
				violations = append(violations, Violation{"I3", fmt.Sprintf("%q at %q resolves %q to %q, expected %q", node.ID, keyOf(path), name, got.ID, wantID)})
			}
		}
	})

	return violations
}
