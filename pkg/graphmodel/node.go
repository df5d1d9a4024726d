package graphmodel

import "github.com/ritzau/dephoist/pkg/pkgid"

// PackageType tags a small, open-ended set of recognized node roles.
// The only value the algorithm currently inspects is Portal.
type PackageType string

// Portal marks a node installed through a portal protocol (a symlink-style
// install whose contents are managed outside the resolver). Portal children
// get top placement-class priority.
const Portal PackageType = "PORTAL"

// Node is a vertex of the working graph. Nodes may be referenced from
// multiple parents (shared subtrees, cycles); the importer preserves that
// sharing by identity, and the hoister decouples (copy-on-write clones) a
// shared node the first time a second owner needs to mutate it.
type Node struct {
	ID pkgid.PackageId

	// Dependencies maps a name to the single node currently occupying that
	// slot. At most one entry per name across Dependencies ∪ Workspaces (I1).
	Dependencies map[pkgid.PackageName]*Node

	// Workspaces holds sibling packages distinguished from regular
	// dependencies for placement-class purposes.
	Workspaces map[pkgid.PackageName]*Node

	// PeerNames is the set of names this node must be able to resolve from
	// its parent's scope rather than its own.
	PeerNames map[pkgid.PackageName]struct{}

	// PackageType is an open tagged enum; only Portal is recognized today.
	PackageType PackageType

	// HoistedTo records, for each dependency name this node used to own
	// directly that was subsequently lifted, which ancestor node now owns
	// the canonical copy. Used to reconstruct a deferred item's current
	// path during queue drain.
	HoistedTo map[pkgid.PackageName]*Node

	// Tags is an opaque pass-through slot for diagnostic callers. The
	// algorithm never reads it.
	Tags map[string]string

	// decoupled is true once this exact Node instance has been claimed as
	// the uniquely-owned copy along some path. A second parent that needs
	// to mutate an already-decoupled node must clone it instead of
	// mutating in place.
	decoupled bool
}

// NewNode creates an empty node for id.
func NewNode(id pkgid.PackageId) *Node {
	return &Node{
		ID:           id,
		Dependencies: make(map[pkgid.PackageName]*Node),
		Workspaces:   make(map[pkgid.PackageName]*Node),
		PeerNames:    make(map[pkgid.PackageName]struct{}),
		HoistedTo:    make(map[pkgid.PackageName]*Node),
	}
}

// IsDecoupled reports whether this instance is already uniquely owned along
// some path (safe to mutate in place).
func (n *Node) IsDecoupled() bool {
	return n.decoupled
}

// Claim marks this instance as decoupled without cloning it. Used by the
// first mutating visit to a shared node.
func (n *Node) Claim() {
	n.decoupled = true
}

// Clone returns a copy-on-write duplicate of n, itself already decoupled
// (uniquely owned) and carrying forward n's current dependency/workspace/
// peer/hoist state as independent maps.
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:          n.ID,
		PackageType: n.PackageType,
		decoupled:   true,
	}

	clone.Dependencies = make(map[pkgid.PackageName]*Node, len(n.Dependencies))
	for k, v := range n.Dependencies {
		clone.Dependencies[k] = v
	}

	clone.Workspaces = make(map[pkgid.PackageName]*Node, len(n.Workspaces))
	for k, v := range n.Workspaces {
		clone.Workspaces[k] = v
	}

	clone.PeerNames = make(map[pkgid.PackageName]struct{}, len(n.PeerNames))
	for k := range n.PeerNames {
		clone.PeerNames[k] = struct{}{}
	}

	clone.HoistedTo = make(map[pkgid.PackageName]*Node, len(n.HoistedTo))
	for k, v := range n.HoistedTo {
		clone.HoistedTo[k] = v
	}

	if n.Tags != nil {
		clone.Tags = make(map[string]string, len(n.Tags))
		for k, v := range n.Tags {
			clone.Tags[k] = v
		}
	}

	return clone
}

// Slot returns the node occupying name across Dependencies and Workspaces
// (Dependencies is checked first), and whether one was found. It does not
// report which of the two maps held it; a well-formed node never has name
// in both (I1).
func (n *Node) Slot(name pkgid.PackageName) (*Node, bool) {
	if v, ok := n.Dependencies[name]; ok {
		return v, true
	}
	if v, ok := n.Workspaces[name]; ok {
		return v, true
	}
	return nil, false
}

// IsEmpty reports whether the node has no remaining dependency or workspace
// edges, meaning it is a candidate for being dropped from the export walk's
// perspective as a distinct owner (all its dependencies were hoisted away).
func (n *Node) IsEmpty() bool {
	return len(n.Dependencies) == 0 && len(n.Workspaces) == 0
}
