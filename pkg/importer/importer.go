// Package importer converts the external nested Package tree into a
// graphmodel.Graph, preserving input sharing by identity.
package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/pkgid"
)

// Package mirrors the external wire shape for a package tree node.
type Package struct {
	ID           string     `json:"id"`
	Dependencies []*Package `json:"dependencies,omitempty"`
	Workspaces   []*Package `json:"workspaces,omitempty"`
	PeerNames    []string   `json:"peerNames,omitempty"`
	PackageType  string     `json:"packageType,omitempty"`
}

// NameFunc derives a PackageName from a PackageId. Callers normally pass
// pkgid.NameOf; tests may substitute a stub.
type NameFunc func(pkgid.PackageId) pkgid.PackageName

// Decode parses r as a Package tree.
func Decode(r io.Reader) (*Package, error) {
	var pkg Package
	dec := json.NewDecoder(r)
	if err := dec.Decode(&pkg); err != nil {
		return nil, fmt.Errorf("decoding package tree: %w", err)
	}
	return &pkg, nil
}

// Import converts root into a working graph. Children sharing identity in
// the input (the resolver reuses the same *Package for deduplicated
// instances) are preserved as shared *graphmodel.Node instances via a
// seen-map keyed by the input node's pointer. Two distinct children of one
// parent sharing a name is reported as *graphmodel.DuplicateNameError.
func Import(root *Package, nameOf NameFunc) (*graphmodel.Graph, error) {
	seen := make(map[*Package]*graphmodel.Node)

	rootNode, err := importNode(root, seen, nameOf)
	if err != nil {
		return nil, err
	}
	rootNode.ID = pkgid.Root

	return &graphmodel.Graph{Root: rootNode}, nil
}

func importNode(pkg *Package, seen map[*Package]*graphmodel.Node, nameOf NameFunc) (*graphmodel.Node, error) {
	if node, ok := seen[pkg]; ok {
		return node, nil
	}

	node := graphmodel.NewNode(pkgid.PackageId(pkg.ID))
	if pkg.PackageType == string(graphmodel.Portal) {
		node.PackageType = graphmodel.Portal
	}
	for _, peer := range pkg.PeerNames {
		node.PeerNames[pkgid.PackageName(peer)] = struct{}{}
	}

	// Register before recursing so a self-referential edge (a child that is
	// the very same input pointer as pkg) resolves back to this node.
	seen[pkg] = node

	if err := importSlots(node, pkg.Dependencies, node.Dependencies, seen, nameOf); err != nil {
		return nil, err
	}
	if err := importSlots(node, pkg.Workspaces, node.Workspaces, seen, nameOf); err != nil {
		return nil, err
	}

	// I1 must already hold across the two disjoint input lists.
	for name := range node.Dependencies {
		if _, clash := node.Workspaces[name]; clash {
			return nil, &graphmodel.DuplicateNameError{Parent: pkg.ID, Name: string(name)}
		}
	}

	return node, nil
}

func importSlots(parent *graphmodel.Node, children []*Package, into map[pkgid.PackageName]*graphmodel.Node, seen map[*Package]*graphmodel.Node, nameOf NameFunc) error {
	for _, child := range children {
		name := nameOf(pkgid.PackageId(child.ID))
		if _, dup := into[name]; dup {
			return &graphmodel.DuplicateNameError{Parent: string(parent.ID), Name: string(name)}
		}

		childNode, err := importNode(child, seen, nameOf)
		if err != nil {
			return err
		}
		into[name] = childNode
	}
	return nil
}
