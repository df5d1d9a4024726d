// Package exporter converts a graphmodel.Graph back into the external
// Package tree, in canonical (alphabetical) child order.
package exporter

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/pkgid"
)

// Export walks g and emits an external tree. Each node is emitted at the
// first path on which it appears (DFS order); HoistedTo bookkeeping is
// never emitted.
func Export(g *graphmodel.Graph) *importer.Package {
	emitted := make(map[*graphmodel.Node]*importer.Package)
	return exportNode(g.Root, emitted)
}

func exportNode(n *graphmodel.Node, emitted map[*graphmodel.Node]*importer.Package) *importer.Package {
	if pkg, ok := emitted[n]; ok {
		return pkg
	}

	pkg := &importer.Package{ID: string(n.ID)}
	if n.PackageType != "" {
		pkg.PackageType = string(n.PackageType)
	}
	for name := range n.PeerNames {
		pkg.PeerNames = append(pkg.PeerNames, string(name))
	}
	sort.Strings(pkg.PeerNames)

	// Register before recursing so self-referential edges (I4) round-trip
	// as the same pointer identity rather than infinitely unrolling.
	emitted[n] = pkg

	pkg.Dependencies = exportChildren(n.Dependencies, emitted)
	pkg.Workspaces = exportChildren(n.Workspaces, emitted)

	return pkg
}

func exportChildren(children map[pkgid.PackageName]*graphmodel.Node, emitted map[*graphmodel.Node]*importer.Package) []*importer.Package {
	if len(children) == 0 {
		return nil
	}

	names := make([]pkgid.PackageName, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	out := make([]*importer.Package, 0, len(names))
	for _, name := range names {
		out = append(out, exportNode(children[name], emitted))
	}
	// Canonical order is by id, not by slot name, so re-sort the emitted
	// packages themselves.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Encode writes pkg as JSON to w.
func Encode(w io.Writer, pkg *importer.Package) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pkg)
}
