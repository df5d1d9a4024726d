package hoist_test

import (
	"testing"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/hoist"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
)

// scenarioTrees mirrors the six scenarios exercised individually in
// scenarios_test.go, kept
// together here so CheckRequirePromise can be run over all of them without
// duplicating the hoist-and-inspect assertions each already makes.
func scenarioTrees() map[string]*importer.Package {
	b := &importer.Package{ID: "B", PeerNames: []string{"D"}}
	dx := &importer.Package{ID: "D@X"}

	return map[string]*importer.Package{
		"basic chain": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "A", Dependencies: []*importer.Package{{ID: "B"}}},
			},
		},
		"version conflict retained": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "A", Dependencies: []*importer.Package{
					{ID: "C@X", Dependencies: []*importer.Package{
						{ID: "D@X"},
						{ID: "E"},
					}},
				}},
				{ID: "C@Y"},
				{ID: "D@Y"},
			},
		},
		"popularity ranking": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "A", Dependencies: []*importer.Package{
					{ID: "B@X", Dependencies: []*importer.Package{{ID: "E@X"}}},
				}},
				{ID: "B@Y"},
				{ID: "C", Dependencies: []*importer.Package{{ID: "E@Y"}}},
				{ID: "D", Dependencies: []*importer.Package{{ID: "E@Y"}}},
			},
		},
		"peer dependency co-location": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "A", Dependencies: []*importer.Package{b, dx}},
				{ID: "D@Y"},
			},
		},
		"cyclic peer triangle flattens": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "D", Dependencies: []*importer.Package{
					{ID: "A", PeerNames: []string{"B"}},
					{ID: "B", PeerNames: []string{"C"}},
					{ID: "C", PeerNames: []string{"A"}},
				}},
			},
		},
		"deferred hoist unlocking": {
			ID: ".",
			Dependencies: []*importer.Package{
				{ID: "A", Dependencies: []*importer.Package{
					{ID: "B", PeerNames: []string{"D"}},
					{ID: "D@X"},
				}},
			},
		},
	}
}

func TestRequirePromiseHoldsAcrossScenarios(t *testing.T) {
	for name, root := range scenarioTrees() {
		t.Run(name, func(t *testing.T) {
			original, err := importer.Import(root, pkgid.NameOf)
			if err != nil {
				t.Fatalf("Import(original) error = %v", err)
			}

			hoisted, err := importer.Import(root, pkgid.NameOf)
			if err != nil {
				t.Fatalf("Import(hoisted) error = %v", err)
			}

			ranking := priority.Analyze(hoisted)
			if err := hoist.Run(hoisted, ranking, pkgid.NameOf, nil); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if violations := graphmodel.CheckRequirePromise(original, hoisted); len(violations) != 0 {
				for _, v := range violations {
					t.Errorf("%s", v.String())
				}
			}
		})
	}
}
