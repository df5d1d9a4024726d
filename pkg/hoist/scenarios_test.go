package hoist_test

import (
	"testing"

	"github.com/ritzau/dephoist/pkg/exporter"
	"github.com/ritzau/dephoist/pkg/hoist"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
)

// run imports root, hoists it, and exports the result, mirroring the
// pipeline cmd/dephoist wires end to end.
func run(t *testing.T, root *importer.Package) *importer.Package {
	t.Helper()

	g, err := importer.Import(root, pkgid.NameOf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	ranking := priority.Analyze(g)
	if err := hoist.Run(g, ranking, pkgid.NameOf, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	return exporter.Export(g)
}

func names(pkgs []*importer.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.ID
	}
	return out
}

func assertIDs(t *testing.T, got []*importer.Package, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("children = %v, want %v", names(got), want)
	}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("children = %v, want %v", names(got), want)
			return
		}
	}
}

func findDep(t *testing.T, pkgs []*importer.Package, id string) *importer.Package {
	t.Helper()
	for _, p := range pkgs {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no dependency %q among %v", id, names(pkgs))
	return nil
}

// Scenario 1: . -> A -> B  =>  .{A, B}
func TestScenarioBasicChain(t *testing.T) {
	root := &importer.Package{
		ID: ".",
		Dependencies: []*importer.Package{
			{ID: "A", Dependencies: []*importer.Package{{ID: "B"}}},
		},
	}

	out := run(t, root)
	assertIDs(t, out.Dependencies, "A", "B")
	a := findDep(t, out.Dependencies, "A")
	if len(a.Dependencies) != 0 {
		t.Errorf("A should have no remaining dependencies, got %v", names(a.Dependencies))
	}
}

// Scenario 2: . -> (A -> C@X -> {D@X, E}), C@Y, D@Y
//          => .{A{C@X, D@X}, C@Y, D@Y, E}
func TestScenarioVersionConflictRetained(t *testing.T) {
	root := &importer.Package{
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
	}

	out := run(t, root)
	assertIDs(t, out.Dependencies, "A", "C@Y", "D@Y", "E")

	a := findDep(t, out.Dependencies, "A")
	assertIDs(t, a.Dependencies, "C@X", "D@X")
}

// Scenario 3: . -> (A -> B@X -> E@X), B@Y, (C -> E@Y), (D -> E@Y)
//          => .{A{B@X, E@X}, B@Y, C, D, E@Y} (E@Y wins the root slot).
func TestScenarioPopularityRanking(t *testing.T) {
	root := &importer.Package{
		ID: ".",
		Dependencies: []*importer.Package{
			{ID: "A", Dependencies: []*importer.Package{
				{ID: "B@X", Dependencies: []*importer.Package{{ID: "E@X"}}},
			}},
			{ID: "B@Y"},
			{ID: "C", Dependencies: []*importer.Package{{ID: "E@Y"}}},
			{ID: "D", Dependencies: []*importer.Package{{ID: "E@Y"}}},
		},
	}

	out := run(t, root)
	rootIDs := names(out.Dependencies)
	hasEY := false
	for _, n := range rootIDs {
		if n == "E@Y" {
			hasEY = true
		}
	}
	if !hasEY {
		t.Fatalf("root children = %v, want E@Y present at root", rootIDs)
	}

	c := findDep(t, out.Dependencies, "C")
	if len(c.Dependencies) != 0 {
		t.Errorf("C should have no remaining dependencies, got %v", names(c.Dependencies))
	}
}

// Scenario 4: . -> (A -> {B peer->D, D@X}), D@Y  => unchanged.
func TestScenarioPeerDependencyCoLocation(t *testing.T) {
	b := &importer.Package{ID: "B", PeerNames: []string{"D"}}
	dx := &importer.Package{ID: "D@X"}
	root := &importer.Package{
		ID: ".",
		Dependencies: []*importer.Package{
			{ID: "A", Dependencies: []*importer.Package{b, dx}},
			{ID: "D@Y"},
		},
	}

	out := run(t, root)
	assertIDs(t, out.Dependencies, "A", "D@Y")

	a := findDep(t, out.Dependencies, "A")
	assertIDs(t, a.Dependencies, "B", "D@X")
}

// Scenario 5: . -> (D -> {A peer->B, B peer->C, C peer->A})  => . {A, B, C, D}
func TestScenarioCyclicPeerTriangleFlattens(t *testing.T) {
	root := &importer.Package{
		ID: ".",
		Dependencies: []*importer.Package{
			{ID: "D", Dependencies: []*importer.Package{
				{ID: "A", PeerNames: []string{"B"}},
				{ID: "B", PeerNames: []string{"C"}},
				{ID: "C", PeerNames: []string{"A"}},
			}},
		},
	}

	out := run(t, root)
	assertIDs(t, out.Dependencies, "A", "B", "C", "D")
}

// Scenario 6: . -> (A -> {B peer->D, D@X})  => . {A, B, D@X}
// (no competing D version, so once D@X rises B becomes hoistable too).
func TestScenarioDeferredHoistUnlocking(t *testing.T) {
	root := &importer.Package{
		ID: ".",
		Dependencies: []*importer.Package{
			{ID: "A", Dependencies: []*importer.Package{
				{ID: "B", PeerNames: []string{"D"}},
				{ID: "D@X"},
			}},
		},
	}

	out := run(t, root)
	assertIDs(t, out.Dependencies, "A", "B", "D@X")

	a := findDep(t, out.Dependencies, "A")
	if len(a.Dependencies) != 0 {
		t.Errorf("A should have no remaining dependencies, got %v", names(a.Dependencies))
	}
}
