package cycles

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ritzau/dephoist/pkg/pkgid"
)

func TestSCCsFindsPeerTriangle(t *testing.T) {
	edges := map[pkgid.PackageName][]pkgid.PackageName{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {},
	}
	nodes := []pkgid.PackageName{"A", "B", "C", "D"}

	groups := SCCs(nodes, func(n pkgid.PackageName) []pkgid.PackageName { return edges[n] })
	if len(groups) != 1 {
		t.Fatalf("expected 1 cycle group, got %d: %v", len(groups), groups)
	}
	sort.Slice(groups[0], func(i, j int) bool { return groups[0][i] < groups[0][j] })
	want := []pkgid.PackageName{"A", "B", "C"}
	if !reflect.DeepEqual(groups[0], want) {
		t.Errorf("cycle group = %v, want %v", groups[0], want)
	}
}

func TestSCCsIgnoresAcyclicGraph(t *testing.T) {
	edges := map[pkgid.PackageName][]pkgid.PackageName{
		"A": {"B"},
		"B": {"C"},
		"C": {},
	}
	nodes := []pkgid.PackageName{"A", "B", "C"}

	groups := SCCs(nodes, func(n pkgid.PackageName) []pkgid.PackageName { return edges[n] })
	if len(groups) != 0 {
		t.Errorf("expected no cycles, got %v", groups)
	}
}

func TestSCCsFindsSelfLoop(t *testing.T) {
	edges := map[pkgid.PackageName][]pkgid.PackageName{
		"A": {"A"},
	}
	nodes := []pkgid.PackageName{"A"}

	groups := SCCs(nodes, func(n pkgid.PackageName) []pkgid.PackageName { return edges[n] })
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0] != "A" {
		t.Errorf("expected single self-loop group [A], got %v", groups)
	}
}
