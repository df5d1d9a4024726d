package lens

import "testing"

func TestHoistDepths(t *testing.T) {
	graph := &GraphData{
		Nodes: []GraphNode{{ID: "."}, {ID: "A@1"}, {ID: "B@1"}, {ID: "C@1"}},
		Edges: []GraphEdge{
			{Source: ".", Target: "A@1"},
			{Source: ".", Target: "B@1"},
			{Source: "A@1", Target: "C@1"},
		},
	}

	depths := HoistDepths(graph, ".")

	want := map[string]int{".": 0, "A@1": 1, "B@1": 1, "C@1": 2}
	for id, d := range want {
		if depths[id] != d {
			t.Errorf("depth[%s] = %d, want %d", id, depths[id], d)
		}
	}
}

func TestComputeDiffReportsHoistedEdge(t *testing.T) {
	before := &GraphData{
		Nodes: []GraphNode{{ID: "."}, {ID: "A@1"}, {ID: "C@1"}},
		Edges: []GraphEdge{
			{Source: ".", Target: "A@1"},
			{Source: "A@1", Target: "C@1"},
		},
	}
	after := &GraphData{
		Nodes: []GraphNode{{ID: "."}, {ID: "A@1"}, {ID: "C@1"}},
		Edges: []GraphEdge{
			{Source: ".", Target: "A@1"},
			{Source: ".", Target: "C@1"},
		},
	}

	diff := ComputeDiff(Snapshot(before), after)

	if len(diff.RemovedEdges) != 1 || diff.RemovedEdges[0] != "A@1|C@1" {
		t.Errorf("RemovedEdges = %v, want [A@1|C@1]", diff.RemovedEdges)
	}
	if len(diff.AddedEdges) != 1 || diff.AddedEdges[0].Target != "C@1" {
		t.Errorf("AddedEdges = %v, want one edge to C@1", diff.AddedEdges)
	}
	if len(diff.RemovedNodes) != 0 {
		t.Errorf("RemovedNodes = %v, want none", diff.RemovedNodes)
	}
}

func TestComputeDiffNoBeforeIsFullGraph(t *testing.T) {
	after := &GraphData{Nodes: []GraphNode{{ID: "."}}, Edges: []GraphEdge{}}
	diff := ComputeDiff(nil, after)
	if !diff.FullGraph {
		t.Error("expected FullGraph = true when before is nil")
	}
}
