package lens

import "fmt"

// GraphDiff is the difference between a graph before and after a hoist run.
type GraphDiff struct {
	RemovedEdges []string    `json:"removedEdges"` // edge keys, "source|target"
	AddedEdges   []GraphEdge `json:"addedEdges"`
	RemovedNodes []string    `json:"removedNodes"` // node ids no longer reachable
	FullGraph    bool        `json:"fullGraph"`
}

// GraphSnapshot is an indexed graph, cheap to diff against a later one.
type GraphSnapshot struct {
	Nodes map[string]GraphNode
	Edges map[string]GraphEdge
}

// Snapshot indexes graph by node id and edge key.
func Snapshot(graph *GraphData) *GraphSnapshot {
	snap := &GraphSnapshot{
		Nodes: make(map[string]GraphNode, len(graph.Nodes)),
		Edges: make(map[string]GraphEdge, len(graph.Edges)),
	}
	for _, n := range graph.Nodes {
		snap.Nodes[n.ID] = n
	}
	for _, e := range graph.Edges {
		snap.Edges[edgeKey(e.Source, e.Target)] = e
	}
	return snap
}

// ComputeDiff reports which edges a hoist run added or removed, and which
// node ids present in "before" are absent from "after".
func ComputeDiff(before *GraphSnapshot, after *GraphData) *GraphDiff {
	if before == nil {
		return &GraphDiff{AddedEdges: after.Edges, FullGraph: true}
	}

	diff := &GraphDiff{
		RemovedEdges: make([]string, 0),
		AddedEdges:   make([]GraphEdge, 0),
		RemovedNodes: make([]string, 0),
	}

	afterEdges := make(map[string]GraphEdge, len(after.Edges))
	for _, e := range after.Edges {
		afterEdges[edgeKey(e.Source, e.Target)] = e
	}

	for key := range before.Edges {
		if _, ok := afterEdges[key]; !ok {
			diff.RemovedEdges = append(diff.RemovedEdges, key)
		}
	}
	for key, edge := range afterEdges {
		if _, ok := before.Edges[key]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, edge)
		}
	}

	afterNodes := make(map[string]bool, len(after.Nodes))
	for _, n := range after.Nodes {
		afterNodes[n.ID] = true
	}
	for id := range before.Nodes {
		if !afterNodes[id] {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	return diff
}

func edgeKey(source, target string) string {
	return fmt.Sprintf("%s|%s", source, target)
}
