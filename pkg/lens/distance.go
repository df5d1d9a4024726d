// Package lens builds the visualization graphs the web UI renders: the
// before/after node-edge graphs themselves, the diff between them, and each
// node's hoist depth (distance from root).
package lens

// GraphNode is one package instance in a visualization graph.
type GraphNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "plain", "workspace", "portal"
	Parent string `json:"parent,omitempty"`
}

// GraphEdge is one dependency edge in a visualization graph.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // "dependency", "workspace", "peer"
}

// GraphData is a full node-edge graph ready to hand to the browser.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// HoistDepths computes, for every node, its shortest distance in edges from
// the root. A node reachable via more than one path (a shared subtree, or a
// node that was hoisted to several parents' shared ancestor) gets the
// shortest of them.
func HoistDepths(graph *GraphData, rootID string) map[string]int {
	depths := map[string]int{rootID: 0}
	adjacency := buildAdjacency(graph)

	queue := []string{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[cur] {
			if _, seen := depths[next]; seen {
				continue
			}
			depths[next] = depths[cur] + 1
			queue = append(queue, next)
		}
	}

	return depths
}

func buildAdjacency(graph *GraphData) map[string][]string {
	adjacency := make(map[string][]string)
	for _, edge := range graph.Edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
	}
	return adjacency
}
