// Package web serves the hoist visualization UI: static assets, JSON graph
// endpoints for the before/after/diff views, and an SSE trace stream so a
// browser can watch a hoist run happen live via `dephoist web`.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/lens"
	"github.com/ritzau/dephoist/pkg/logging"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// Server serves the visualization API and static UI over one mux.Router.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu     sync.RWMutex
	before *graphmodel.Graph
	after  *graphmodel.Graph
}

// NewServer creates a web server with no graphs loaded yet.
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// hoist_status: buffer last 10 events, replay only the current state.
	ssePublisher.ConfigureTopic("hoist_status", pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	// hoist_trace: replay the whole run so a client that connects mid-run
	// (or after it finishes) can still see every verdict and commit.
	ssePublisher.ConfigureTopic("hoist_trace", pubsub.TopicConfig{
		BufferSize: 500,
		ReplayAll:  true,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s
}

// Publisher exposes the server's pub/sub publisher so a hoist run can be
// wired to a diagnostics.PubsubSink and status updates.
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetGraphs stores the graph before and after a hoist run for the
// before/after/diff endpoints. Either may be nil until a run completes.
func (s *Server) SetGraphs(before, after *graphmodel.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = before
	s.after = after
}

// PublishStatus publishes a hoist_status event.
func (s *Server) PublishStatus(state, message string, step, total int) error {
	return s.publisher.Publish("hoist_status", state, pubsub.HoistStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	})
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/subscribe/hoist_status", s.handleSubscribe("hoist_status")).Methods("GET")
	s.router.HandleFunc("/api/subscribe/hoist_trace", s.handleSubscribe("hoist_trace")).Methods("GET")

	s.router.HandleFunc("/api/graph/before", s.handleGraphBefore).Methods("GET")
	s.router.HandleFunc("/api/graph/after", s.handleGraphAfter).Methods("GET")
	s.router.HandleFunc("/api/graph/diff", s.handleGraphDiff).Methods("GET")
	s.router.HandleFunc("/api/graph/depths", s.handleGraphDepths).Methods("GET")

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				log.Printf("error writing SSE event: %v", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleGraphBefore(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.before
	s.mu.RUnlock()
	writeGraph(w, g)
}

func (s *Server) handleGraphAfter(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.after
	s.mu.RUnlock()
	writeGraph(w, g)
}

func (s *Server) handleGraphDiff(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	before, after := s.before, s.after
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if after == nil {
		json.NewEncoder(w).Encode(&lens.GraphDiff{FullGraph: true})
		return
	}

	var snap *lens.GraphSnapshot
	if before != nil {
		snap = lens.Snapshot(buildGraphData(before))
	}
	diff := lens.ComputeDiff(snap, buildGraphData(after))
	json.NewEncoder(w).Encode(diff)
}

func (s *Server) handleGraphDepths(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.after
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if g == nil {
		json.NewEncoder(w).Encode(map[string]int{})
		return
	}
	depths := lens.HoistDepths(buildGraphData(g), string(pkgid.Root))
	json.NewEncoder(w).Encode(depths)
}

func writeGraph(w http.ResponseWriter, g *graphmodel.Graph) {
	w.Header().Set("Content-Type", "application/json")
	if g == nil {
		json.NewEncoder(w).Encode(&lens.GraphData{Nodes: []lens.GraphNode{}, Edges: []lens.GraphEdge{}})
		return
	}
	json.NewEncoder(w).Encode(buildGraphData(g))
}

// buildGraphData flattens a working graph into the node/edge shape the UI
// renders, deduplicating nodes visited through more than one parent.
func buildGraphData(g *graphmodel.Graph) *lens.GraphData {
	data := &lens.GraphData{Nodes: make([]lens.GraphNode, 0), Edges: make([]lens.GraphEdge, 0)}
	seen := make(map[pkgid.PackageId]bool)
	seenEdge := make(map[string]bool)

	graphmodel.Walk(g.Root, func(path graphmodel.Path, node *graphmodel.Node) {
		if !seen[node.ID] {
			seen[node.ID] = true
			nodeType := "plain"
			if node.PackageType == graphmodel.Portal {
				nodeType = "portal"
			}
			var parent string
			if len(path) >= 2 {
				parent = string(path[len(path)-2].ID)
			}
			data.Nodes = append(data.Nodes, lens.GraphNode{
				ID:     string(node.ID),
				Name:   string(pkgid.NameOf(node.ID)),
				Type:   nodeType,
				Parent: parent,
			})
		}

		addEdge := func(child *graphmodel.Node, edgeType string) {
			key := string(node.ID) + "|" + string(child.ID) + "|" + edgeType
			if seenEdge[key] {
				return
			}
			seenEdge[key] = true
			data.Edges = append(data.Edges, lens.GraphEdge{
				Source: string(node.ID),
				Target: string(child.ID),
				Type:   edgeType,
			})
		}
		for _, child := range node.Workspaces {
			addEdge(child, "workspace")
		}
		for _, child := range node.Dependencies {
			addEdge(child, "dependency")
		}
	})

	return data
}

// Start starts the web server on the given port, blocking until it exits.
// Every request is wrapped with a run id and request/response logging.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("dephoist web listening on http://localhost%s", addr)
	return http.ListenAndServe(addr, logging.RunIDMiddleware(s.router))
}
