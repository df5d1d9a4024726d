// Package diagnostics implements the "dump" trace sinks a hoist run can be
// wired to: a colorized console report and a pub/sub publisher feeding the
// web UI's live trace stream. Both implement pkg/hoist.Sink.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/pubsub"
	"github.com/ritzau/dephoist/pkg/verdict"
)

// ConsoleSink prints every verdict and commit as it happens, colored by
// outcome: green for a commit, yellow for a deferral, red for a permanent
// refusal, cyan for structural (path) information.
type ConsoleSink struct {
	out    io.Writer
	bold   *color.Color
	cyan   *color.Color
	yellow *color.Color
	red    *color.Color
	green  *color.Color
}

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		out:    w,
		bold:   color.New(color.Bold),
		cyan:   color.New(color.FgCyan),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
	}
}

func (s *ConsoleSink) Verdict(path graphmodel.Path, name pkgid.PackageName, v verdict.Verdict) {
	loc := s.cyan.Sprint(pathString(path))
	switch v.Kind {
	case verdict.Yes:
		s.green.Fprintf(s.out, "  YES    %s / %s -> depth %d\n", loc, name, v.TargetIndex)
	case verdict.No:
		s.red.Fprintf(s.out, "  NO     %s / %s\n", loc, name)
	case verdict.Later:
		s.yellow.Fprintf(s.out, "  LATER  %s / %s -> retry at depth %d\n", loc, name, v.DeferDepth)
	case verdict.Depends:
		s.yellow.Fprintf(s.out, "  DEPENDS %s / %s -> with %v\n", loc, name, v.DependsOn)
	}
}

func (s *ConsoleSink) Hoisted(path graphmodel.Path, name pkgid.PackageName, target *graphmodel.Node) {
	s.bold.Fprintf(s.out, "HOISTED  %s / %s -> %s\n", pathString(path), name, target.ID)
}

// PubsubSink republishes every event on the "hoist_trace" topic as a
// pubsub.HoistTraceEntry, letting a web client render the dump live.
type PubsubSink struct {
	publisher pubsub.Publisher
}

// NewPubsubSink creates a sink publishing through p.
func NewPubsubSink(p pubsub.Publisher) *PubsubSink {
	return &PubsubSink{publisher: p}
}

func (s *PubsubSink) Verdict(path graphmodel.Path, name pkgid.PackageName, v verdict.Verdict) {
	s.publish("verdict", path, name, verdictDetail(v))
}

func (s *PubsubSink) Hoisted(path graphmodel.Path, name pkgid.PackageName, target *graphmodel.Node) {
	s.publish("hoisted", path, name, fmt.Sprintf("-> %s", target.ID))
}

func (s *PubsubSink) publish(kind string, path graphmodel.Path, name pkgid.PackageName, detail string) {
	entry := pubsub.HoistTraceEntry{
		Kind:   kind,
		Path:   pathString(path),
		Name:   string(name),
		Detail: detail,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = s.publisher.Publish("hoist_trace", kind, json.RawMessage(data))
}

func verdictDetail(v verdict.Verdict) string {
	switch v.Kind {
	case verdict.Yes:
		return fmt.Sprintf("yes -> depth %d", v.TargetIndex)
	case verdict.No:
		return "no"
	case verdict.Later:
		return fmt.Sprintf("later -> depth %d", v.DeferDepth)
	case verdict.Depends:
		return fmt.Sprintf("depends on %v", v.DependsOn)
	default:
		return "unknown"
	}
}

// Tee fans a hoist run's trace out to multiple sinks, e.g. a ConsoleSink for
// terminal output and a PubsubSink for the web UI simultaneously.
type Tee struct {
	sinks []interface {
		Verdict(graphmodel.Path, pkgid.PackageName, verdict.Verdict)
		Hoisted(graphmodel.Path, pkgid.PackageName, *graphmodel.Node)
	}
}

// NewTee combines sinks into one.
func NewTee(sinks ...interface {
	Verdict(graphmodel.Path, pkgid.PackageName, verdict.Verdict)
	Hoisted(graphmodel.Path, pkgid.PackageName, *graphmodel.Node)
}) *Tee {
	return &Tee{sinks: sinks}
}

func (t *Tee) Verdict(path graphmodel.Path, name pkgid.PackageName, v verdict.Verdict) {
	for _, s := range t.sinks {
		s.Verdict(path, name, v)
	}
}

func (t *Tee) Hoisted(path graphmodel.Path, name pkgid.PackageName, target *graphmodel.Node) {
	for _, s := range t.sinks {
		s.Hoisted(path, name, target)
	}
}

func pathString(path graphmodel.Path) string {
	ids := make([]string, len(path))
	for i, n := range path {
		ids[i] = string(n.ID)
	}
	return strings.Join(ids, ".")
}
