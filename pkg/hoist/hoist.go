// Package hoist implements the hoister driver: a pre-order DFS over the
// working graph that asks pkg/verdict about every dependency edge, commits
// or defers each one, and drains the priority-indexed deferral queue until
// it is empty.
package hoist

import (
	"sort"

	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
	"github.com/ritzau/dephoist/pkg/verdict"
)

// NameFunc splits a PackageId into its PackageName. Path reconstruction
// during queue drain needs it to turn a stored id back into the slot name
// that once held it; kept as an injected value (rather than importing
// pkg/pkgid directly) so this package stays decoupled from any particular
// id scheme.
type NameFunc func(pkgid.PackageId) pkgid.PackageName

// Sink receives a trace of verdicts and commits as the driver runs. It backs
// the "dump" diagnostic option; pass NopSink to discard.
type Sink interface {
	Verdict(path graphmodel.Path, name pkgid.PackageName, v verdict.Verdict)
	Hoisted(path graphmodel.Path, name pkgid.PackageName, target *graphmodel.Node)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Verdict(graphmodel.Path, pkgid.PackageName, verdict.Verdict)   {}
func (NopSink) Hoisted(graphmodel.Path, pkgid.PackageName, *graphmodel.Node) {}

type queueEntry struct {
	pathIDs []pkgid.PackageId
	name    pkgid.PackageName
}

// Run performs the full hoist over g in place, given a priority ranking
// computed by pkg/priority. Returns a graphmodel.UnreachableError if a
// deferred item's path cannot be reconstructed during drain.
func Run(g *graphmodel.Graph, ranking priority.Ranking, nameOf NameFunc, sink Sink) error {
	if sink == nil {
		sink = NopSink{}
	}
	d := &driver{ranking: ranking, nameOf: nameOf, sink: sink, queue: map[int][]queueEntry{}}

	g.Root.Claim()
	onPath := map[*graphmodel.Node]bool{g.Root: true}
	if err := d.visit(graphmodel.Path{g.Root}, onPath); err != nil {
		return err
	}
	delete(onPath, g.Root)

	return d.drain(g)
}

type driver struct {
	ranking  priority.Ranking
	nameOf   NameFunc
	sink     Sink
	queue    map[int][]queueEntry
	maxDepth int
}

// visit evaluates and descends from the node at path's tail. Decoupling the
// node itself already happened at the call site that produced this path
// entry, via decoupleChild.
func (d *driver) visit(path graphmodel.Path, onPath map[*graphmodel.Node]bool) error {
	v := path[len(path)-1]

	// depth >= 1: the root itself has no ancestor to hoist into.
	if len(path) >= 2 {
		if err := d.evaluateBatch(path, 0); err != nil {
			return err
		}
	}

	for _, name := range sortedNames(v.Workspaces) {
		if err := d.descend(path, v.Workspaces, name, onPath); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(v.Dependencies) {
		if err := d.descend(path, v.Dependencies, name, onPath); err != nil {
			return err
		}
	}
	return nil
}

// descend decouples the child at name (if the slot still exists; a
// dependency evaluated as YES above may already have been removed) and
// recurses into it along the still-current path, following the cycle guard.
func (d *driver) descend(path graphmodel.Path, slots map[pkgid.PackageName]*graphmodel.Node, name pkgid.PackageName, onPath map[*graphmodel.Node]bool) error {
	if _, ok := slots[name]; !ok {
		return nil
	}
	child := decoupleChild(slots, name)
	if onPath[child] {
		return nil
	}
	onPath[child] = true
	childPath := append(append(graphmodel.Path{}, path...), child)
	err := d.visit(childPath, onPath)
	delete(onPath, child)
	return err
}

// decoupleChild applies copy-on-write to a shared node: the first visitor to
// reach it claims it in place; later visitors clone it.
func decoupleChild(slots map[pkgid.PackageName]*graphmodel.Node, name pkgid.PackageName) *graphmodel.Node {
	child := slots[name]
	if child.IsDecoupled() {
		clone := child.Clone()
		slots[name] = clone
		return clone
	}
	child.Claim()
	return child
}

// evaluateBatch pre-sorts the dependencies of path's tail into peer order,
// then evaluates and commits a verdict per name (or per cycle group) at
// drain depth k.
func (d *driver) evaluateBatch(path graphmodel.Path, k int) error {
	parent := path[len(path)-1]

	names := make([]pkgid.PackageName, 0, len(parent.Dependencies))
	for name := range parent.Dependencies {
		names = append(names, name)
	}
	order, groups := verdict.PeerOrder(names, parent)

	inGroup := make(map[pkgid.PackageName]bool)
	for _, g := range groups {
		for _, n := range g {
			inGroup[n] = true
		}
	}

	for _, name := range order {
		if inGroup[name] {
			continue
		}
		dep, ok := parent.Dependencies[name]
		if !ok {
			continue // removed by an earlier commit in this same batch
		}
		v := verdict.Decide(path, name, k, d.ranking)
		d.sink.Verdict(path, name, v)
		switch v.Kind {
		case verdict.Yes:
			d.commitHoist(path, name, dep, v.TargetIndex)
		case verdict.Later:
			d.enqueue(path, name, v.DeferDepth)
		}
	}

	for _, group := range groups {
		present := true
		for _, n := range group {
			if _, ok := parent.Dependencies[n]; !ok {
				present = false
				break
			}
		}
		if !present {
			continue
		}
		v := verdict.DecideGroup(path, group, k, d.ranking)
		for _, n := range group {
			d.sink.Verdict(path, n, v)
		}
		switch v.Kind {
		case verdict.Yes:
			for _, n := range group {
				d.commitHoist(path, n, parent.Dependencies[n], v.TargetIndex)
			}
		case verdict.Later:
			for _, n := range group {
				d.enqueue(path, n, v.DeferDepth)
			}
		}
	}

	return nil
}

// commitHoist redirects name at path's tail to resolve through ancestor,
// installing dep there if no other slot already claims the name.
func (d *driver) commitHoist(path graphmodel.Path, name pkgid.PackageName, dep *graphmodel.Node, targetIndex int) {
	parent := path[len(path)-1]
	ancestor := path[targetIndex]

	delete(parent.Dependencies, name)
	parent.HoistedTo[name] = ancestor

	if _, exists := ancestor.Dependencies[name]; !exists {
		ancestor.Dependencies[name] = dep
	}

	d.sink.Hoisted(path, name, ancestor)
}

func (d *driver) enqueue(path graphmodel.Path, name pkgid.PackageName, depth int) {
	ids := make([]pkgid.PackageId, len(path))
	for i, n := range path {
		ids[i] = n.ID
	}
	d.queue[depth] = append(d.queue[depth], queueEntry{pathIDs: ids, name: name})
	if depth > d.maxDepth {
		d.maxDepth = depth
	}
}

// drain re-evaluates every deferred item in increasing priority-depth order.
// maxDepth may grow while draining since a re-evaluated item can only
// requeue to a strictly deeper priority depth, which bounds the loop.
func (d *driver) drain(g *graphmodel.Graph) error {
	for k := 1; k <= d.maxDepth; k++ {
		entries := d.queue[k]
		delete(d.queue, k)
		for _, e := range entries {
			path, err := d.reconstruct(g.Root, e.pathIDs)
			if err != nil {
				return err
			}
			parent := path[len(path)-1]
			dep, ok := parent.Dependencies[e.name]
			if !ok {
				continue // resolved by an earlier redirection in this pass
			}
			v := verdict.Decide(path, e.name, k, d.ranking)
			d.sink.Verdict(path, e.name, v)
			switch v.Kind {
			case verdict.Yes:
				d.commitHoist(path, e.name, dep, v.TargetIndex)
			case verdict.Later:
				d.enqueue(path, e.name, v.DeferDepth)
			}
		}
	}
	return nil
}

// reconstruct walks ids from the root, following hoistedTo redirections
// whenever the recorded name no longer occupies the expected slot.
func (d *driver) reconstruct(root *graphmodel.Node, ids []pkgid.PackageId) (graphmodel.Path, error) {
	path := graphmodel.Path{root}
	cur := root

	for i := 1; i < len(ids); i++ {
		wantID := ids[i]
		name := d.nameOf(wantID)

		for {
			if child, ok := cur.Slot(name); ok && child.ID == wantID {
				cur = child
				break
			}
			owner, ok := cur.HoistedTo[name]
			if !ok {
				return nil, &graphmodel.UnreachableError{Name: string(name), At: string(cur.ID)}
			}
			idx := graphmodel.IndexOf(path, owner)
			if idx < 0 {
				return nil, &graphmodel.UnreachableError{Name: string(name), At: string(cur.ID)}
			}
			path = path[:idx+1]
			cur = owner
		}
		path = append(path, cur)
	}

	return path, nil
}

func sortedNames(m map[pkgid.PackageName]*graphmodel.Node) []pkgid.PackageName {
	names := make([]pkgid.PackageName, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
