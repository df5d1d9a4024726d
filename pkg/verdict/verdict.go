// Package verdict implements the hoist verdict decision procedure: given a
// dependency edge and the current drain depth, decide whether (and how far)
// it may be lifted toward the root.
package verdict

import (
	"github.com/ritzau/dephoist/pkg/cycles"
	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
)

// Kind identifies which of the four verdict variants a Verdict carries.
type Kind int

const (
	// Yes lifts the child to path[TargetIndex].
	Yes Kind = iota
	// No means the edge will never be hoistable (at least not without a
	// change to some other part of the graph that would itself change the
	// verdict, e.g. a peer being hoisted first).
	No
	// Later requeues the edge at priority depth DeferDepth (> the depth it
	// was evaluated at).
	Later
	// Depends means resolution is conditional on the peer siblings in
	// DependsOn. No function in this package returns it: a cyclic peer
	// group is decided jointly by DecideGroup, which returns Yes or No
	// for the whole group.
	Depends
)

// Verdict is the tagged-union result of the decision procedure. Only the
// fields relevant to Kind are populated.
type Verdict struct {
	Kind        Kind
	TargetIndex int                   // Yes
	DeferDepth  int                   // Later
	DependsOn   []pkgid.PackageName   // Depends
}

func yes(i int) Verdict { return Verdict{Kind: Yes, TargetIndex: i} }
func no() Verdict { return Verdict{Kind: No} }
func later(depth int) Verdict { return Verdict{Kind: Later, DeferDepth: depth} }

// Decide evaluates a single dependency name owned by path's tail (the
// parent), at drain depth k. path is [root, ..., parent].
func Decide(path graphmodel.Path, name pkgid.PackageName, k int, ranking priority.Ranking) Verdict {
	parent := path[len(path)-1]
	dep, ok := parent.Dependencies[name]
	if !ok {
		return no()
	}

	ranks := ranking[name]
	p := indexOf(ranks, dep.ID)

	scanIndex := -1
	scanVerdict := no()

scan:
	for i := 0; i <= len(path)-2; i++ {
		ancestor := path[i]
		occupant, hasOccupant := ancestor.Dependencies[name]

		var v Verdict
		switch {
		case !hasOccupant:
			if p == k {
				v = yes(i)
			} else {
				v = later(p)
			}
		case occupant.ID == dep.ID:
			v = yes(i)
		default:
			// A different version already owns the slot at this ancestor;
			// try the next ancestor inward.
			continue scan
		}

		if v.Kind == Yes {
			if downgraded := violatesHoistedTo(dep, path, i); downgraded {
				continue scan
			}
		}

		scanIndex, scanVerdict = i, v
		break scan
	}

	if scanVerdict.Kind != Yes {
		return scanVerdict
	}

	return applyPeerConstraints(path, parent, dep, scanIndex, k, ranking)
}

// violatesHoistedTo checks, for every (name, owner) dep previously recorded
// as hoisted away from itself, that the name still resolves to the same id
// between candidate ancestor A and the original owner.
func violatesHoistedTo(dep *graphmodel.Node, path graphmodel.Path, ancestorIndex int) bool {
	if len(dep.HoistedTo) == 0 {
		return false
	}
	ownerIndex := -1
	for name, owner := range dep.HoistedTo {
		oi := graphmodel.IndexOf(path, owner)
		if oi < 0 {
			// The recorded owner is not on this path; conservatively treat
			// as a mismatch since we cannot verify continuity.
			return true
		}
		ownerIndex = oi
		want, ok := graphmodel.Resolve(path[:ownerIndex+1], name)
		if !ok {
			return true
		}
		for i := ancestorIndex; i <= ownerIndex; i++ {
			if got, ok := path[i].Slot(name); ok && got != want {
				return true
			}
		}
	}
	return false
}

// applyPeerConstraints checks, for each peer name of dep, either that
// co-location still holds and hasn't been missed, or that a previously
// hoisted peer bounds how far dep may now rise.
func applyPeerConstraints(path graphmodel.Path, parent, dep *graphmodel.Node, targetIndex, k int, ranking priority.Ranking) Verdict {
	for peerName := range dep.PeerNames {
		if occupant, ok := parent.Dependencies[peerName]; ok {
			peerDepth := ranking.DepthOf(peerName, occupant.ID)
			if peerDepth >= 0 && peerDepth <= k {
				return no()
			}
			deferTo := peerDepth
			if deferTo < k {
				deferTo = k
			}
			return later(deferTo)
		}

		owner, ok := parent.HoistedTo[peerName]
		if !ok {
			continue
		}
		if oi := graphmodel.IndexOf(path, owner); oi > targetIndex {
			targetIndex = oi
		}
	}

	return yes(targetIndex)
}

// PeerOrder reorders names (dependency slots at one parent) so that any
// dependency that is another sibling's peer is considered first, a
// topological order with self-loops and cycles tolerated. It returns the
// names outside any cycle in that order and, separately, each detected
// cyclic group (each already internally sorted for determinism), so callers
// can process the ordered names normally and resolve each cyclic group
// jointly via DecideGroup.
func PeerOrder(names []pkgid.PackageName, parent *graphmodel.Node) (order []pkgid.PackageName, groups [][]pkgid.PackageName) {
	nameSet := make(map[pkgid.PackageName]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	successors := func(n pkgid.PackageName) []pkgid.PackageName {
		dep, ok := parent.Dependencies[n]
		if !ok {
			return nil
		}
		var out []pkgid.PackageName
		for peer := range dep.PeerNames {
			if nameSet[peer] {
				out = append(out, peer)
			}
		}
		return out
	}

	groups = cycles.SCCs(names, successors)
	inCycle := make(map[pkgid.PackageName]bool)
	for _, g := range groups {
		for _, n := range g {
			inCycle[n] = true
		}
	}

	// Kahn's algorithm over the acyclic remainder: a name whose peers (its
	// successors) are considered first means we want peers to come before
	// dependents, i.e. process names with no unprocessed peer-successors
	// first. That is exactly indegree-zero-first over the reversed edge
	// direction, so we compute indegree as "how many acyclic siblings
	// depend on this name as a peer" and repeatedly remove sources of the
	// *dependency* direction (peers before dependents).
	indegree := make(map[pkgid.PackageName]int)
	dependents := make(map[pkgid.PackageName][]pkgid.PackageName)
	var acyclic []pkgid.PackageName
	for _, n := range names {
		if inCycle[n] {
			continue
		}
		acyclic = append(acyclic, n)
		indegree[n] = 0
	}
	for _, n := range acyclic {
		for _, peer := range successors(n) {
			if inCycle[peer] {
				continue
			}
			dependents[peer] = append(dependents[peer], n)
			indegree[n]++
		}
	}

	var queue []pkgid.PackageName
	for _, n := range acyclic {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	sortNames(queue)

	seen := make(map[pkgid.PackageName]bool)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		order = append(order, n)

		var next []pkgid.PackageName
		for _, dependent := range dependents[n] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sortNames(next)
		queue = append(queue, next...)
		sortNames(queue)
	}
	// Any acyclic name not reached (shouldn't happen without a cycle, but
	// guards against an unexpected topology) is appended deterministically.
	for _, n := range acyclic {
		if !seen[n] {
			order = append(order, n)
		}
	}

	return order, groups
}

// DecideGroup jointly evaluates a strongly-connected peer group at path's
// tail: the group can only ever hoist together, to an ancestor where every
// member either finds its own slot empty (and is at its own priority
// depth k) or already coalesces with the occupant. Once hoisted together
// the group's mutual peer requirement is satisfied by co-location at the
// new parent, so no further peer check is needed.
func DecideGroup(path graphmodel.Path, group []pkgid.PackageName, k int, ranking priority.Ranking) Verdict {
	parent := path[len(path)-1]

	members := make([]*graphmodel.Node, 0, len(group))
	for _, name := range group {
		dep, ok := parent.Dependencies[name]
		if !ok {
			return no()
		}
		members = append(members, dep)
	}

scan:
	for i := 0; i <= len(path)-2; i++ {
		ancestor := path[i]
		for idx, name := range group {
			dep := members[idx]
			occupant, hasOccupant := ancestor.Dependencies[name]
			switch {
			case !hasOccupant:
				if indexOf(ranking[name], dep.ID) != k {
					continue scan
				}
			case occupant.ID != dep.ID:
				continue scan
			}
		}
		return yes(i)
	}

	return no()
}

func indexOf(ids []pkgid.PackageId, id pkgid.PackageId) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func sortNames(names []pkgid.PackageName) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
