package graphmodel

import (
	"testing"

	"github.com/ritzau/dephoist/pkg/pkgid"
)

func TestNodeCloneIsIndependent(t *testing.T) {
	n := NewNode("A")
	n.Dependencies["B"] = NewNode("B")
	n.Claim()

	clone := n.Clone()
	if !clone.IsDecoupled() {
		t.Fatal("clone should already be decoupled")
	}

	delete(clone.Dependencies, "B")
	if _, ok := n.Dependencies["B"]; !ok {
		t.Fatal("mutating the clone must not affect the original node")
	}
}

func TestSlotChecksBothMaps(t *testing.T) {
	n := NewNode("A")
	dep := NewNode("dep@1")
	ws := NewNode("ws@1")
	n.Dependencies["dep"] = dep
	n.Workspaces["ws"] = ws

	if got, ok := n.Slot("dep"); !ok || got != dep {
		t.Errorf("Slot(dep) = %v, %v", got, ok)
	}
	if got, ok := n.Slot("ws"); !ok || got != ws {
		t.Errorf("Slot(ws) = %v, %v", got, ok)
	}
	if _, ok := n.Slot("missing"); ok {
		t.Error("Slot(missing) should report absent")
	}
}

func TestResolveWalksAncestorsInward(t *testing.T) {
	root := NewNode(pkgid.Root)
	a := NewNode("A")
	b := NewNode("B")
	root.Dependencies["A"] = a
	a.Dependencies["B"] = b

	path := Path{root, a, b}
	got, ok := Resolve(path, "A")
	if !ok || got != a {
		t.Fatalf("Resolve(path, A) = %v, %v, want %v, true", got, ok, a)
	}

	if _, ok := Resolve(path, "missing"); ok {
		t.Error("Resolve should report absent for an unbound name")
	}
}
