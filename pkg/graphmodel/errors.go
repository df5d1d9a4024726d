package graphmodel

import "fmt"

// DuplicateNameError reports that two distinct children of one parent share
// a PackageName in the input tree, violating I1. Fatal: the transformation
// has no meaningful output.
type DuplicateNameError struct {
	Parent string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate name %q under parent %q", e.Name, e.Parent)
}

// UnreachableError reports that path reconstruction during queue drain
// could not locate the expected child. It indicates a bug in the hoister
// rather than a normal outcome.
type UnreachableError struct {
	Name string
	At   string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unreachable: could not resolve %q from %q during path reconstruction", e.Name, e.At)
}
