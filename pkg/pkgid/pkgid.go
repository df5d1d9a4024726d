// Package pkgid implements the id/name types the hoister core treats as an
// external oracle: an opaque PackageId and the pure function that derives a
// PackageName from it.
package pkgid

import "strings"

// PackageId is an opaque identifier for one resolved instance of a package.
// The root of any graph carries the distinguished id Root.
type PackageId string

// Root is the distinguished id of the graph's root node.
const Root PackageId = "."

// PackageName groups PackageIds that occupy the same dependency slot.
// Two ids may share a name when they are different versions of the same
// package.
type PackageName string

// NameOf derives a PackageName from a PackageId. Ids follow the convention
// exercised by the seeded scenarios: "name", "name@version", or a scoped
// "@scope/name@version". The function is pure and deterministic; it never
// looks at the graph.
func NameOf(id PackageId) PackageName {
	if id == Root {
		return PackageName(Root)
	}

	s := string(id)
	scoped := strings.HasPrefix(s, "@")
	body := s
	prefix := ""
	if scoped {
		prefix = "@"
		body = s[1:]
	}

	if at := strings.LastIndex(body, "@"); at >= 0 {
		body = body[:at]
	}

	return PackageName(prefix + body)
}
