package pkgid

import "testing"

func TestNameOf(t *testing.T) {
	tests := []struct {
		id   PackageId
		want PackageName
	}{
		{Root, PackageName(Root)},
		{"A", "A"},
		{"A@X", "A"},
		{"@scope/pkg@1.2.3", "@scope/pkg"},
		{"@scope/pkg", "@scope/pkg"},
		{"lodash@4.17.21", "lodash"},
	}

	for _, tt := range tests {
		if got := NameOf(tt.id); got != tt.want {
			t.Errorf("NameOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
