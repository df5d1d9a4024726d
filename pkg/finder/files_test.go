package finder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindTrees(t *testing.T) {
	root := t.TempDir()

	write := func(rel string) {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(`{"id":"."}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("basic.json")
	write("nested/conflict.json")
	write(".hidden.json")
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(".git/config.json")

	trees, err := FindTrees(root)
	if err != nil {
		t.Fatalf("FindTrees() error = %v", err)
	}

	if len(trees) != 2 {
		t.Fatalf("FindTrees() found %d files, want 2: %v", len(trees), trees)
	}

	foundNested := false
	for _, f := range trees {
		if filepath.Base(f) == "conflict.json" {
			foundNested = true
		}
		if filepath.Base(f) == ".hidden.json" {
			t.Errorf("FindTrees() should skip dotfiles, found: %s", f)
		}
	}
	if !foundNested {
		t.Error("FindTrees() did not find nested/conflict.json")
	}
}
