// Package finder discovers package-tree fixtures on disk, backing
// `dephoist hoist --dir`.
package finder

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindTrees walks root and returns every .json file, excluding dotfiles and
// dot-directories (editor swap files, .git).
func FindTrees(root string) ([]string, error) {
	var trees []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) == ".json" && !strings.HasPrefix(d.Name(), ".") {
			trees = append(trees, path)
		}

		return nil
	})

	return trees, err
}
