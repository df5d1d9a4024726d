package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ritzau/dephoist/pkg/exporter"
	"github.com/ritzau/dephoist/pkg/importer"
)

func readInput(path string) (*importer.Package, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	pkg, err := importer.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return pkg, nil
}

func writeOutput(path string, pkg *importer.Package) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	if err := exporter.Encode(w, pkg); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
