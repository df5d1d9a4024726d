package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/dephoist/pkg/config"
	"github.com/ritzau/dephoist/pkg/exporter"
	"github.com/ritzau/dephoist/pkg/graphmodel"
	"github.com/ritzau/dephoist/pkg/hoist"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check hoist invariants against a package tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runVerify(cfg)
		},
	}

	cmd.Flags().String("in", "-", "input package tree file (- for stdin)")
	cmd.Flags().Bool("double-run", false, "also check that hoisting an already-hoisted tree is a no-op")
	return cmd
}

func runVerify(cfg *config.Config) error {
	pkg, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	original, err := importer.Import(pkg, pkgid.NameOf)
	if err != nil {
		return fmt.Errorf("importing package tree: %w", err)
	}

	hoisted, exported, err := hoistOnceForVerify(pkg)
	if err != nil {
		return fmt.Errorf("hoist failed: %w", err)
	}
	fmt.Println("OK: hoist completed without an unreachable deferred item")

	if violations := graphmodel.CheckRequirePromise(original, hoisted); len(violations) > 0 {
		for _, v := range violations {
			fmt.Println(v.String())
		}
		return fmt.Errorf("require promise violated: %d violation(s) found", len(violations))
	}
	fmt.Println("OK: hoisted graph honors the require promise (no slot collisions)")

	if !cfg.DoubleRun {
		return nil
	}

	first, err := json.Marshal(exported)
	if err != nil {
		return fmt.Errorf("marshaling first pass: %w", err)
	}

	_, exportedAgain, err := hoistOnceForVerify(exported)
	if err != nil {
		return fmt.Errorf("second hoist pass failed: %w", err)
	}
	second, err := json.Marshal(exportedAgain)
	if err != nil {
		return fmt.Errorf("marshaling second pass: %w", err)
	}

	if !bytes.Equal(first, second) {
		return fmt.Errorf("idempotence violated: re-hoisting an already-hoisted tree changed it")
	}
	fmt.Println("OK: hoist is idempotent (double-run produced an identical tree)")
	return nil
}

func hoistOnceForVerify(pkg *importer.Package) (*graphmodel.Graph, *importer.Package, error) {
	g, err := importer.Import(pkg, pkgid.NameOf)
	if err != nil {
		return nil, nil, fmt.Errorf("importing package tree: %w", err)
	}

	ranking := priority.Analyze(g)
	if err := hoist.Run(g, ranking, pkgid.NameOf, hoist.NopSink{}); err != nil {
		return nil, nil, err
	}

	return g, exporter.Export(g), nil
}
