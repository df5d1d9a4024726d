package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ritzau/dephoist/pkg/config"
	"github.com/ritzau/dephoist/pkg/diagnostics"
	"github.com/ritzau/dephoist/pkg/exporter"
	"github.com/ritzau/dephoist/pkg/finder"
	"github.com/ritzau/dephoist/pkg/hoist"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/logging"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
	"github.com/ritzau/dephoist/pkg/watcher"
)

func newHoistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hoist",
		Short: "Hoist a package tree once, sweep a directory of fixtures, or watch continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			switch {
			case cfg.Dir != "":
				return runHoistDir(cfg)
			case cfg.Watch:
				return watchAndHoist(cfg)
			default:
				return runHoistOnce(cfg)
			}
		},
	}

	cmd.Flags().String("in", "-", "input package tree file (- for stdin)")
	cmd.Flags().String("out", "-", "output package tree file (- for stdout)")
	cmd.Flags().String("dir", "", "hoist every .json package tree fixture under a directory instead of a single --in/--out pair")
	cmd.Flags().Bool("dump", false, "print a colorized trace of every verdict and commit")
	cmd.Flags().Bool("watch", false, "re-hoist whenever the input file changes")
	return cmd
}

// runHoistDir sweeps every package tree fixture under cfg.Dir, hoisting each
// one independently and writing the result alongside it with a .hoisted.json
// suffix. --in and --out are ignored in this mode.
func runHoistDir(cfg *config.Config) error {
	trees, err := finder.FindTrees(cfg.Dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", cfg.Dir, err)
	}
	if len(trees) == 0 {
		return fmt.Errorf("no .json package tree fixtures found under %s", cfg.Dir)
	}

	ctx := logging.WithRunID(context.Background(), uuid.New().String())
	logging.InfoContext(ctx, "hoisting fixture directory", "dir", cfg.Dir, "count", len(trees))

	for _, path := range trees {
		perFixture := *cfg
		perFixture.Input = path
		perFixture.Output = strings.TrimSuffix(path, ".json") + ".hoisted.json"
		if err := runHoistOnce(&perFixture); err != nil {
			return fmt.Errorf("hoisting %s: %w", path, err)
		}
	}

	logging.InfoContext(ctx, "fixture sweep complete", "dir", cfg.Dir, "count", len(trees))
	return nil
}

func runHoistOnce(cfg *config.Config) error {
	pkg, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	g, err := importer.Import(pkg, pkgid.NameOf)
	if err != nil {
		return fmt.Errorf("importing package tree: %w", err)
	}

	ctx := logging.WithRunID(context.Background(), uuid.New().String())
	logging.InfoContext(ctx, "hoisting", "input", cfg.Input)

	ranking := priority.Analyze(g)

	var sink hoist.Sink = hoist.NopSink{}
	if cfg.Dump {
		sink = diagnostics.NewConsoleSink(os.Stderr)
	}

	if err := hoist.Run(g, ranking, pkgid.NameOf, sink); err != nil {
		return fmt.Errorf("hoisting: %w", err)
	}

	logging.InfoContext(ctx, "hoist complete")

	return writeOutput(cfg.Output, exporter.Export(g))
}

func watchAndHoist(cfg *config.Config) error {
	if cfg.Input == "-" {
		return fmt.Errorf("--watch requires --in to name a file, not stdin")
	}

	fw, err := watcher.NewFileWatcher(cfg.Input)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		cancel()
	}()

	fw.Start(ctx)
	defer fw.Stop()

	if err := runHoistOnce(cfg); err != nil {
		logging.Error("initial hoist failed", "error", err)
	}

	debounced := watcher.NewDebouncer(fw.Events(), 200*time.Millisecond, 2*time.Second)
	debounced.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-debounced.Output():
			if !ok {
				return nil
			}
			if err := runHoistOnce(cfg); err != nil {
				logging.Error("hoist failed", "error", err)
			}
		}
	}
}
