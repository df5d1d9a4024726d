package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ritzau/dephoist/pkg/config"
	"github.com/ritzau/dephoist/pkg/diagnostics"
	"github.com/ritzau/dephoist/pkg/hoist"
	"github.com/ritzau/dephoist/pkg/importer"
	"github.com/ritzau/dephoist/pkg/logging"
	"github.com/ritzau/dephoist/pkg/pkgid"
	"github.com/ritzau/dephoist/pkg/priority"
	"github.com/ritzau/dephoist/pkg/web"
)

func newWebCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve a live before/after visualization of a hoist run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runWeb(cfg)
		},
	}

	cmd.Flags().String("in", "-", "input package tree file (- for stdin)")
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().Bool("open", true, "open a browser once the server is up")
	cmd.Flags().Bool("dump", false, "also print a colorized trace to stderr as the hoist runs")
	return cmd
}

func runWeb(cfg *config.Config) error {
	pkg, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	before, err := importer.Import(pkg, pkgid.NameOf)
	if err != nil {
		return fmt.Errorf("importing package tree: %w", err)
	}
	after, err := importer.Import(pkg, pkgid.NameOf)
	if err != nil {
		return fmt.Errorf("importing package tree: %w", err)
	}

	server := web.NewServer()
	ctx := logging.WithRunID(context.Background(), uuid.New().String())

	go func() {
		server.PublishStatus("importing", "decoded package tree", 0, 3)

		server.PublishStatus("analyzing", "computing priority ranking", 1, 3)
		ranking := priority.Analyze(after)

		server.PublishStatus("hoisting", "running hoist driver", 2, 3)
		var sink hoist.Sink = diagnostics.NewPubsubSink(server.Publisher())
		if cfg.Dump {
			sink = diagnostics.NewTee(diagnostics.NewPubsubSink(server.Publisher()), diagnostics.NewConsoleSink(os.Stderr))
		}
		if err := hoist.Run(after, ranking, pkgid.NameOf, sink); err != nil {
			logging.ErrorContext(ctx, "hoist failed", "error", err)
			server.PublishStatus("error", err.Error(), 2, 3)
			return
		}

		server.SetGraphs(before, after)
		server.PublishStatus("done", "hoist complete", 3, 3)
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	if cfg.OpenBrowser {
		go func() {
			time.Sleep(300 * time.Millisecond)
			openBrowser(url)
		}()
	}

	logging.InfoContext(ctx, "serving visualization", "url", url)
	return server.Start(cfg.Port)
}
