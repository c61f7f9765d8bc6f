package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sitedirectory/internal/config"
	"sitedirectory/internal/logging"
)

// app carries state shared by every subcommand
type app struct {
	cfgFile  string
	logLevel string

	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger

	stdout io.Writer
	stderr io.Writer
}

func execute(ctx context.Context, args []string) int {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	root := newRootCommand(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(a.stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sitedir",
		Short: "Resolve hub sites and their associated sites",
		Long: `sitedir lists the hubs of a scope, drops entries that are not hub roots,
and collects each hub's associated sites from the hub's own declarations
and from the search index.

Quick start:
  sitedir resolve --scope https://contoso.example
  sitedir serve --addr :3000
  sitedir snapshot import fixture.yaml --db directory.db
  sitedir resolve --snapshot directory.db --format text`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: search "+config.EnvConfigPath+" and standard locations)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newResolveCommand(a))
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newSnapshotCommand(a))
	root.AddCommand(newConfigCommand(a))
	return root
}

func (a *app) loadConfig() error {
	cfg, path, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.cfgPath = path
	a.log = logging.New(cfg.Log, a.stderr)
	if path != "" {
		a.log.Debug().Str("path", path).Msg("config loaded")
	}
	return nil
}
