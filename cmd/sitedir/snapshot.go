package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitedirectory/internal/loader"
	"sitedirectory/internal/repository/sqlite"
)

func newSnapshotCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage offline directory snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var dbPath string
	importCmd := &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Load a YAML fixture into a SQLite snapshot, replacing its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loader.LoadYAML(args[0])
			if err != nil {
				return fmt.Errorf("load fixture: %w", err)
			}

			repo, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Import(cmd.Context(), snap); err != nil {
				return err
			}
			a.log.Debug().Str("db", dbPath).Int("indexed", len(snap.Index)).Msg("snapshot imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d hubs into %s\n", len(snap.Hubs), dbPath)
			return nil
		},
	}
	importCmd.Flags().StringVar(&dbPath, "db", "./sitedir.db", "snapshot database path")

	cmd.AddCommand(importCmd)
	return cmd
}
