package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sitedirectory/internal/codec"
	"sitedirectory/internal/config"
)

func newResolveCommand(a *app) *cobra.Command {
	var (
		scope    string
		format   string
		snapshot string
		policy   string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the hub directory of a scope and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			cfg := a.cfg.Directory
			if snapshot != "" {
				cfg.Snapshot = snapshot
			}
			if policy != "" {
				parsed, ok := config.ParseVerifyPolicy(policy)
				if !ok {
					return fmt.Errorf("invalid --verify-policy %q (want %s or %s)",
						policy, config.PolicyFailOpen, config.PolicyFailClosed)
				}
				cfg.VerifyPolicy = parsed
			}
			if scope == "" {
				scope = cfg.BaseURL
			}
			scope = strings.TrimSpace(scope)
			if scope == "" {
				return errors.New("no scope: pass --scope or set directory.base_url")
			}

			p, err := a.newPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			tree, err := p.service.ResolveDirectory(cmd.Context(), scope)
			if err != nil {
				return err
			}
			return exporter.Export(tree, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "scope URL (default: directory.base_url)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or text")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "read from a SQLite snapshot instead of the live directory")
	cmd.Flags().StringVar(&policy, "verify-policy", "", "fail-open or fail-closed when hub identity is unreachable")
	return cmd
}
