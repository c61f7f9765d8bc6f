package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sitedirectory/internal/handler"
	"sitedirectory/internal/loader"
	"sitedirectory/internal/observability"
	"sitedirectory/internal/repository"
	"sitedirectory/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		fixture string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			p, err := a.newPipeline(a.cfg.Directory)
			if err != nil {
				return err
			}
			defer p.Close()

			if fixture != "" {
				if p.snapshot == nil {
					return errors.New("--watch-fixture requires a snapshot (directory.snapshot)")
				}
				reload := func(ctx context.Context) error {
					return importFixture(ctx, a, p.snapshot, fixture)
				}
				if err := reload(cmd.Context()); err != nil {
					return err
				}
				go runWatcher(cmd.Context(), a.log, watcher.New(fixture, reload, a.log))
			}

			observability.Register()

			mux := http.NewServeMux()
			handler.NewDirectoryHandler(p.service, a.cfg.Directory.BaseURL, a.cfg.Server.AllowedScopes, a.log).Routes(mux)
			mux.Handle("GET /metrics", promhttp.Handler())

			server := &http.Server{
				Addr: addr,
				Handler: handler.Chain(mux,
					handler.Recover(a.log),
					handler.CORS(a.cfg.Server.CORSOrigins),
					handler.Logger(a.log),
				),
				ReadTimeout:  a.cfg.Server.ReadTimeout.Duration(),
				WriteTimeout: a.cfg.Server.WriteTimeout.Duration(),
			}
			return runServer(cmd.Context(), a, server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().StringVar(&fixture, "watch-fixture", "", "load a YAML fixture into the snapshot and reload it on change")
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down gracefully
func runServer(ctx context.Context, a *app, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// runWatcher blocks on w and logs why it stopped unless ctx was cancelled
func runWatcher(ctx context.Context, log zerolog.Logger, w *watcher.Watcher) {
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("fixture watcher stopped; reloads disabled")
	}
}

// importFixture loads a YAML fixture and replaces the snapshot contents with it
func importFixture(ctx context.Context, a *app, repo repository.Repository, path string) error {
	snap, err := loader.LoadYAML(path)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	if err := repo.Import(ctx, snap); err != nil {
		return fmt.Errorf("import fixture: %w", err)
	}
	a.log.Info().
		Str("fixture", path).
		Str("scope", snap.Scope).
		Int("hubs", len(snap.Hubs)).
		Msg("fixture imported")
	return nil
}
