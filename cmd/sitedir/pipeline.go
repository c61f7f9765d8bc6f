package main

import (
	"fmt"
	"io"
	"net/http"

	"sitedirectory/internal/adapter"
	"sitedirectory/internal/config"
	"sitedirectory/internal/directory"
	"sitedirectory/internal/repository"
	"sitedirectory/internal/repository/sqlite"
	"sitedirectory/internal/service"
)

// pipeline is a wired directory service and the client it reads from
type pipeline struct {
	service *service.DirectoryService
	client  directory.Client
	// snapshot is set when reading from a local snapshot
	snapshot repository.Repository
	closer   io.Closer
}

func (p *pipeline) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// newClient reads from the snapshot when one is configured, else the live directory
func (a *app) newClient(cfg config.DirectoryConfig) (directory.Client, io.Closer, error) {
	if cfg.Snapshot != "" {
		repo, err := sqlite.New(cfg.Snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot: %w", err)
		}
		a.log.Info().Str("snapshot", cfg.Snapshot).Msg("reading from snapshot")
		return repo, repo, nil
	}

	httpCfg := directory.DefaultHTTPConfig()
	httpCfg.Token = a.cfg.ResolveToken()
	if d := cfg.RequestTimeout.Duration(); d > 0 {
		httpCfg.RequestTimeout = d
	}
	return directory.NewHTTPClient(&http.Client{}, httpCfg, a.log), nil, nil
}

func (a *app) newPipeline(cfg config.DirectoryConfig) (*pipeline, error) {
	client, closer, err := a.newClient(cfg)
	if err != nil {
		return nil, err
	}

	verifier := adapter.NewHubVerifier(client, adapter.VerifierConfig{
		FailOpen: cfg.VerifyPolicy.FailOpen(),
	}, a.log)

	resolver, err := adapter.NewResolver(a.log,
		adapter.NewDeclaredSource(client, a.log),
		adapter.NewSearchSource(client, cfg.RowLimit, a.log),
	)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	svc := service.NewDirectoryService(client, verifier, resolver, service.Options{
		MaxConcurrent: cfg.MaxConcurrent,
		Highlight:     cfg.Highlight,
	}, a.log)

	p := &pipeline{service: svc, client: client, closer: closer}
	if repo, ok := client.(repository.Repository); ok {
		p.snapshot = repo
	}
	return p, nil
}
