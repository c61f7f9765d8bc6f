package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/observability"
)

// DefaultMaxConcurrent bounds the number of hubs processed at once
const DefaultMaxConcurrent = 8

// HubLister reads the directory-wide hub listing
type HubLister interface {
	ListHubs(ctx context.Context, scope string) ([]directory.HubEntry, error)
}

// Verifier decides whether a listed site is a hub root
type Verifier interface {
	Verify(ctx context.Context, siteURL string) bool
}

// SiteResolver collects a hub's associated sites
type SiteResolver interface {
	Resolve(ctx context.Context, scope string, hub domain.HubCandidate) []domain.SiteRecord
}

// Options tunes a DirectoryService
type Options struct {
	MaxConcurrent int
	// Highlight lists hub IDs or URLs to flag in the tree
	Highlight []string
}

// DirectoryService resolves the hub hierarchy of a scope
type DirectoryService struct {
	lister    HubLister
	verifier  Verifier
	resolver  SiteResolver
	limit     int
	highlight map[string]struct{}
	log       zerolog.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(lister HubLister, verifier Verifier, resolver SiteResolver, opts Options, logger zerolog.Logger) *DirectoryService {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	highlight := make(map[string]struct{}, len(opts.Highlight))
	for _, h := range opts.Highlight {
		if key := domain.NormalizeURL(h); key != "" {
			highlight[key] = struct{}{}
		}
	}
	return &DirectoryService{
		lister:    lister,
		verifier:  verifier,
		resolver:  resolver,
		limit:     limit,
		highlight: highlight,
		log:       logger.With().Str("component", "directory").Logger(),
	}
}

// ResolveDirectory lists the scope's hubs, drops those that are not hub roots,
// and attaches each survivor's associated sites. Hubs keep listing order.
// Only a listing failure or cancellation returns an error.
func (s *DirectoryService) ResolveDirectory(ctx context.Context, scope string) (tree *domain.DirectoryTree, err error) {
	start := time.Now()
	defer func() {
		observability.RecordResolution(err == nil, time.Since(start))
	}()

	entries, err := s.lister.ListHubs(ctx, scope)
	if err != nil {
		observability.RecordSourceFailure(observability.SourceListing)
		s.log.Error().Err(err).Str("scope", scope).Msg("hub listing failed")
		return nil, &DirectoryResolutionFailed{Scope: scope, Err: err}
	}
	s.log.Debug().Str("scope", scope).Int("listed", len(entries)).Msg("hubs listed")

	slots := make([]*domain.HubNode, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, entry := range entries {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			slots[i] = s.resolveHub(gctx, scope, entry.Candidate())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &DirectoryResolutionFailed{Scope: scope, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &DirectoryResolutionFailed{Scope: scope, Err: err}
	}

	tree = domain.NewDirectoryTree(scope)
	for _, node := range slots {
		if node != nil {
			tree.AddHub(*node)
		}
	}

	stats := tree.Stats()
	s.log.Info().
		Str("scope", scope).
		Int("listed", len(entries)).
		Int("hubs", stats.Hubs).
		Int("sites", stats.AssociatedSites).
		Dur("took", time.Since(start)).
		Msg("directory resolved")
	return tree, nil
}

// resolveHub verifies one candidate and gathers its sites; nil means not a hub
func (s *DirectoryService) resolveHub(ctx context.Context, scope string, c domain.HubCandidate) *domain.HubNode {
	if !s.verifier.Verify(ctx, c.URL) {
		return nil
	}
	node := domain.NewHubNode(c, s.resolver.Resolve(ctx, scope, c))
	node.Highlighted = s.highlighted(c)
	return &node
}

func (s *DirectoryService) highlighted(c domain.HubCandidate) bool {
	if len(s.highlight) == 0 {
		return false
	}
	for _, key := range []string{c.ID, c.URL} {
		if _, ok := s.highlight[domain.NormalizeURL(key)]; ok && key != "" {
			return true
		}
	}
	return false
}
