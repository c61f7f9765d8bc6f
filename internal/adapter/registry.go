package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sitedirectory/internal/domain"
	"sitedirectory/internal/observability"
)

// Resolver gathers a hub's associated sites from every registered source and
// merges them. Sources are fetched concurrently but merged in priority order,
// so a higher-priority source always wins a URL regardless of which finished first.
type Resolver struct {
	mu      sync.RWMutex
	sources []Source
	log     zerolog.Logger
}

// NewResolver creates a resolver with the given sources
func NewResolver(logger zerolog.Logger, sources ...Source) (*Resolver, error) {
	r := &Resolver{log: logger.With().Str("component", "resolver").Logger()}
	for _, s := range sources {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a source
func (r *Resolver) Register(source Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sources {
		if existing.Name() == source.Name() {
			return fmt.Errorf("source %s already registered", source.Name())
		}
	}
	r.sources = append(r.sources, source)
	sort.SliceStable(r.sources, func(i, j int) bool {
		return r.sources[i].Priority() > r.sources[j].Priority()
	})
	return nil
}

// Sources returns the registered source names in merge order
func (r *Resolver) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the hub's associated sites. It never fails: a source that
// cannot be read contributes nothing.
func (r *Resolver) Resolve(ctx context.Context, scope string, hub domain.HubCandidate) []domain.SiteRecord {
	sites, _ := r.ResolveDetailed(ctx, scope, hub)
	return sites
}

// ResolveDetailed is Resolve plus a per-source account of what was found and kept
func (r *Resolver) ResolveDetailed(ctx context.Context, scope string, hub domain.HubCandidate) ([]domain.SiteRecord, []SourceResult) {
	r.mu.RLock()
	sources := make([]Source, len(r.sources))
	copy(sources, r.sources)
	r.mu.RUnlock()

	// each goroutine writes only its own slot
	found := make([][]domain.SiteRecord, len(sources))
	var g errgroup.Group
	for i, s := range sources {
		g.Go(func() error {
			found[i] = s.Sites(ctx, scope, hub)
			return nil
		})
	}
	_ = g.Wait()

	sites, added := domain.MergeSites(hub.URL, found...)
	results := make([]SourceResult, len(sources))
	for i, s := range sources {
		results[i] = SourceResult{Source: s.Name(), Found: len(found[i]), Added: added[i]}
		observability.RecordAssociated(s.Name(), added[i])
	}

	r.log.Debug().
		Str("hub", hub.URL).
		Int("sites", len(sites)).
		Interface("sources", results).
		Msg("resolved associated sites")

	return sites, results
}
