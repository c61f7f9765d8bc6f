package adapter

import (
	"context"

	"sitedirectory/internal/domain"
)

// Source is one independent way of discovering the sites associated with a hub.
// Sources never fail: an unreachable or malformed source yields no sites.
type Source interface {
	// Name returns the unique identifier for this source
	Name() string

	// Priority determines which source wins in conflicts (higher = applied first)
	Priority() int

	// Sites returns the hub's associated sites as seen by this source, in source order
	Sites(ctx context.Context, scope string, hub domain.HubCandidate) []domain.SiteRecord
}

// SourceResult is what one source contributed to a hub's associations
type SourceResult struct {
	Source string
	Found  int
	Added  int
}
