package adapter

import (
	"context"

	"github.com/rs/zerolog"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/observability"
)

// DeclaredFetcher retrieves a hub's declared association payload
type DeclaredFetcher interface {
	GetDeclaredAssociations(ctx context.Context, hubURL string) (directory.EncodedHubData, error)
}

// DeclaredSource reads the associations a hub declares about itself
type DeclaredSource struct {
	fetcher DeclaredFetcher
	log     zerolog.Logger
}

var _ Source = (*DeclaredSource)(nil)

// NewDeclaredSource creates the declared-associations source
func NewDeclaredSource(fetcher DeclaredFetcher, logger zerolog.Logger) *DeclaredSource {
	return &DeclaredSource{
		fetcher: fetcher,
		log:     logger.With().Str("component", "declared").Logger(),
	}
}

// Name returns the source identifier
func (s *DeclaredSource) Name() string {
	return observability.SourceDeclared
}

// Priority returns the source priority; declarations win over search
func (s *DeclaredSource) Priority() int {
	return 100
}

// Sites returns the declared sites that have a URL other than the hub's own
func (s *DeclaredSource) Sites(ctx context.Context, scope string, hub domain.HubCandidate) []domain.SiteRecord {
	payload, err := s.fetcher.GetDeclaredAssociations(ctx, hub.URL)
	if err != nil {
		observability.RecordSourceFailure(observability.SourceDeclared)
		s.log.Warn().Err(err).Str("hub", hub.URL).Msg("declared associations unavailable")
		return []domain.SiteRecord{}
	}

	declared, err := payload.Decode()
	if err != nil {
		observability.RecordSourceFailure(observability.SourceDeclared)
		s.log.Warn().Err(err).Str("hub", hub.URL).Msg("declared associations malformed")
		return []domain.SiteRecord{}
	}

	hubKey := hub.NormalizedURL()
	sites := make([]domain.SiteRecord, 0, len(declared))
	for _, d := range declared {
		if d.SiteURL == "" || domain.NormalizeURL(d.SiteURL) == hubKey {
			continue
		}
		sites = append(sites, d.Record())
	}
	return sites
}
