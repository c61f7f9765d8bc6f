package adapter

import (
	"context"

	"github.com/rs/zerolog"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/observability"
)

// Searcher queries the search index for sites tagged with a hub
type Searcher interface {
	SearchByAffiliation(ctx context.Context, q directory.SearchQuery) ([]domain.SearchRow, error)
}

// SearchSource finds a hub's sites through the search index affiliation tag
type SearchSource struct {
	searcher Searcher
	rowLimit int
	log      zerolog.Logger
}

var _ Source = (*SearchSource)(nil)

// NewSearchSource creates the search source. A rowLimit <= 0 uses directory.DefaultRowLimit.
func NewSearchSource(searcher Searcher, rowLimit int, logger zerolog.Logger) *SearchSource {
	if rowLimit <= 0 {
		rowLimit = directory.DefaultRowLimit
	}
	return &SearchSource{
		searcher: searcher,
		rowLimit: rowLimit,
		log:      logger.With().Str("component", "search").Logger(),
	}
}

// Name returns the source identifier
func (s *SearchSource) Name() string {
	return observability.SourceSearch
}

// Priority returns the source priority
func (s *SearchSource) Priority() int {
	return 50
}

// Sites returns the sites whose affiliation tag is the hub's department tag
func (s *SearchSource) Sites(ctx context.Context, scope string, hub domain.HubCandidate) []domain.SiteRecord {
	rows, err := s.searcher.SearchByAffiliation(ctx, directory.SearchQuery{
		Scope:      scope,
		HubID:      hub.DepartmentTag,
		ExcludeURL: hub.URL,
		RowLimit:   s.rowLimit,
	})
	if err != nil {
		observability.RecordSourceFailure(observability.SourceSearch)
		s.log.Warn().Err(err).Str("hub", hub.URL).Msg("affiliation search unavailable")
		return []domain.SiteRecord{}
	}

	sites := make([]domain.SiteRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := row.Record()
		if !ok {
			continue
		}
		sites = append(sites, rec)
	}
	return sites
}
