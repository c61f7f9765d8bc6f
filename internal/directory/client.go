package directory

import (
	"context"

	"sitedirectory/internal/domain"
)

// DefaultRowLimit caps the number of rows requested from the search index
const DefaultRowLimit = 500

// HubEntry is one row of the directory-wide hub listing
type HubEntry struct {
	ID          string `json:"ID"`
	SiteID      string `json:"SiteId"`
	Title       string `json:"Title"`
	SiteURL     string `json:"SiteUrl"`
	Description string `json:"Description"`
}

// Candidate converts the listing row into a hub candidate.
// The hub ID falls back to the site ID; the same value tags member sites in search.
func (e HubEntry) Candidate() domain.HubCandidate {
	id := e.ID
	if id == "" {
		id = e.SiteID
	}
	title := e.Title
	if title == "" {
		title = domain.UntitledHub
	}
	return domain.HubCandidate{
		SiteRecord:    domain.SiteRecord{ID: id, Title: title, URL: e.SiteURL},
		DepartmentTag: id,
		Description:   e.Description,
	}
}

// SearchQuery selects sites tagged with a hub's affiliation identifier
type SearchQuery struct {
	Scope      string
	HubID      string
	ExcludeURL string
	RowLimit   int
}

// Limit returns the effective row cap
func (q SearchQuery) Limit() int {
	if q.RowLimit <= 0 {
		return DefaultRowLimit
	}
	return q.RowLimit
}

// Client reads hub and site data from a directory.
// Implementations never retry and never swallow errors: failures are returned as
// *FetchFailed or *DecodeFailed and callers decide whether to recover.
type Client interface {
	// ListHubs returns every hub registered in the scope, in directory order
	ListHubs(ctx context.Context, scope string) ([]HubEntry, error)

	// GetWebIdentity returns a site's own ID and the hub it points to
	GetWebIdentity(ctx context.Context, siteURL string) (domain.WebIdentity, error)

	// GetDeclaredAssociations returns the hub's encoded association payload
	GetDeclaredAssociations(ctx context.Context, hubURL string) (EncodedHubData, error)

	// SearchByAffiliation returns search rows for sites tagged with the hub ID
	SearchByAffiliation(ctx context.Context, q SearchQuery) ([]domain.SearchRow, error)
}
