package repository

import (
	"context"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
)

// Snapshot is a point-in-time copy of a directory's read endpoints
type Snapshot struct {
	Scope   string
	Hubs    []directory.HubEntry
	Webs    []Web
	HubData []HubData
	Index   []IndexedSite
}

// Web is the identity record of one site
type Web struct {
	URL       string
	ID        string
	HubSiteID string
}

// HubData is the association payload a hub declares.
// Raw, when set, is stored verbatim; otherwise Sites is encoded.
type HubData struct {
	HubURL string
	Sites  []domain.DeclaredSite
	Raw    string
}

// IndexedSite is one entry of the search index
type IndexedSite struct {
	Path         string
	SiteID       string
	Title        string
	DepartmentID string
	ContentClass string
}

// Repository is a directory backed by a local snapshot
type Repository interface {
	directory.Client

	// Import replaces the snapshot contents
	Import(ctx context.Context, snap *Snapshot) error

	// Close releases resources
	Close() error
}
