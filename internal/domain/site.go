package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	// UntitledSite is the display title for associated sites that carry no title
	UntitledSite = "Untitled Site"
	// UntitledHub is the display title for hubs that carry no title
	UntitledHub = "Untitled Hub Site"
)

var urlFolder = cases.Fold()

// NormalizeURL returns the comparison key for a site URL.
// Comparison is case-insensitive; surrounding whitespace is ignored.
func NormalizeURL(raw string) string {
	return urlFolder.String(strings.TrimSpace(raw))
}

// SameURL reports whether two site URLs address the same site
func SameURL(a, b string) bool {
	return NormalizeURL(a) == NormalizeURL(b)
}

// SiteRecord is a single site as shown in the directory
type SiteRecord struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Key returns the identity of the record: its ID when known, else its normalized URL
func (s SiteRecord) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return NormalizeURL(s.URL)
}

// NormalizedURL returns the record's URL in comparison form
func (s SiteRecord) NormalizedURL() string {
	return NormalizeURL(s.URL)
}

// HubCandidate is a hub as surfaced by the directory listing, before verification.
// DepartmentTag is the raw hub identifier the search index uses to tag member sites.
type HubCandidate struct {
	SiteRecord
	DepartmentTag string `json:"department_tag,omitempty"`
	Description   string `json:"description,omitempty"`
}

// WebIdentity is a site's own identifier together with the hub it points to
type WebIdentity struct {
	SelfID       string
	HubPointerID string
}

// DeclaredSite is one entry of a hub's self-declared association list
type DeclaredSite struct {
	SiteID  string `json:"SiteId"`
	Title   string `json:"Title"`
	SiteURL string `json:"SiteUrl"`
}

// Record maps the declared entry to a SiteRecord, filling in the placeholder title
func (d DeclaredSite) Record() SiteRecord {
	title := d.Title
	if title == "" {
		title = UntitledSite
	}
	return SiteRecord{ID: d.SiteID, Title: title, URL: d.SiteURL}
}

// SearchCell is one key/value pair of a search result row
type SearchCell struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// SearchRow is a sparse search result row
type SearchRow struct {
	Cells []SearchCell `json:"Cells"`
}

// Value returns the value of the named cell, or "" when the row has no such cell
func (r SearchRow) Value(key string) string {
	for _, c := range r.Cells {
		if c.Key == key {
			return c.Value
		}
	}
	return ""
}

// Record maps the row's SiteId, Title and Path cells to a SiteRecord.
// ok is false when the row has no Path, since such a row cannot be placed in the tree.
func (r SearchRow) Record() (rec SiteRecord, ok bool) {
	path := r.Value("Path")
	if path == "" {
		return SiteRecord{}, false
	}
	title := r.Value("Title")
	if title == "" {
		title = UntitledSite
	}
	return SiteRecord{ID: r.Value("SiteId"), Title: title, URL: path}, true
}
