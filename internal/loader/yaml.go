// Package loader parses YAML directory fixtures into snapshots.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sitedirectory/internal/directory"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/repository"
)

// FixtureYAML represents the YAML file structure of a directory fixture
type FixtureYAML struct {
	Scope string        `yaml:"scope"`
	Hubs  []HubYAML     `yaml:"hubs"`
	Sites []SiteYAML    `yaml:"sites,omitempty"`
	Webs  []WebYAML     `yaml:"webs,omitempty"`
	Index []IndexedYAML `yaml:"index,omitempty"`
}

// HubYAML represents a hub listing entry together with its identity and declarations
type HubYAML struct {
	ID          string `yaml:"id"`
	SiteID      string `yaml:"site_id,omitempty"`
	Title       string `yaml:"title,omitempty"`
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
	// HubPointer is the hub the site's identity record points to.
	// Omitted means the hub points to itself.
	HubPointer *string `yaml:"hub_pointer,omitempty"`
	// NoIdentity leaves the hub without an identity record
	NoIdentity bool `yaml:"no_identity,omitempty"`
	// Associated are the sites the hub declares
	Associated []AssociatedYAML `yaml:"associated,omitempty"`
	// AssociatedRaw replaces the encoded declaration payload verbatim
	AssociatedRaw string `yaml:"associated_raw,omitempty"`
}

// AssociatedYAML represents a declared associated site
type AssociatedYAML struct {
	SiteID string `yaml:"site_id,omitempty"`
	Title  string `yaml:"title,omitempty"`
	URL    string `yaml:"url"`
}

// SiteYAML represents a member site; it is indexed under its hub and given an identity
type SiteYAML struct {
	Hub    string `yaml:"hub"`
	SiteID string `yaml:"site_id,omitempty"`
	Title  string `yaml:"title,omitempty"`
	URL    string `yaml:"url"`
}

// WebYAML represents an explicit identity record
type WebYAML struct {
	URL        string `yaml:"url"`
	ID         string `yaml:"id"`
	HubPointer string `yaml:"hub_pointer,omitempty"`
}

// IndexedYAML represents a raw search index entry
type IndexedYAML struct {
	Path         string `yaml:"path"`
	SiteID       string `yaml:"site_id,omitempty"`
	Title        string `yaml:"title,omitempty"`
	Department   string `yaml:"department"`
	ContentClass string `yaml:"content_class,omitempty"`
}

// LoadYAML loads a directory fixture from a YAML file
func LoadYAML(path string) (*repository.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses a directory fixture from YAML bytes
func ParseYAML(data []byte) (*repository.Snapshot, error) {
	var fixture FixtureYAML
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return convertFixture(&fixture)
}

func convertFixture(f *FixtureYAML) (*repository.Snapshot, error) {
	snap := &repository.Snapshot{Scope: f.Scope}
	hubsByID := make(map[string]string, len(f.Hubs))

	for i, h := range f.Hubs {
		if h.URL == "" {
			return nil, fmt.Errorf("hub %d: url is required", i)
		}
		entry := directory.HubEntry{
			ID:          h.ID,
			SiteID:      h.SiteID,
			Title:       h.Title,
			SiteURL:     h.URL,
			Description: h.Description,
		}
		snap.Hubs = append(snap.Hubs, entry)
		tag := entry.Candidate().DepartmentTag
		hubsByID[tag] = h.URL

		if !h.NoIdentity {
			webID := h.SiteID
			if webID == "" {
				webID = tag
			}
			pointer := webID
			if h.HubPointer != nil {
				pointer = *h.HubPointer
			}
			snap.Webs = append(snap.Webs, repository.Web{URL: h.URL, ID: webID, HubSiteID: pointer})
		}

		if h.AssociatedRaw != "" || len(h.Associated) > 0 {
			data := repository.HubData{HubURL: h.URL, Raw: h.AssociatedRaw}
			for _, a := range h.Associated {
				data.Sites = append(data.Sites, domain.DeclaredSite{SiteID: a.SiteID, Title: a.Title, SiteURL: a.URL})
			}
			snap.HubData = append(snap.HubData, data)
		}
	}

	for i, s := range f.Sites {
		if s.URL == "" {
			return nil, fmt.Errorf("site %d: url is required", i)
		}
		if _, ok := hubsByID[s.Hub]; !ok {
			return nil, fmt.Errorf("site %s: unknown hub %q", s.URL, s.Hub)
		}
		snap.Index = append(snap.Index, repository.IndexedSite{
			Path:         s.URL,
			SiteID:       s.SiteID,
			Title:        s.Title,
			DepartmentID: s.Hub,
		})
		if s.SiteID != "" {
			snap.Webs = append(snap.Webs, repository.Web{URL: s.URL, ID: s.SiteID, HubSiteID: s.Hub})
		}
	}

	for _, w := range f.Webs {
		snap.Webs = append(snap.Webs, repository.Web{URL: w.URL, ID: w.ID, HubSiteID: w.HubPointer})
	}

	for _, e := range f.Index {
		snap.Index = append(snap.Index, repository.IndexedSite{
			Path:         e.Path,
			SiteID:       e.SiteID,
			Title:        e.Title,
			DepartmentID: e.Department,
			ContentClass: e.ContentClass,
		})
	}

	return snap, nil
}
