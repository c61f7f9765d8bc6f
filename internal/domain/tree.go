package domain

import "time"

// DirectoryTree is the resolved hub hierarchy, in directory listing order
type DirectoryTree struct {
	Scope      string    `json:"scope" yaml:"scope"`
	ResolvedAt time.Time `json:"resolvedAt" yaml:"resolved_at"`
	Hubs       []HubNode `json:"hubs" yaml:"hubs"`
}

// TreeStats summarizes a tree for presenters
type TreeStats struct {
	Hubs            int `json:"hubs"`
	AssociatedSites int `json:"associatedSites"`
	Highlighted     int `json:"highlighted"`
}

// NewDirectoryTree creates an empty tree for a scope
func NewDirectoryTree(scope string) *DirectoryTree {
	return &DirectoryTree{
		Scope:      scope,
		ResolvedAt: time.Now().UTC(),
		Hubs:       make([]HubNode, 0),
	}
}

// AddHub appends a hub node
func (t *DirectoryTree) AddHub(hub HubNode) {
	t.Hubs = append(t.Hubs, hub)
}

// Stats counts hubs and associated sites
func (t *DirectoryTree) Stats() TreeStats {
	stats := TreeStats{Hubs: len(t.Hubs)}
	for _, h := range t.Hubs {
		stats.AssociatedSites += len(h.AssociatedSites)
		if h.Highlighted {
			stats.Highlighted++
		}
	}
	return stats
}
