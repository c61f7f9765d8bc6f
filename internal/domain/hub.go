package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NilHubID is the all-zero identifier the directory uses for "no hub"
const NilHubID = "00000000-0000-0000-0000-000000000000"

// IsHubRoot applies the hub identity rule to a site's identity record.
// A site is a hub root when its hub pointer is unset, is the nil GUID, or points at itself.
func IsHubRoot(id WebIdentity) bool {
	pointer := strings.TrimSpace(id.HubPointerID)
	if pointer == "" {
		return true
	}
	if p, err := uuid.Parse(pointer); err == nil {
		if p == uuid.Nil {
			return true
		}
		if self, err := uuid.Parse(strings.TrimSpace(id.SelfID)); err == nil {
			return p == self
		}
	}
	// Non-GUID identifiers compare case-insensitively
	return strings.EqualFold(pointer, strings.TrimSpace(id.SelfID))
}

// HubNode is a verified hub together with its resolved associated sites
type HubNode struct {
	Record          SiteRecord   `json:"record" yaml:"record"`
	Description     string       `json:"description,omitempty" yaml:"description,omitempty"`
	AssociatedSites []SiteRecord `json:"associatedSites" yaml:"associated_sites"`
	Highlighted     bool         `json:"highlighted" yaml:"highlighted"`
}

// NewHubNode builds a node for a verified candidate
func NewHubNode(c HubCandidate, associated []SiteRecord) HubNode {
	if associated == nil {
		associated = []SiteRecord{}
	}
	return HubNode{
		Record:          c.SiteRecord,
		Description:     c.Description,
		AssociatedSites: associated,
	}
}
