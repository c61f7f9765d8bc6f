package domain

// SiteSet is an ordered set of site records keyed by normalized URL.
// It is the dedup context threaded through the association merge: the first
// record added for a URL wins, and the hub's own URL is never admitted.
type SiteSet struct {
	hubURL string
	seen   map[string]struct{}
	sites  []SiteRecord
}

// NewSiteSet creates an empty set that excludes the given hub URL
func NewSiteSet(hubURL string) *SiteSet {
	return &SiteSet{
		hubURL: NormalizeURL(hubURL),
		seen:   make(map[string]struct{}),
		sites:  make([]SiteRecord, 0),
	}
}

// Add appends rec unless its URL is empty, is the hub's own URL, or is already present.
// It reports whether rec was appended.
func (s *SiteSet) Add(rec SiteRecord) bool {
	key := rec.NormalizedURL()
	if key == "" || key == s.hubURL {
		return false
	}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.sites = append(s.sites, rec)
	return true
}

// AddAll adds records in order and returns how many were appended
func (s *SiteSet) AddAll(recs []SiteRecord) int {
	added := 0
	for _, rec := range recs {
		if s.Add(rec) {
			added++
		}
	}
	return added
}

// Sites returns a copy of the records in insertion order
func (s *SiteSet) Sites() []SiteRecord {
	out := make([]SiteRecord, len(s.sites))
	copy(out, s.sites)
	return out
}

// MergeSites merges association lists for a hub, highest precedence first.
// Each list is applied in full before the next, so an earlier list's titles
// win on conflict; the result is the first list in order followed by each later
// list's new entries in its own order. added[i] counts what lists[i] contributed.
func MergeSites(hubURL string, lists ...[]SiteRecord) (merged []SiteRecord, added []int) {
	set := NewSiteSet(hubURL)
	added = make([]int, len(lists))
	for i, list := range lists {
		added[i] = set.AddAll(list)
	}
	return set.Sites(), added
}
