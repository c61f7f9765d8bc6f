// Package domain defines the hub directory model.
//
// A SiteRecord identifies one site by ID, title and URL. URLs are the
// identity key throughout: they are compared after trimming and Unicode case
// folding, so two records with the same normalized URL are the same site.
//
// The directory listing yields HubCandidates. A candidate becomes a HubNode
// only when its WebIdentity passes IsHubRoot. Each HubNode carries the
// associated sites collected for it, deduplicated by a SiteSet that is seeded
// with the hub's own URL so a hub never lists itself.
//
// DirectoryTree is the final result: verified hubs in listing order.
package domain
