// Package adapter implements hub verification and associated-site discovery.
//
// # Hub Verifier
//
// HubVerifier checks that a hub surfaced by the directory listing is a hub
// root: its identity record's hub pointer is unset, the nil GUID, or its own
// ID. A site pointing at a different hub is a member that the listing
// surfaced by mistake. When the identity record cannot be fetched the verifier
// falls back to its policy, fail-open by default.
//
// # Sources
//
// A Source discovers the sites associated with one hub. Two sources exist:
//
// DeclaredSource reads the association list the hub declares about itself.
// The payload is a JSON document embedded in the response and decoded in a
// second step.
//
// SearchSource queries the search index for sites whose affiliation tag
// matches the hub, capped at a row limit.
//
// Sources absorb their own failures and return no sites instead.
//
// # Resolver
//
// Resolver fetches all sources for a hub concurrently, then merges them in
// priority order with domain.MergeSites. Declarations outrank search, so a
// site found by both keeps its declared title. The hub's own URL never
// appears in its associations.
package adapter
