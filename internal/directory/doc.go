// Package directory reads hubs and sites from a site directory.
//
// Client is the read contract used by the resolution pipeline. HTTPClient
// implements it against the REST API:
//
//	GET {scope}/_api/HubSites                       hub listing
//	GET {site}/_api/web?$select=Id,HubSiteId        identity record
//	GET {hub}/_api/web/HubSiteData                  declared associations
//	GET {scope}/_api/search/query?querytext=...     affiliation search
//
// Responses are decoded into typed payloads at this boundary. The declared
// associations arrive as a JSON document inside a JSON string; EncodedHubData
// keeps it opaque until the caller decodes it.
//
// Failures are *FetchFailed (transport or non-2xx) or *DecodeFailed
// (malformed body). The client never retries.
package directory
