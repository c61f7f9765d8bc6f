// Package handler implements the HTTP API.
//
// # Endpoints
//
//	GET /api/directory?scope=<url>&format=json|yaml|text
//	GET /healthz
//
// /api/directory resolves the scope on every request. Without a scope the
// configured base URL is used. A requested scope must be on the base URL's
// host or a host from server.allowed_scopes; others get 400, since the
// server's directory token goes with every read. A failed hub listing answers 502 with an
// {error, details} body; nothing is cached between requests.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger around the mux. Logger records
// request metrics alongside the access log.
package handler
