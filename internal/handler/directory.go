package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"sitedirectory/internal/codec"
	"sitedirectory/internal/domain"
	"sitedirectory/internal/service"
)

// DirectoryResolver resolves the hub tree of a scope
type DirectoryResolver interface {
	ResolveDirectory(ctx context.Context, scope string) (*domain.DirectoryTree, error)
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status string `json:"status"`
	Scope  string `json:"scope,omitempty"`
}

// DirectoryHandler serves resolved directory trees
type DirectoryHandler struct {
	svc          DirectoryResolver
	defaultScope string
	scopes       *ScopeGuard
	log          zerolog.Logger
}

// NewDirectoryHandler creates a new directory handler. defaultScope is used
// when a request names no scope. A requested scope must share scheme and host
// with defaultScope or one of allowedScopes.
func NewDirectoryHandler(svc DirectoryResolver, defaultScope string, allowedScopes []string, logger zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		svc:          svc,
		defaultScope: defaultScope,
		scopes:       NewScopeGuard(append([]string{defaultScope}, allowedScopes...)...),
		log:          logger.With().Str("component", "http").Logger(),
	}
}

// Routes registers the handler's endpoints on mux
func (h *DirectoryHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/directory", h.GetDirectory)
	mux.HandleFunc("GET /healthz", h.Health)
}

// GetDirectory resolves and returns the directory tree.
// ?format=yaml|text selects another codec; the default is JSON.
func (h *DirectoryHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	if scope != "" && !h.scopes.Allows(scope) {
		h.log.Warn().Str("scope", scope).Msg("rejected scope outside allowed hosts")
		h.writeError(w, "Scope not allowed", "scope must be on the host of directory.base_url or server.allowed_scopes", http.StatusBadRequest)
		return
	}
	if scope == "" {
		scope = h.defaultScope
	}
	if scope == "" {
		h.writeError(w, "Missing scope", "pass ?scope= or configure directory.base_url", http.StatusBadRequest)
		return
	}

	var exporter codec.Exporter = codec.NewJSONCodec()
	if format := r.URL.Query().Get("format"); format != "" {
		e, err := codec.ForFormat(format)
		if err != nil {
			h.writeError(w, "Invalid format", err.Error(), http.StatusBadRequest)
			return
		}
		exporter = e
	}

	tree, err := h.svc.ResolveDirectory(r.Context(), scope)
	if err != nil {
		var failed *service.DirectoryResolutionFailed
		if errors.As(err, &failed) {
			h.log.Warn().Err(err).Str("scope", scope).Msg("directory resolution failed")
			h.writeError(w, "Failed to resolve directory", err.Error(), http.StatusBadGateway)
			return
		}
		h.log.Error().Err(err).Str("scope", scope).Msg("unexpected resolution error")
		h.writeError(w, "Failed to resolve directory", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := exporter.Export(tree, w); err != nil {
		// headers already sent
		h.log.Error().Err(err).Str("format", exporter.Format()).Msg("failed to write directory")
	}
}

// Health reports liveness without touching the directory
func (h *DirectoryHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, HealthResponse{Status: "ok", Scope: h.defaultScope}, http.StatusOK)
}

func (h *DirectoryHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON")
	}
}

func (h *DirectoryHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
