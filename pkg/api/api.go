// Package api serves the graph store over a read-only HTTP API.
//
//	GET /healthz                          store reachability
//	GET /artifacts?status=placeholder     list records, optional status filter
//	GET /artifacts/{coord}                one record
//	GET /artifacts/{coord}/graph?depth=2  neighbourhood as DOT, or SVG with format=svg
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/render"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

// MaxGraphDepth bounds the depth query parameter of the graph endpoint.
const MaxGraphDepth = 5

// Handler provides the HTTP endpoints.
type Handler struct {
	store  store.Store
	logger *log.Logger
}

// NewHandler creates a handler reading from s.
func NewHandler(s store.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: s, logger: logger}
}

// Routes returns the router with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.Health)
	r.Route("/artifacts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{coord}", h.Get)
		r.Get("/{coord}/graph", h.Graph)
	})
	return r
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ListResponse is the body of GET /artifacts.
type ListResponse struct {
	Artifacts []*artifact.Record `json:"artifacts"`
	Total     int                `json:"total"`
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := h.store.Exists(ctx, artifact.Coordinate{Group: "health", Artifact: "check", Version: "0"}); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List returns all records, optionally filtered by ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := artifact.Status(r.URL.Query().Get("status"))
	switch status {
	case "", artifact.StatusResolved, artifact.StatusPlaceholder:
	default:
		h.writeError(w, http.StatusBadRequest, "invalid_status", "status must be resolved or placeholder")
		return
	}
	recs, err := h.store.Records(r.Context(), status)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{Artifacts: recs, Total: len(recs)})
}

// Get returns one record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinate(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), c)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not_found", "no record for "+c.String())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Graph renders the record's neighbourhood.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinate(w, r)
	if !ok {
		return
	}
	depth := 1
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 || d > MaxGraphDepth {
			h.writeError(w, http.StatusBadRequest, "invalid_depth", "depth must be between 0 and "+strconv.Itoa(MaxGraphDepth))
			return
		}
		depth = d
	}

	g, err := render.Neighbourhood(r.Context(), h.store, c, depth)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not_found", "no record for "+c.String())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "graph_failed", err.Error())
		return
	}
	dot := render.ToDOT(g, render.Options{Detailed: r.URL.Query().Get("detailed") == "true"})

	if r.URL.Query().Get("format") != "svg" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (h *Handler) coordinate(w http.ResponseWriter, r *http.Request) (artifact.Coordinate, bool) {
	c, err := artifact.Parse(chi.URLParam(r, "coord"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_coordinate", err.Error())
		return artifact.Coordinate{}, false
	}
	return c, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "took", time.Since(start).Round(time.Microsecond))
	})
}
