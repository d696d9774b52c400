// Package api serves the disk-explorer HTTP API consumed by the desktop UI.
package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/sync/semaphore"

	"github.com/fpang/disk-explorer/internal/picker"
	"github.com/fpang/disk-explorer/internal/thumbnail"
	"github.com/fpang/disk-explorer/internal/volumes"
)

// ThumbnailGenerator produces a thumbnail for an image path.
type ThumbnailGenerator interface {
	Generate(path string) (*thumbnail.Result, error)
}

// Opener hands paths to the operating system.
type Opener interface {
	Open(path string) error
	OpenContainingFolder(path string) error
}

// Options wires the collaborators and HTTP policy of a Handler.
type Options struct {
	Thumbnails ThumbnailGenerator
	Volumes    volumes.Lister
	Opener     Opener
	// Picker is optional; without it /api/pick answers 501.
	Picker picker.Picker

	// MaxConcurrentThumbnails bounds in-flight thumbnail generations. Values
	// below 1 are treated as 1.
	MaxConcurrentThumbnails int
	// AllowedOrigins are CORS origins accepted in addition to localhost.
	// Requests carrying any other Origin are refused.
	AllowedOrigins []string
	// Host is the address the server is bound to. When it is a specific
	// host it is accepted in the Host header alongside the loopback names.
	Host string
	// AllowedHosts are extra Host header names to accept.
	AllowedHosts []string
	// Gzip enables response compression.
	Gzip bool
}

// Handler routes /api/* requests.
type Handler struct {
	thumbnails ThumbnailGenerator
	volumes    volumes.Lister
	opener     Opener
	picker     picker.Picker

	thumbSem *semaphore.Weighted
	origins  map[string]bool
	hosts    map[string]bool

	handler http.Handler
}

// NewHandler builds the API handler with its middleware chain.
func NewHandler(opts Options) *Handler {
	limit := opts.MaxConcurrentThumbnails
	if limit < 1 {
		limit = 1
	}

	h := &Handler{
		thumbnails: opts.Thumbnails,
		volumes:    opts.Volumes,
		opener:     opts.Opener,
		picker:     opts.Picker,
		thumbSem:   semaphore.NewWeighted(int64(limit)),
		origins:    make(map[string]bool, len(opts.AllowedOrigins)),
		hosts:      map[string]bool{"localhost": true, "127.0.0.1": true, "::1": true},
	}
	for _, o := range opts.AllowedOrigins {
		h.origins[o] = true
	}
	if ip := net.ParseIP(opts.Host); opts.Host != "" && (ip == nil || !ip.IsUnspecified()) {
		h.hosts[strings.ToLower(opts.Host)] = true
	}
	for _, host := range opts.AllowedHosts {
		h.hosts[strings.ToLower(host)] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/volumes", h.handleVolumes)
	mux.HandleFunc("/api/thumbnail", h.handleThumbnail)
	mux.HandleFunc("/api/browse", h.handleBrowse)
	mux.HandleFunc("/api/info", h.handleInfo)
	mux.HandleFunc("/api/file", h.handleFile)
	mux.HandleFunc("/api/open", h.handleOpen)
	mux.HandleFunc("/api/open-folder", h.handleOpenFolder)
	mux.HandleFunc("/api/pick", h.handlePick)
	mux.HandleFunc("/api/insights", h.handleInsights)
	mux.HandleFunc("/api/duplicates", h.handleDuplicates)
	mux.HandleFunc("/api/aging", h.handleAging)
	mux.HandleFunc("/api/search", h.handleSearch)

	var handler http.Handler = withRequestID(withLogging(h.withHostCheck(h.withCORS(mux))))
	if opts.Gzip {
		handler = gzhttp.GzipHandler(handler)
	}
	h.handler = handler
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// GET /api/health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GET /api/volumes
func (h *Handler) handleVolumes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	roots, err := h.volumes.List(r.Context())
	if err != nil {
		logFor(r).Error().Err(err).Msg("Volume listing failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"volumes": roots})
}
