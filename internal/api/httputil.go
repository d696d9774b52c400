package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// containsPathTraversal returns true if the path contains ".." segments.
//
// The raw segments are checked before filepath.Clean resolves them, because
// Clean("/tmp/../etc") silently produces "/etc" with no ".." remaining.
func containsPathTraversal(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// requestPath validates a client-supplied path and returns it in absolute
// form. On failure it writes a 400 response and returns false.
func requestPath(w http.ResponseWriter, p string) (string, bool) {
	if p == "" {
		httpError(w, http.StatusBadRequest, "path is required")
		return "", false
	}
	if containsPathTraversal(p) {
		httpError(w, http.StatusBadRequest, "invalid path")
		return "", false
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid path")
		return "", false
	}
	return absPath, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// decodeBody reads a JSON request body into v. Anything but an
// application/json body is answered with 415, malformed JSON with 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		httpError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// logFor returns the request-scoped logger installed by withRequestID.
func logFor(r *http.Request) *zerolog.Logger {
	return log.Ctx(r.Context())
}
