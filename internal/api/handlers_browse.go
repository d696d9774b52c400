package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fpang/disk-explorer/internal/filehandler"
	"github.com/fpang/disk-explorer/internal/picker"
)

// GET /api/browse?path=...
// Lists the home directory when path is empty.
func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dirPath := r.URL.Query().Get("path")
	if dirPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "cannot determine home directory")
			return
		}
		dirPath = home
	}

	absPath, ok := requestPath(w, dirPath)
	if !ok {
		return
	}

	listing, err := filehandler.ListDirectory(absPath)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			httpError(w, http.StatusNotFound, "path not found")
		case errors.Is(err, filehandler.ErrNotDirectory):
			httpError(w, http.StatusBadRequest, "path is not a directory")
		case errors.Is(err, fs.ErrPermission):
			httpError(w, http.StatusForbidden, "permission denied")
		default:
			httpError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, listing)
}

// GET /api/info?path=...
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	absPath, ok := requestPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	info, err := filehandler.Describe(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			httpError(w, http.StatusNotFound, "path not found")
			return
		}
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// GET /api/file?path=...
// Serves the original bytes of a supported media file.
func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	absPath, ok := requestPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	info, err := os.Stat(absPath)
	if err != nil {
		httpError(w, http.StatusNotFound, "file not found")
		return
	}
	if info.IsDir() {
		httpError(w, http.StatusBadRequest, "path is a directory")
		return
	}
	if !filehandler.IsSupported(filepath.Ext(absPath)) {
		httpError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	http.ServeFile(w, r, absPath)
}

// POST /api/pick
// Opens a native OS file/directory picker dialog and returns selected paths.
func (h *Handler) handlePick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.picker == nil {
		httpError(w, http.StatusNotImplemented, "native picker is disabled")
		return
	}

	var req struct {
		Mode picker.Mode `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mode != picker.ModeFiles && req.Mode != picker.ModeDirectory {
		httpError(w, http.StatusBadRequest, "mode must be 'files' or 'directory'")
		return
	}

	sel, err := h.picker.Pick(req.Mode)
	if err != nil {
		logFor(r).Error().Err(err).Str("mode", string(req.Mode)).Msg("Picker failed")
		httpError(w, http.StatusInternalServerError, "picker failed")
		return
	}
	if sel.Paths == nil {
		sel.Paths = []string{}
	}
	respondJSON(w, http.StatusOK, sel)
}
