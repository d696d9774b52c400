package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/fpang/disk-explorer/internal/filehandler"
)

// defaultAgingDays applies when /api/aging is called without days.
const defaultAgingDays = 365

// scanError writes the response for a failed directory scan.
func scanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logFor(r).Debug().Err(err).Msg("Scan canceled")
		httpError(w, http.StatusServiceUnavailable, "scan canceled")
	case errors.Is(err, fs.ErrNotExist):
		httpError(w, http.StatusNotFound, "path not found")
	case errors.Is(err, filehandler.ErrNotDirectory):
		httpError(w, http.StatusBadRequest, "path is not a directory")
	case errors.Is(err, fs.ErrPermission):
		httpError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, filehandler.ErrInvalidAgeMode):
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		logFor(r).Error().Err(err).Msg("Scan failed")
		httpError(w, http.StatusInternalServerError, err.Error())
	}
}

// GET /api/insights?path=...
func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	root, ok := requestPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	ins, err := filehandler.GetInsights(r.Context(), root)
	if err != nil {
		scanError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ins)
}

// GET /api/duplicates?path=...
func (h *Handler) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	root, ok := requestPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	groups, err := filehandler.FindDuplicates(r.Context(), root)
	if err != nil {
		scanError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// GET /api/aging?path=...&days=365&mode=modified|accessed
func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	root, ok := requestPath(w, q.Get("path"))
	if !ok {
		return
	}

	days := defaultAgingDays
	if s := q.Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}

	files, err := filehandler.FindAging(r.Context(), root, days, filehandler.AgeMode(q.Get("mode")))
	if err != nil {
		scanError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

type searchRequest struct {
	Path string `json:"path"`
	filehandler.Filter
}

// POST /api/search {"path": ..., "minSize": ..., "types": [...], ...}
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	root, ok := requestPath(w, req.Path)
	if !ok {
		return
	}

	files, err := filehandler.Search(r.Context(), root, req.Filter)
	if err != nil {
		scanError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}
