package api

import (
	"errors"
	"io/fs"
	"net/http"
)

type openRequest struct {
	Path string `json:"path"`
}

// POST /api/open {"path": ...}
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	h.serveOpen(w, r, h.opener.Open)
}

// POST /api/open-folder {"path": ...}
func (h *Handler) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	h.serveOpen(w, r, h.opener.OpenContainingFolder)
}

func (h *Handler) serveOpen(w http.ResponseWriter, r *http.Request, open func(string) error) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req openRequest
	if !decodeBody(w, r, &req) {
		return
	}
	absPath, ok := requestPath(w, req.Path)
	if !ok {
		return
	}

	if err := open(absPath); err != nil {
		logFor(r).Warn().Err(err).Str("path", absPath).Msg("Open failed")
		if errors.Is(err, fs.ErrNotExist) {
			httpError(w, http.StatusNotFound, err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
