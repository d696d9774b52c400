package api

import (
	"errors"
	"net/http"

	"github.com/fpang/disk-explorer/internal/thumbnail"
)

// GET /api/thumbnail?path=...
func (h *Handler) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	absPath, ok := requestPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	if err := h.thumbSem.Acquire(r.Context(), 1); err != nil {
		httpError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	defer h.thumbSem.Release(1)

	result, err := h.thumbnails.Generate(absPath)
	if err != nil {
		status, stage := thumbnailErrorStatus(err)
		logFor(r).Warn().Err(err).Str("path", absPath).Str("stage", stage).Msg("Thumbnail generation failed")
		respondJSON(w, status, errorResponse{Error: err.Error(), Stage: stage})
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, result)
}

// thumbnailErrorStatus maps a pipeline failure to an HTTP status and stage name.
func thumbnailErrorStatus(err error) (int, string) {
	var te *thumbnail.Error
	if !errors.As(err, &te) {
		return http.StatusInternalServerError, ""
	}
	switch te.Stage {
	case thumbnail.StageLoad:
		return http.StatusNotFound, te.Stage.String()
	case thumbnail.StageDecode:
		return http.StatusUnsupportedMediaType, te.Stage.String()
	case thumbnail.StageResize:
		return http.StatusUnprocessableEntity, te.Stage.String()
	default:
		return http.StatusInternalServerError, te.Stage.String()
	}
}
