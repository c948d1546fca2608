package handler

import (
	"errors"
	"log"
	"net/http"

	"nyaya/internal/artifact"
)

// ArtifactHandler serves generated documents and voice notes exactly
// once. A second fetch of the same id gets 404, which is what makes the
// download links safe to send over a chat channel.
type ArtifactHandler struct {
	cache artifact.Cache
}

func NewArtifactHandler(cache artifact.Cache) *ArtifactHandler {
	return &ArtifactHandler{cache: cache}
}

func (h *ArtifactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	blob, err := h.cache.Take(r.Context(), id)
	if errors.Is(err, artifact.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("artifact: take %s: %v", id, err)
		http.Error(w, "artifact unavailable", http.StatusInternalServerError)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
