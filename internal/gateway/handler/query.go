package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"nyaya/internal/knowledge"
)

// QueryHandler exposes the provision corpus for read-only lookups, the
// same retrieval that grounds drafting.
type QueryHandler struct {
	corpus *knowledge.Corpus
}

func NewQueryHandler(corpus *knowledge.Corpus) *QueryHandler {
	return &QueryHandler{corpus: corpus}
}

func (h *QueryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Error(w, `missing query parameter "q"`, http.StatusBadRequest)
		return
	}

	hits := h.corpus.Search(q)
	if hits == nil {
		hits = []knowledge.Provision{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"query":   q,
		"results": hits,
	})
}
