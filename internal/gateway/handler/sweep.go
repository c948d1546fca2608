package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"nyaya/internal/sweep"
)

// SweepHandler triggers one outcome-sweep pass. Wired to an external
// cron scheduler; the pass itself is idempotent so overlapping or
// repeated triggers are harmless.
type SweepHandler struct {
	sweeper *sweep.Sweeper
}

func NewSweepHandler(sweeper *sweep.Sweeper) *SweepHandler {
	return &SweepHandler{sweeper: sweeper}
}

func (h *SweepHandler) Handle(w http.ResponseWriter, r *http.Request) {
	sent, err := h.sweeper.Run(r.Context())
	if err != nil {
		log.Printf("sweep: pass finished with error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    err == nil,
		"swept": sent,
	})
}
