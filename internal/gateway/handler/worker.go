package handler

import (
	"io"
	"log"
	"net/http"

	"nyaya/internal/flow"
	"nyaya/internal/queue"
)

// WorkerHandler is the queue's delivery target. It verifies the queue
// signature, re-parses the original webhook payload and runs the same
// turn the inline path would. A 5xx response makes the queue redeliver,
// so transient failures retry for free.
type WorkerHandler struct {
	runner     *flow.Runner
	signingKey string
}

func NewWorkerHandler(runner *flow.Runner, signingKey string) *WorkerHandler {
	return &WorkerHandler{runner: runner, signingKey: signingKey}
}

func (h *WorkerHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	if err := queue.Verify(h.signingKey, r.Header.Get(queue.SignatureHeader), raw); err != nil {
		log.Printf("worker: rejected: %v", err)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	if err := runTurn(r.Context(), h.runner, raw); err != nil {
		log.Printf("worker: turn failed: %v", err)
		http.Error(w, "turn failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
