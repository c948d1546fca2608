package server

import (
	"net/http"

	"nyaya/internal/gateway/handler"
	"nyaya/internal/gateway/middleware"
)

func NewMux(
	webhookHandler *handler.WebhookHandler,
	workerHandler *handler.WorkerHandler,
	artifactHandler *handler.ArtifactHandler,
	sweepHandler *handler.SweepHandler,
	queryHandler *handler.QueryHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Channel-facing endpoints
	mux.HandleFunc("POST /webhook/whatsapp", webhookHandler.Handle)
	mux.HandleFunc("POST /webhook/worker", workerHandler.Handle)
	mux.HandleFunc("GET /artifact/{id}", artifactHandler.Handle)

	// Operational endpoints
	mux.HandleFunc("POST /jobs/outcome-sweep", sweepHandler.Handle)
	mux.HandleFunc("GET /v1/legal-query", queryHandler.Handle)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.Logging(mux)
}
