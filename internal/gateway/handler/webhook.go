// Package handler implements the gateway's HTTP endpoints: the inbound
// messaging webhook, the queue-worker callback, one-time artifact
// downloads, the outcome-sweep trigger and the knowledge query API.
package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nyaya/internal/channel"
	"nyaya/internal/flow"
	"nyaya/internal/queue"
)

// maxWebhookBody bounds the raw form payload we are willing to parse.
const maxWebhookBody = 64 << 10

const channelAck = "<Response></Response>"

const turnTimeout = 60 * time.Second

// WebhookHandler receives inbound channel messages. With a queue
// publisher configured it enqueues the raw payload and acks
// immediately; without one it runs the turn inline. Either way the
// channel always gets its empty TwiML ack, because a non-2xx here
// makes the provider surface an error bubble to the user.
type WebhookHandler struct {
	runner    *flow.Runner
	publisher *queue.Publisher // nil = inline mode
	authToken string
	env       string
}

func NewWebhookHandler(runner *flow.Runner, publisher *queue.Publisher, authToken, env string) *WebhookHandler {
	return &WebhookHandler{runner: runner, publisher: publisher, authToken: authToken, env: env}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	params, err := url.ParseQuery(string(raw))
	if err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	if h.authToken != "" {
		sig := r.Header.Get("X-Twilio-Signature")
		if err := channel.VerifySignature(h.authToken, sig, requestURL(r), params); err != nil {
			log.Printf("webhook: rejected: %v", err)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	} else if h.env == "production" {
		log.Printf("webhook: rejected: no auth token configured in production")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), raw); err != nil {
			// Degrade to inline so the message is not lost.
			log.Printf("webhook: enqueue failed, handling inline: %v", err)
			h.runInline(raw)
		}
	} else {
		h.runInline(raw)
	}

	ack(w)
}

// runInline processes the turn in the background; the webhook response
// must not wait on LLM or PDF latency.
func (h *WebhookHandler) runInline(raw []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		if err := runTurn(ctx, h.runner, raw); err != nil {
			log.Printf("webhook: inline turn failed: %v", err)
		}
	}()
}

// runTurn parses the channel form payload and executes one turn. Shared
// by the inline path and the queue worker so both paths stay identical.
func runTurn(ctx context.Context, runner *flow.Runner, raw []byte) error {
	params, err := url.ParseQuery(string(raw))
	if err != nil {
		return err
	}
	sender := params.Get("From")
	body := params.Get("Body")
	mediaURL := ""
	if n := strings.TrimSpace(params.Get("NumMedia")); n != "" && n != "0" {
		mediaURL = params.Get("MediaUrl0")
	}
	if sender == "" {
		// Status callbacks and delivery receipts have no From; ignore.
		return nil
	}
	return runner.Turn(ctx, sender, body, mediaURL)
}

func requestURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(channelAck))
}
