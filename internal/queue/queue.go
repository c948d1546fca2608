// Package queue publishes inbound webhook payloads to the background
// job queue and verifies the queue's signed callbacks. The queue
// redelivers failed jobs up to its configured retry limit, so the
// worker path must tolerate duplicate delivery.
package queue

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSignature = errors.New("missing queue signature")
	ErrInvalidSignature = errors.New("invalid queue signature")
)

// SignatureHeader carries the HMAC of the callback body.
const SignatureHeader = "X-Queue-Signature"

// Publisher enqueues raw payloads for asynchronous processing. The
// queue service delivers each payload to the worker URL with a signed
// callback.
type Publisher struct {
	http       *http.Client
	publishURL string
	token      string
	retries    int
}

func NewPublisher(publishURL, token string, retries int) (*Publisher, error) {
	if strings.TrimSpace(publishURL) == "" {
		return nil, fmt.Errorf("queue publish url is required")
	}
	if retries < 0 {
		retries = 0
	}
	return &Publisher{
		http:       &http.Client{Timeout: 10 * time.Second},
		publishURL: publishURL,
		token:      token,
		retries:    retries,
	}, nil
}

// Publish hands the payload to the queue. The retry bound is carried
// as a header so the queue caps its own redelivery attempts.
func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	if p == nil {
		return fmt.Errorf("publisher is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Queue-Retries", strconv.Itoa(p.retries))
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 512
		if len(body) > max {
			body = body[:max]
		}
		return fmt.Errorf("queue publish: unexpected status %s: %s", resp.Status, string(body))
	}
	return nil
}

// Sign computes the callback signature for a body. Exposed for tests
// and for queue deployments that let the publisher pre-sign.
func Sign(signingKey string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(signingKey))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the queue callback signature before a job is
// processed. The worker endpoint must reject unsigned requests; the
// queue is the only trusted caller.
func Verify(signingKey, signature string, body []byte) error {
	if signature == "" {
		return ErrMissingSignature
	}
	expected := Sign(signingKey, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
