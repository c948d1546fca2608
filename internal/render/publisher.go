package render

import (
	"context"
	"fmt"
	"strings"

	"nyaya/internal/artifact"
)

// Publisher renders artifacts into the one-time cache and constructs
// their fetch URLs.
type Publisher struct {
	cache   artifact.Cache
	baseURL string
}

func NewPublisher(cache artifact.Cache, baseURL string) (*Publisher, error) {
	if cache == nil {
		return nil, fmt.Errorf("artifact cache is required")
	}
	return &Publisher{cache: cache, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// PublishNotice renders the notice PDF, stores it and returns the
// one-time fetch URL plus the artifact id.
func (p *Publisher) PublishNotice(ctx context.Context, body string, meta Meta) (string, string, error) {
	if p == nil {
		return "", "", fmt.Errorf("publisher is nil")
	}
	pdfBytes, err := RenderNotice(body, meta)
	if err != nil {
		return "", "", err
	}
	id, err := p.cache.Put(ctx, artifact.Blob{Data: pdfBytes, ContentType: "application/pdf"})
	if err != nil {
		return "", "", fmt.Errorf("store notice artifact: %w", err)
	}
	return p.URL(id), id, nil
}

// PublishAudio stores synthesized speech and returns its one-time URL.
func (p *Publisher) PublishAudio(ctx context.Context, wav []byte) (string, error) {
	if p == nil {
		return "", fmt.Errorf("publisher is nil")
	}
	id, err := p.cache.Put(ctx, artifact.Blob{Data: wav, ContentType: "audio/wav"})
	if err != nil {
		return "", fmt.Errorf("store audio artifact: %w", err)
	}
	return p.URL(id), nil
}

// URL builds the one-time fetch URL for an artifact id.
func (p *Publisher) URL(id string) string {
	return p.baseURL + "/artifact/" + id
}
