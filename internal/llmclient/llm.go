// Package llmclient wraps the generation-model providers behind a
// single JSON-completion interface.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// Client produces a single JSON object for a system prompt plus input.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// PermanentError indicates a failure that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
