// Package artifact stores generated documents and audio for exactly
// one fetch. A successful Take deletes the blob; missing, consumed and
// expired identifiers are indistinguishable to callers.
package artifact

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("artifact not found")

// Blob is a stored binary with its content type.
type Blob struct {
	Data        []byte
	ContentType string
}

// Cache is the one-time artifact store. Put returns an opaque random
// identifier. Take returns the blob and removes it; deletion is
// best-effort and never fails the read.
type Cache interface {
	Put(ctx context.Context, blob Blob) (string, error)
	Take(ctx context.Context, id string) (Blob, error)
}
