package artifact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 24 * time.Hour

type entry struct {
	blob      Blob
	createdAt time.Time
}

// MemoryStore holds artifacts in memory with a TTL. Expired entries
// are dropped lazily on access, so an expired id reads as not found.
type MemoryStore struct {
	ttl  time.Duration
	mu   sync.Mutex
	data map[string]entry

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, blob Blob) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	if len(blob.Data) == 0 {
		return "", fmt.Errorf("blob is empty")
	}
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = entry{
		blob: Blob{
			Data:        append([]byte(nil), blob.Data...),
			ContentType: blob.ContentType,
		},
		createdAt: s.now(),
	}
	return id, nil
}

func (s *MemoryStore) Take(_ context.Context, id string) (Blob, error) {
	if s == nil {
		return Blob{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Blob{}, fmt.Errorf("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok {
		return Blob{}, ErrNotFound
	}
	delete(s.data, id)
	if s.now().Sub(e.createdAt) > s.ttl {
		return Blob{}, ErrNotFound
	}
	return e.blob, nil
}
