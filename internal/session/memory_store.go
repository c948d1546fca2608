package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Session)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, fmt.Errorf("id is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, id string, sess Session) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id is required")
	}
	sess.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = sess.Clone()
	return nil
}

func (s *MemoryStore) ListOutcomeDue(_ context.Context, before time.Time) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, sess := range s.data {
		if sess.Step != StepCompleted || sess.OutcomeAsked {
			continue
		}
		if sess.GeneratedAt == nil || !sess.GeneratedAt.Before(before) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
