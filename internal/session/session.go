// Package session persists per-conversation intake progress keyed by
// the sender's channel identity.
package session

import (
	"context"
	"errors"
	"time"
)

// Step is the conversation state machine position.
type Step string

const (
	StepStart              Step = "start"
	StepLanguageSelect     Step = "language_select"
	StepCollectIssue       Step = "collect_issue"
	StepCollectCounterpart Step = "collect_counterparty"
	StepCollectAmount      Step = "collect_amount"
	StepCollectDate        Step = "collect_date"
	StepConfirm            Step = "confirm"
	StepCompleted          Step = "completed"
	StepAwaitingOutcome    Step = "awaiting_outcome"
)

// Slot keys for collected facts, in intake order.
const (
	SlotIssue        = "issue"
	SlotCounterparty = "counterparty"
	SlotAmount       = "amount"
	SlotIncidentDate = "incident_date"
)

// Session is the whole mutable record for one conversation identity.
// Step and Facts are only ever written together through Store.Put, so
// a persisted step never implies facts that are missing.
type Session struct {
	Step           Step              `json:"step"`
	Facts          map[string]string `json:"facts"`
	Language       string            `json:"language,omitempty"`
	LangInferred   bool              `json:"lang_inferred,omitempty"`
	GeneratedAt    *time.Time        `json:"generated_at,omitempty"`
	OutcomeAsked   bool              `json:"outcome_asked"`
	Outcome        string            `json:"outcome,omitempty"`
	LastArtifactID string            `json:"last_artifact_id,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// New returns a fresh session at the start step.
func New() Session {
	return Session{Step: StepStart, Facts: map[string]string{}}
}

// Reset clears intake progress while keeping the language preference,
// which survives a restart.
func (s Session) Reset() Session {
	return Session{
		Step:         StepStart,
		Facts:        map[string]string{},
		Language:     s.Language,
		LangInferred: s.LangInferred,
	}
}

// Clone returns a deep copy so callers can mutate freely.
func (s Session) Clone() Session {
	out := s
	out.Facts = make(map[string]string, len(s.Facts))
	for k, v := range s.Facts {
		out.Facts[k] = v
	}
	if s.GeneratedAt != nil {
		t := *s.GeneratedAt
		out.GeneratedAt = &t
	}
	return out
}

var ErrNotFound = errors.New("session not found")

// Store persists sessions. Put replaces the whole record atomically;
// concurrent duplicate deliveries resolve as last-write-wins.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, id string, sess Session) error
	// ListOutcomeDue returns identities of completed sessions whose
	// draft was generated before the cutoff and that have not been
	// asked for an outcome yet.
	ListOutcomeDue(ctx context.Context, before time.Time) ([]string, error)
}
