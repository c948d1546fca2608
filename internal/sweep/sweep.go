// Package sweep asks users about the real-world outcome of their
// notice once enough time has passed for the counterparty to respond.
package sweep

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nyaya/internal/channel"
	"nyaya/internal/session"
	"nyaya/internal/usage"
)

// DefaultWaitPeriod is how long after generation the follow-up goes out.
const DefaultWaitPeriod = 48 * time.Hour

const maxConcurrentFollowups = 4

const followupMessage = "It has been 2 days since we drafted your legal notice. Did the company respond?\n\n" +
	"1. Yes, issue fully resolved\n" +
	"2. Partially resolved\n" +
	"3. No reply from them yet\n\n" +
	"Reply with 1, 2 or 3."

// Translator renders outbound text in the user's language.
type Translator interface {
	ToUser(ctx context.Context, text, lang string) string
}

// Sweeper sends the outcome follow-up to every due session. Designed
// to run from a cron-style trigger; runs are idempotent because a
// session is marked asked before the next run can see it.
type Sweeper struct {
	store      session.Store
	sender     channel.Sender
	translator Translator
	wait       time.Duration
	now        func() time.Time
}

func New(store session.Store, sender channel.Sender, translator Translator, wait time.Duration) (*Sweeper, error) {
	if store == nil || sender == nil {
		return nil, fmt.Errorf("store and sender are required")
	}
	if wait <= 0 {
		wait = DefaultWaitPeriod
	}
	return &Sweeper{
		store:      store,
		sender:     sender,
		translator: translator,
		wait:       wait,
		now:        time.Now,
	}, nil
}

// Run processes one sweep pass and returns how many follow-ups were
// sent. A failure on one session does not stop the others; the first
// error is returned after the pass completes.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.wait)
	ids, err := s.store.ListOutcomeDue(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list due sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		mu       sync.Mutex
		sent     int
		firstErr error
	)
	var g errgroup.Group
	g.SetLimit(maxConcurrentFollowups)
	for _, id := range ids {
		g.Go(func() error {
			ok, err := s.followUp(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// One stuck session must not starve the rest of the
				// pass, so the error is kept but not propagated.
				log.Printf("sweep: follow-up failed for %s: %v", usage.HashSender(id), err)
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			if ok {
				sent++
			}
			return nil
		})
	}
	_ = g.Wait()
	return sent, firstErr
}

// followUp re-reads the session and re-checks the due predicates under
// the fresh copy, since the user may have replied between listing and
// sending.
func (s *Sweeper) followUp(ctx context.Context, id string) (bool, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}
	if sess.Step != session.StepCompleted || sess.OutcomeAsked || sess.GeneratedAt == nil {
		return false, nil
	}
	if !sess.GeneratedAt.Before(s.now().Add(-s.wait)) {
		return false, nil
	}

	text := followupMessage
	if s.translator != nil {
		text = s.translator.ToUser(ctx, text, sess.Language)
	}
	if err := s.sender.Send(ctx, channel.Message{To: id, Body: text}); err != nil {
		return false, fmt.Errorf("send: %w", err)
	}

	sess.OutcomeAsked = true
	sess.Step = session.StepAwaitingOutcome
	if err := s.store.Put(ctx, id, sess); err != nil {
		return false, fmt.Errorf("mark asked: %w", err)
	}
	return true, nil
}
