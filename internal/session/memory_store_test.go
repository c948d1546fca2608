package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "whatsapp:+911234"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sess := New()
	sess.Step = StepConfirm
	sess.Facts[SlotIssue] = "Received fake product"
	if err := s.Put(ctx, "whatsapp:+911234", sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "whatsapp:+911234")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Step != StepConfirm || got.Facts[SlotIssue] != "Received fake product" {
		t.Fatalf("unexpected session: %+v", got)
	}

	// Returned copy must be detached from the stored record.
	got.Facts[SlotIssue] = "mutated"
	again, _ := s.Get(ctx, "whatsapp:+911234")
	if again.Facts[SlotIssue] != "Received fake product" {
		t.Fatal("stored session mutated through returned copy")
	}
}

func TestMemoryStoreListOutcomeDue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	old := now.Add(-72 * time.Hour)

	due := New()
	due.Step = StepCompleted
	due.GeneratedAt = &old
	_ = s.Put(ctx, "due", due)

	asked := due.Clone()
	asked.OutcomeAsked = true
	_ = s.Put(ctx, "asked", asked)

	fresh := New()
	fresh.Step = StepCompleted
	fresh.GeneratedAt = &now
	_ = s.Put(ctx, "fresh", fresh)

	notDone := New()
	notDone.Step = StepConfirm
	notDone.GeneratedAt = &old
	_ = s.Put(ctx, "notdone", notDone)

	noDraft := New()
	noDraft.Step = StepCompleted
	_ = s.Put(ctx, "nodraft", noDraft)

	ids, err := s.ListOutcomeDue(ctx, now.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "due" {
		t.Fatalf("expected only [due], got %v", ids)
	}
}

func TestResetPreservesLanguage(t *testing.T) {
	sess := New()
	sess.Step = StepCollectAmount
	sess.Facts[SlotIssue] = "x"
	sess.Language = "hi-IN"
	sess.LangInferred = true

	got := sess.Reset()
	if got.Step != StepStart {
		t.Fatalf("expected start, got %s", got.Step)
	}
	if len(got.Facts) != 0 {
		t.Fatalf("expected cleared facts, got %v", got.Facts)
	}
	if got.Language != "hi-IN" || !got.LangInferred {
		t.Fatal("language preference not preserved across restart")
	}
}
