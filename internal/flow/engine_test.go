package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nyaya/internal/artifact"
	"nyaya/internal/draft"
	"nyaya/internal/render"
	"nyaya/internal/session"
)

type fakeDrafter struct {
	res   *draft.Result
	err   error
	calls int
}

func (f *fakeDrafter) Draft(context.Context, map[string]string) (*draft.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	return f.text, f.err
}

// passNormalizer is an identity normalizer with scripted detection.
type passNormalizer struct {
	detectText  string
	detectLang  string
	detectOK    bool
	detectCalls int
}

func (n *passNormalizer) ToCanonical(_ context.Context, text, _ string) string { return text }
func (n *passNormalizer) ToUser(_ context.Context, text, _ string) string      { return text }
func (n *passNormalizer) Detect(_ context.Context, text string) (string, string, bool) {
	n.detectCalls++
	if !n.detectOK {
		return text, "", false
	}
	return n.detectText, n.detectLang, true
}

func newTestEngine(t *testing.T, drafter Drafter) (*Engine, *render.Publisher) {
	t.Helper()
	dialogue, err := LoadDialogue()
	require.NoError(t, err)
	pub, err := render.NewPublisher(artifact.NewMemoryStore(0), "https://nyaya.example")
	require.NoError(t, err)
	eng, err := NewEngine(dialogue, drafter, pub, &passNormalizer{}, nil)
	require.NoError(t, err)
	return eng, pub
}

func runSequence(t *testing.T, eng *Engine, inputs []string) (session.Session, Reply) {
	t.Helper()
	ctx := context.Background()
	sess := session.New()
	var reply Reply
	for _, in := range inputs {
		var err error
		sess, reply, err = eng.Advance(ctx, sess, Input{Body: in})
		require.NoError(t, err)
	}
	return sess, reply
}

var happyPath = []string{"hi", "1", "Received fake product", "Acme Co", "2500", "12 Oct 2025", "yes"}

func TestScenarioInsufficientData(t *testing.T) {
	drafter := &fakeDrafter{res: nil}
	eng, _ := newTestEngine(t, drafter)

	sess, reply := runSequence(t, eng, happyPath)

	require.Equal(t, session.StepCompleted, sess.Step)
	require.Nil(t, sess.GeneratedAt)
	require.Equal(t, msgInsufficient, reply.Text)
	require.Equal(t, 1, drafter.calls)
}

func TestScenarioDraftGenerated(t *testing.T) {
	drafter := &fakeDrafter{res: &draft.Result{
		Citations:  "Consumer Protection Act, 2019, Sections 34-37",
		NoticeBody: "To the Grievance Officer of Acme Co: refund Rs 2500 within 15 days.",
		Risk:       draft.RiskLow,
	}}
	eng, _ := newTestEngine(t, drafter)

	sess, reply := runSequence(t, eng, happyPath)

	require.Equal(t, session.StepCompleted, sess.Step)
	require.NotNil(t, sess.GeneratedAt)
	require.NotEmpty(t, sess.LastArtifactID)
	require.Contains(t, reply.Text, "https://nyaya.example/artifact/")
	require.Contains(t, reply.Text, "LEGAL BASIS")
	require.Equal(t, "https://nyaya.example/artifact/"+sess.LastArtifactID, reply.MediaURL)

	require.Equal(t, map[string]string{
		session.SlotIssue:        "Received fake product",
		session.SlotCounterparty: "Acme Co",
		session.SlotAmount:       "2500",
		session.SlotIncidentDate: "12 Oct 2025",
	}, sess.Facts)
}

func TestTransitionsFollowDefinedEdges(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	ctx := context.Background()

	cases := []struct {
		from session.Step
		in   string
		want session.Step
	}{
		{session.StepStart, "anything", session.StepLanguageSelect},
		{session.StepLanguageSelect, "2", session.StepCollectIssue},
		{session.StepCollectIssue, "broken phone", session.StepCollectCounterpart},
		{session.StepCollectCounterpart, "Acme", session.StepCollectAmount},
		{session.StepCollectAmount, "999", session.StepCollectDate},
		{session.StepCollectDate, "1 Jan 2026", session.StepConfirm},
		{session.StepConfirm, "maybe", session.StepConfirm},
		{session.StepCompleted, "what now", session.StepCompleted},
		{session.StepAwaitingOutcome, "unsure", session.StepAwaitingOutcome},
		{session.StepAwaitingOutcome, "2", session.StepCompleted},
	}
	for _, tc := range cases {
		sess := session.New()
		sess.Step = tc.from
		got, _, err := eng.Advance(ctx, sess, Input{Body: tc.in})
		require.NoError(t, err)
		require.Equalf(t, tc.want, got.Step, "from %s with %q", tc.from, tc.in)
	}
}

func TestDuplicateDateAtConfirmDoesNotSkipGate(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	ctx := context.Background()

	sess, _ := runSequence(t, eng, []string{"hi", "1", "issue", "Acme", "2500", "12 Oct 2025"})
	require.Equal(t, session.StepConfirm, sess.Step)

	// The same date event delivered again while already at confirm.
	dup, reply, err := eng.Advance(ctx, sess, Input{Body: "12 Oct 2025"})
	require.NoError(t, err)
	require.Equal(t, session.StepConfirm, dup.Step)
	require.Equal(t, msgConfirmRetry, reply.Text)
	require.Equal(t, "12 Oct 2025", dup.Facts[session.SlotIncidentDate])
}

func TestRestartPreservesLanguage(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	ctx := context.Background()

	sess, _ := runSequence(t, eng, []string{"hi", "2", "issue text"})
	require.Equal(t, "hi-IN", sess.Language)
	require.Len(t, sess.Facts, 1)

	sess, reply, err := eng.Advance(ctx, sess, Input{Body: "restart"})
	require.NoError(t, err)
	require.Equal(t, session.StepLanguageSelect, sess.Step)
	require.Empty(t, sess.Facts)
	require.Equal(t, "hi-IN", sess.Language)
	require.Contains(t, reply.Text, "Welcome")
}

func TestCompletedGateIgnoresGreetings(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	ctx := context.Background()
	sess := session.New()
	sess.Step = session.StepCompleted

	got, reply, err := eng.Advance(ctx, sess, Input{Body: "hello"})
	require.NoError(t, err)
	require.Equal(t, session.StepCompleted, got.Step)
	require.Equal(t, msgConfirmRetry, reply.Text)

	got, _, err = eng.Advance(ctx, sess, Input{Body: "restart"})
	require.NoError(t, err)
	require.Equal(t, session.StepLanguageSelect, got.Step)
}

func TestDuplicateYesAfterGenerationDoesNotRedraft(t *testing.T) {
	drafter := &fakeDrafter{res: &draft.Result{NoticeBody: "Pay up.", Citations: "CPA", Risk: draft.RiskLow}}
	eng, _ := newTestEngine(t, drafter)
	ctx := context.Background()

	sess, _ := runSequence(t, eng, happyPath)
	require.Equal(t, 1, drafter.calls)

	// Same "yes" delivered again right away.
	again, reply, err := eng.Advance(ctx, sess, Input{Body: "yes"})
	require.NoError(t, err)
	require.Equal(t, 1, drafter.calls, "duplicate delivery must not re-draft")
	require.Equal(t, msgJustGenerated, reply.Text)
	require.Equal(t, session.StepCompleted, again.Step)
}

func TestDraftErrorLeavesSessionUntouched(t *testing.T) {
	drafter := &fakeDrafter{err: errors.New("provider down")}
	eng, _ := newTestEngine(t, drafter)
	ctx := context.Background()

	sess, _ := runSequence(t, eng, happyPath[:6])
	require.Equal(t, session.StepConfirm, sess.Step)

	got, reply, err := eng.Advance(ctx, sess, Input{Body: "yes"})
	require.Error(t, err)
	require.Equal(t, msgApology, reply.Text)
	require.Equal(t, session.StepConfirm, got.Step, "failed turn must not advance the session")
	require.Nil(t, got.GeneratedAt)
}

func TestVoiceFailurePromptsForText(t *testing.T) {
	dialogue, err := LoadDialogue()
	require.NoError(t, err)
	pub, err := render.NewPublisher(artifact.NewMemoryStore(0), "https://nyaya.example")
	require.NoError(t, err)
	eng, err := NewEngine(dialogue, &fakeDrafter{}, pub, &passNormalizer{}, &fakeTranscriber{err: errors.New("stt down")})
	require.NoError(t, err)

	sess := session.New()
	sess.Step = session.StepCollectIssue
	got, reply, err := eng.Advance(context.Background(), sess, Input{MediaURL: "https://media.example/v1"})
	require.NoError(t, err)
	require.Equal(t, session.StepCollectIssue, got.Step, "failed voice turn must not consume a slot")
	require.Equal(t, msgVoiceFailed, reply.Text)
	require.False(t, reply.Voice)
}

func TestVoiceTurnFillsSlotAndFlagsReply(t *testing.T) {
	dialogue, err := LoadDialogue()
	require.NoError(t, err)
	pub, err := render.NewPublisher(artifact.NewMemoryStore(0), "https://nyaya.example")
	require.NoError(t, err)
	eng, err := NewEngine(dialogue, &fakeDrafter{}, pub, &passNormalizer{}, &fakeTranscriber{text: "Refund not processed"})
	require.NoError(t, err)

	sess := session.New()
	sess.Step = session.StepCollectIssue
	got, reply, err := eng.Advance(context.Background(), sess, Input{MediaURL: "https://media.example/v1"})
	require.NoError(t, err)
	require.Equal(t, "Refund not processed", got.Facts[session.SlotIssue])
	require.Equal(t, session.StepCollectCounterpart, got.Step)
	require.True(t, reply.Voice)
}

func TestLanguageInferenceHappensOnce(t *testing.T) {
	norm := &passNormalizer{detectText: "I did not get a refund", detectLang: "hi-IN", detectOK: true}
	dialogue, err := LoadDialogue()
	require.NoError(t, err)
	pub, err := render.NewPublisher(artifact.NewMemoryStore(0), "https://nyaya.example")
	require.NoError(t, err)
	eng, err := NewEngine(dialogue, &fakeDrafter{}, pub, norm, nil)
	require.NoError(t, err)
	ctx := context.Background()

	sess := session.New()
	sess.Step = session.StepCollectIssue
	sess, _, err = eng.Advance(ctx, sess, Input{Body: "मुझे रिफंड नहीं मिला"})
	require.NoError(t, err)
	require.Equal(t, "hi-IN", sess.Language)
	require.True(t, sess.LangInferred)
	require.Equal(t, "I did not get a refund", sess.Facts[session.SlotIssue])
	require.Equal(t, 1, norm.detectCalls)

	// Preference persisted: later non-ASCII input goes through
	// ToCanonical, not through detection again.
	sess, _, err = eng.Advance(ctx, sess, Input{Body: "एक्मे कंपनी"})
	require.NoError(t, err)
	require.Equal(t, 1, norm.detectCalls)
}

func TestChooseLanguage(t *testing.T) {
	require.Equal(t, "", chooseLanguage("1"))
	require.Equal(t, "hi-IN", chooseLanguage("2"))
	require.Equal(t, "ta-IN", chooseLanguage("ta"))
	require.Equal(t, "", chooseLanguage("99"))
	require.Equal(t, "", chooseLanguage("whatever"))
}

func TestWelcomeListsAllLanguages(t *testing.T) {
	msg := welcomeMessage()
	require.Contains(t, msg, "1. English")
	require.True(t, strings.Contains(msg, "हिंदी"))
}
