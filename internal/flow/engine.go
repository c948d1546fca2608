// Package flow is the conversation engine: a strict linear intake
// state machine that collects facts one message at a time, then hands
// them to the drafting pipeline on confirmation.
package flow

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"nyaya/internal/draft"
	"nyaya/internal/lingo"
	"nyaya/internal/render"
	"nyaya/internal/session"
)

// Input is one inbound message after gateway parsing.
type Input struct {
	Body     string
	MediaURL string
}

// Reply is the engine's decision for one turn. Voice marks turns that
// began as a voice note, so the runner mirrors the reply as speech.
type Reply struct {
	Text     string
	MediaURL string
	Voice    bool
}

// Drafter produces a grounded notice draft, or nil when grounding is
// insufficient.
type Drafter interface {
	Draft(ctx context.Context, facts map[string]string) (*draft.Result, error)
}

// NoticePublisher renders and stores the notice PDF, returning its
// one-time URL and artifact id.
type NoticePublisher interface {
	PublishNotice(ctx context.Context, body string, meta render.Meta) (string, string, error)
}

// Transcriber converts a voice attachment into text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (string, error)
}

// Normalizer moves text between the user's language and the canonical
// one. All methods degrade to identity on provider failure.
type Normalizer interface {
	ToCanonical(ctx context.Context, text, lang string) string
	ToUser(ctx context.Context, text, lang string) string
	Detect(ctx context.Context, text string) (string, string, bool)
}

// A repeated "yes" inside this window after generation is treated as a
// duplicate delivery and answered without re-drafting.
const duplicateDraftWindow = 2 * time.Minute

var greetingTokens = map[string]bool{
	"hi": true, "hello": true, "start": true, "restart": true, "namaste": true,
}

// Engine decides state transitions. It performs no channel I/O: given
// the current session and one input it returns the next session and
// the reply, calling only the drafting and rendering ports.
type Engine struct {
	dialogue    *Dialogue
	drafter     Drafter
	publisher   NoticePublisher
	normalizer  Normalizer
	transcriber Transcriber

	now func() time.Time
}

func NewEngine(dialogue *Dialogue, drafter Drafter, publisher NoticePublisher, normalizer Normalizer, transcriber Transcriber) (*Engine, error) {
	if dialogue == nil {
		return nil, fmt.Errorf("dialogue definition is required")
	}
	if drafter == nil || publisher == nil {
		return nil, fmt.Errorf("drafter and publisher are required")
	}
	return &Engine{
		dialogue:    dialogue,
		drafter:     drafter,
		publisher:   publisher,
		normalizer:  normalizer,
		transcriber: transcriber,
		now:         time.Now,
	}, nil
}

// Advance runs one full state transition. It never returns a partial
// mutation: on internal failure the input session is returned
// unchanged together with a generic apology, and err is non-nil so the
// caller can skip persisting.
func (e *Engine) Advance(ctx context.Context, sess session.Session, in Input) (session.Session, Reply, error) {
	sess = sess.Clone()
	if sess.Facts == nil {
		sess.Facts = map[string]string{}
	}

	voice := false
	body := in.Body
	if in.MediaURL != "" {
		if e.transcriber == nil {
			return sess, e.reply(ctx, sess, msgVoiceFailed, "", false), nil
		}
		transcript, err := e.transcriber.Transcribe(ctx, in.MediaURL)
		if err != nil {
			log.Printf("flow: transcription failed: %v", err)
			return sess, e.reply(ctx, sess, msgVoiceFailed, "", false), nil
		}
		voice = true
		body = transcript
	}

	body = e.normalizeInput(ctx, &sess, strings.TrimSpace(body))
	lower := strings.ToLower(body)

	// Restart and greetings reset intake from every state except the
	// two post-draft states, where only an explicit restart does.
	if greetingTokens[lower] {
		resetOK := sess.Step != session.StepCompleted && sess.Step != session.StepAwaitingOutcome
		if lower == "restart" || resetOK {
			sess = sess.Reset()
		}
	}

	switch sess.Step {
	case session.StepStart:
		sess.Step = session.StepLanguageSelect
		return sess, e.reply(ctx, sess, welcomeMessage(), "", voice), nil

	case session.StepLanguageSelect:
		sess.Language = chooseLanguage(body)
		sess.Step = session.StepCollectIssue
		return sess, e.reply(ctx, sess, e.dialogue.Slots[0].Prompt, "", voice), nil

	case session.StepCollectIssue, session.StepCollectCounterpart, session.StepCollectAmount:
		idx := slotIndex(sess.Step)
		sess.Facts[e.dialogue.Slots[idx].Key] = body
		sess.Step = collectSteps[idx+1]
		return sess, e.reply(ctx, sess, e.dialogue.Slots[idx+1].Prompt, "", voice), nil

	case session.StepCollectDate:
		idx := slotIndex(sess.Step)
		sess.Facts[e.dialogue.Slots[idx].Key] = body
		sess.Step = session.StepConfirm
		return sess, e.reply(ctx, sess, confirmMessage(sess.Facts), "", voice), nil

	case session.StepConfirm:
		if lower != "yes" {
			return sess, e.reply(ctx, sess, msgConfirmRetry, "", voice), nil
		}
		return e.generate(ctx, sess, voice)

	case session.StepCompleted:
		if lower != "yes" {
			return sess, e.reply(ctx, sess, msgConfirmRetry, "", voice), nil
		}
		if sess.GeneratedAt != nil && e.now().Sub(*sess.GeneratedAt) < duplicateDraftWindow {
			return sess, e.reply(ctx, sess, msgJustGenerated, "", voice), nil
		}
		return e.generate(ctx, sess, voice)

	case session.StepAwaitingOutcome:
		outcome, ok := parseOutcome(lower)
		if !ok {
			return sess, e.reply(ctx, sess, msgOutcomeRetry, "", voice), nil
		}
		sess.Outcome = outcome
		sess.Step = session.StepCompleted
		return sess, e.reply(ctx, sess, msgOutcomeThanks, "", voice), nil

	default:
		// Unknown persisted step: recover by restarting the intake.
		sess = sess.Reset()
		sess.Step = session.StepLanguageSelect
		return sess, e.reply(ctx, sess, welcomeMessage(), "", voice), nil
	}
}

// generate runs the drafting pipeline and completes the session. The
// transition to completed happens even when grounding is insufficient;
// GeneratedAt is only set when a draft was actually produced.
func (e *Engine) generate(ctx context.Context, sess session.Session, voice bool) (session.Session, Reply, error) {
	res, err := e.drafter.Draft(ctx, sess.Facts)
	if err != nil {
		log.Printf("flow: draft failed: %v", err)
		return sess, e.reply(ctx, sess, msgApology, "", voice), fmt.Errorf("draft: %w", err)
	}
	if res == nil {
		sess.Step = session.StepCompleted
		return sess, e.reply(ctx, sess, msgInsufficient, "", voice), nil
	}

	meta := render.Meta{
		Recipient: "The Grievance Officer, " + sess.Facts[session.SlotCounterparty],
		Subject:   sess.Facts[session.SlotIssue],
		Citations: res.Citations,
		Date:      e.now(),
	}
	noticeURL, artifactID, err := e.publisher.PublishNotice(ctx, res.NoticeBody, meta)
	if err != nil {
		log.Printf("flow: publish notice failed: %v", err)
		return sess, e.reply(ctx, sess, msgApology, "", voice), fmt.Errorf("publish notice: %w", err)
	}

	now := e.now()
	sess.Step = session.StepCompleted
	sess.GeneratedAt = &now
	sess.OutcomeAsked = false
	sess.LastArtifactID = artifactID

	text := draftMessage(res.Citations, string(res.Risk), res.NoticeBody, noticeURL)
	return sess, e.reply(ctx, sess, text, noticeURL, voice), nil
}

// normalizeInput converts the input to the canonical language. When no
// preference is stored yet, provider-side detection runs once per
// session and the inferred preference is persisted.
func (e *Engine) normalizeInput(ctx context.Context, sess *session.Session, body string) string {
	if e.normalizer == nil || body == "" {
		return body
	}
	if sess.Language != "" {
		return e.normalizer.ToCanonical(ctx, body, sess.Language)
	}
	if sess.LangInferred || !collectState(sess.Step) || isASCII(body) {
		return body
	}
	canonical, detected, ok := e.normalizer.Detect(ctx, body)
	if !ok {
		return body
	}
	sess.LangInferred = true
	if detected != "" {
		sess.Language = detected
	}
	return canonical
}

// reply translates the outgoing text into the session language.
func (e *Engine) reply(ctx context.Context, sess session.Session, text, mediaURL string, voice bool) Reply {
	if e.normalizer != nil {
		text = e.normalizer.ToUser(ctx, text, sess.Language)
	}
	return Reply{Text: text, MediaURL: mediaURL, Voice: voice}
}

// chooseLanguage interprets the language menu reply: a menu number, a
// language tag, or anything else (canonical). The canonical choice is
// stored as empty, meaning "no translation".
func chooseLanguage(body string) string {
	body = strings.TrimSpace(body)
	if n, err := strconv.Atoi(body); err == nil && n >= 1 && n <= len(lingo.Supported) {
		code := lingo.Supported[n-1].Code
		if lingo.IsCanonical(code) {
			return ""
		}
		return code
	}
	if code, ok := lingo.MatchTag(body); ok && !lingo.IsCanonical(code) {
		return code
	}
	return ""
}

func parseOutcome(lower string) (string, bool) {
	switch lower {
	case "1":
		return "full_resolution", true
	case "2":
		return "partial_resolution", true
	case "3":
		return "no_reply", true
	}
	return "", false
}

func collectState(step session.Step) bool {
	return slotIndex(step) >= 0
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
