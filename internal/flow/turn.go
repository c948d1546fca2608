package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nyaya/internal/channel"
	"nyaya/internal/session"
	"nyaya/internal/usage"
)

// Synthesizer renders reply text as spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// AudioPublisher stores synthesized audio for one-time fetch.
type AudioPublisher interface {
	PublishAudio(ctx context.Context, wav []byte) (string, error)
}

// Replies longer than this are sent as text only; the synthesized
// mirror is skipped rather than truncated mid-sentence.
const voiceReplyMaxChars = 500

// Runner executes one conversation turn end to end: load session,
// advance, persist, deliver. The webhook and the queue worker both go
// through Turn, so the two paths cannot diverge.
type Runner struct {
	store  session.Store
	engine *Engine
	sender channel.Sender

	// Voice mirroring is optional capability, nil disables it.
	tts   Synthesizer
	audio AudioPublisher

	usage *usage.Logger
}

func NewRunner(store session.Store, engine *Engine, sender channel.Sender, tts Synthesizer, audio AudioPublisher, usageLog *usage.Logger) (*Runner, error) {
	if store == nil || engine == nil || sender == nil {
		return nil, fmt.Errorf("store, engine and sender are required")
	}
	return &Runner{
		store:  store,
		engine: engine,
		sender: sender,
		tts:    tts,
		audio:  audio,
		usage:  usageLog,
	}, nil
}

// Turn processes one inbound event. A persistence failure aborts
// before any reply is sent so the queue's retry can re-run the turn;
// every other failure still answers the user.
func (r *Runner) Turn(ctx context.Context, senderID, body, mediaURL string) error {
	started := time.Now()

	sess, err := r.store.Get(ctx, senderID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		sess = session.New()
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	}

	next, reply, advErr := r.engine.Advance(ctx, sess, Input{Body: body, MediaURL: mediaURL})
	if advErr != nil {
		// The engine already downgraded the reply to an apology and
		// left the session untouched; deliver the apology but do not
		// persist anything.
		log.Printf("flow: turn degraded for %s: %v", usage.HashSender(senderID), advErr)
		if sendErr := r.sender.Send(ctx, channel.Message{To: senderID, Body: reply.Text}); sendErr != nil {
			log.Printf("flow: apology send failed: %v", sendErr)
		}
		return advErr
	}

	if err := r.store.Put(ctx, senderID, next); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	if err := r.sender.Send(ctx, channel.Message{To: senderID, Body: reply.Text, MediaURL: reply.MediaURL}); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if reply.Voice {
		r.mirrorAsSpeech(ctx, senderID, next.Language, reply.Text)
	}

	r.usage.Record(usage.Event{
		SenderHash: usage.HashSender(senderID),
		Step:       string(next.Step),
		Voice:      reply.Voice,
		Latency:    time.Since(started),
	})
	return nil
}

// mirrorAsSpeech sends the reply as a voice note for turns that began
// as voice. Best-effort: any failure leaves the text reply standing.
func (r *Runner) mirrorAsSpeech(ctx context.Context, senderID, lang, text string) {
	if r.tts == nil || r.audio == nil {
		return
	}
	if len([]rune(text)) > voiceReplyMaxChars {
		return
	}
	wav, err := r.tts.Synthesize(ctx, text, lang)
	if err != nil {
		log.Printf("flow: tts failed: %v", err)
		return
	}
	audioURL, err := r.audio.PublishAudio(ctx, wav)
	if err != nil {
		log.Printf("flow: audio publish failed: %v", err)
		return
	}
	if err := r.sender.Send(ctx, channel.Message{To: senderID, MediaURL: audioURL}); err != nil {
		log.Printf("flow: voice reply send failed: %v", err)
	}
}
