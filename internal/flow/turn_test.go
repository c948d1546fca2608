package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"nyaya/internal/channel"
	"nyaya/internal/session"
)

type fakeSender struct {
	sent []channel.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg channel.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type failPutStore struct {
	session.Store
}

func (failPutStore) Put(context.Context, string, session.Session) error {
	return errors.New("db down")
}

type fakeSynthesizer struct{ err error }

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("RIFF" + text), nil
}

type fakeAudioPublisher struct{ url string }

func (f *fakeAudioPublisher) PublishAudio(context.Context, []byte) (string, error) {
	return f.url, nil
}

func TestTurnPersistsAndReplies(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	store := session.NewMemoryStore()
	sender := &fakeSender{}
	runner, err := NewRunner(store, eng, sender, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Turn(context.Background(), "whatsapp:+919900112233", "hi", ""))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "whatsapp:+919900112233", sender.sent[0].To)
	require.Contains(t, sender.sent[0].Body, "Choose your language")

	sess, err := store.Get(context.Background(), "whatsapp:+919900112233")
	require.NoError(t, err)
	require.Equal(t, session.StepLanguageSelect, sess.Step)
}

func TestTurnPersistFailureAbortsBeforeSend(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	sender := &fakeSender{}
	runner, err := NewRunner(failPutStore{session.NewMemoryStore()}, eng, sender, nil, nil, nil)
	require.NoError(t, err)

	err = runner.Turn(context.Background(), "whatsapp:+911", "hi", "")
	require.Error(t, err)
	require.Empty(t, sender.sent, "no reply may be sent when the session could not be persisted")
}

func TestTurnAdvanceErrorSendsApologyWithoutPersisting(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{err: errors.New("provider down")})
	store := session.NewMemoryStore()
	sender := &fakeSender{}
	runner, err := NewRunner(store, eng, sender, nil, nil, nil)
	require.NoError(t, err)

	seed := session.New()
	seed.Step = session.StepConfirm
	seed.Facts = map[string]string{
		session.SlotIssue:        "fake product",
		session.SlotCounterparty: "Acme",
		session.SlotAmount:       "2500",
		session.SlotIncidentDate: "12 Oct 2025",
	}
	require.NoError(t, store.Put(context.Background(), "whatsapp:+912", seed))

	err = runner.Turn(context.Background(), "whatsapp:+912", "yes", "")
	require.Error(t, err)
	require.Len(t, sender.sent, 1)
	require.Equal(t, msgApology, sender.sent[0].Body)

	kept, err := store.Get(context.Background(), "whatsapp:+912")
	require.NoError(t, err)
	require.Equal(t, session.StepConfirm, kept.Step, "failed turn must leave the stored session where it was")
}

func TestTurnMirrorsVoiceReply(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	transcribing, err := NewEngine(eng.dialogue, &fakeDrafter{}, eng.publisher, &passNormalizer{}, &fakeTranscriber{text: "Refund not processed"})
	require.NoError(t, err)

	store := session.NewMemoryStore()
	seed := session.New()
	seed.Step = session.StepCollectIssue
	require.NoError(t, store.Put(context.Background(), "whatsapp:+913", seed))

	sender := &fakeSender{}
	runner, err := NewRunner(store, transcribing, sender, &fakeSynthesizer{}, &fakeAudioPublisher{url: "https://nyaya.example/artifact/voice-1"}, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Turn(context.Background(), "whatsapp:+913", "", "https://media.example/note.ogg"))

	require.Len(t, sender.sent, 2)
	require.NotEmpty(t, sender.sent[0].Body)
	require.Equal(t, "https://nyaya.example/artifact/voice-1", sender.sent[1].MediaURL)
}

func TestTurnSkipsVoiceMirrorOnSynthesisFailure(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeDrafter{})
	transcribing, err := NewEngine(eng.dialogue, &fakeDrafter{}, eng.publisher, &passNormalizer{}, &fakeTranscriber{text: "Acme Co"})
	require.NoError(t, err)

	store := session.NewMemoryStore()
	seed := session.New()
	seed.Step = session.StepCollectCounterpart
	require.NoError(t, store.Put(context.Background(), "whatsapp:+914", seed))

	sender := &fakeSender{}
	runner, err := NewRunner(store, transcribing, sender, &fakeSynthesizer{err: errors.New("tts down")}, &fakeAudioPublisher{}, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Turn(context.Background(), "whatsapp:+914", "", "https://media.example/note.ogg"))
	require.Len(t, sender.sent, 1, "text reply stands alone when synthesis fails")
}
