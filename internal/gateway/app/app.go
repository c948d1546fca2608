package app

import (
	"context"
	"fmt"
	"log"

	"nyaya/internal/artifact"
	"nyaya/internal/channel"
	"nyaya/internal/draft"
	"nyaya/internal/flow"
	"nyaya/internal/gateway/config"
	"nyaya/internal/gateway/handler"
	"nyaya/internal/gateway/server"
	"nyaya/internal/knowledge"
	"nyaya/internal/lingo"
	"nyaya/internal/llmclient"
	"nyaya/internal/queue"
	"nyaya/internal/render"
	"nyaya/internal/session"
	"nyaya/internal/speech"
	"nyaya/internal/sweep"
	"nyaya/internal/usage"
)

type App struct {
	server   *server.Server
	usage    *usage.Logger
	llm      llmclient.Client
	sessions session.Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Stores
	sessions, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	cache, err := newArtifactCache(cfg)
	if err != nil {
		return nil, err
	}

	// Providers
	llm, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	speechClient, err := newSpeechClient(cfg)
	if err != nil {
		return nil, err
	}

	var translator lingo.Translator
	var transcriber flow.Transcriber
	var tts flow.Synthesizer
	if speechClient != nil {
		translator = speechClient
		transcriber = speechClient
		tts = speechClient
	}
	normalizer, err := lingo.NewNormalizer(translator)
	if err != nil {
		return nil, err
	}

	// Core services
	corpus := knowledge.NewCorpus(nil)
	drafter := draft.NewEngine(corpus, llm)
	publisher, err := render.NewPublisher(cache, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	dialogue, err := flow.LoadDialogue()
	if err != nil {
		return nil, err
	}
	engine, err := flow.NewEngine(dialogue, drafter, publisher, normalizer, transcriber)
	if err != nil {
		return nil, err
	}

	sender := newSender(cfg)
	usageLog := usage.NewLogger(256)

	runner, err := flow.NewRunner(sessions, engine, sender, tts, publisher, usageLog)
	if err != nil {
		return nil, err
	}

	var queuePub *queue.Publisher
	if cfg.Queue.PublishURL != "" {
		queuePub, err = queue.NewPublisher(cfg.Queue.PublishURL, cfg.Queue.Token, cfg.Queue.Retries)
		if err != nil {
			return nil, err
		}
	}

	sweeper, err := sweep.New(sessions, sender, normalizer, sweep.DefaultWaitPeriod)
	if err != nil {
		return nil, err
	}

	// Handlers, routing, server
	webhookHandler := handler.NewWebhookHandler(runner, queuePub, cfg.Channel.AuthToken, cfg.Env)
	workerHandler := handler.NewWorkerHandler(runner, cfg.Queue.SigningKey)
	artifactHandler := handler.NewArtifactHandler(cache)
	sweepHandler := handler.NewSweepHandler(sweeper)
	queryHandler := handler.NewQueryHandler(corpus)

	mux := server.NewMux(webhookHandler, workerHandler, artifactHandler, sweepHandler, queryHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:   srv,
		usage:    usageLog,
		llm:      llm,
		sessions: sessions,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.usage.Close()
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if closer, ok := a.sessions.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return err
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("app: DATABASE_URL not set, sessions are in-memory")
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return store, nil
}

func newArtifactCache(cfg *config.Config) (artifact.Cache, error) {
	a := cfg.Artifact
	if !a.Enabled || a.AccessKey == "" || a.SecretKey == "" {
		log.Printf("app: artifact S3 not configured, using in-memory cache")
		return artifact.NewMemoryStore(0), nil
	}
	store, err := artifact.NewS3Store(artifact.S3Config{
		Endpoint:  a.Endpoint,
		Region:    a.Region,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Bucket:    a.Bucket,
		UseSSL:    a.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init artifact cache: %w", err)
	}
	return store, nil
}

func newLLMClient(cfg *config.Config) (llmclient.Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llmclient.NewGeminiClient(context.Background(), cfg.LLM.GeminiModel)
	default:
		return llmclient.NewGroqClient(cfg.LLM.GroqKey, cfg.LLM.GroqModel)
	}
}

func newSpeechClient(cfg *config.Config) (*speech.Client, error) {
	if cfg.Speech.APIKey == "" {
		log.Printf("app: SARVAM_API_KEY not set, voice and translation disabled")
		return nil, nil
	}
	return speech.NewClient(cfg.Speech.APIKey, cfg.Speech.BaseURL, cfg.Channel.AccountSID, cfg.Channel.AuthToken)
}

func newSender(cfg *config.Config) channel.Sender {
	if cfg.Channel.AccountSID == "" {
		log.Printf("app: channel credentials not set, outbound messages are logged only")
		return dryRunSender{}
	}
	sender, err := channel.NewRESTSender(cfg.Channel.AccountSID, cfg.Channel.AuthToken, cfg.Channel.From)
	if err != nil {
		log.Printf("app: channel sender init failed, falling back to dry-run: %v", err)
		return dryRunSender{}
	}
	return sender
}

// dryRunSender logs outbound messages instead of delivering them. Used
// in local development where no channel account exists.
type dryRunSender struct{}

func (dryRunSender) Send(_ context.Context, msg channel.Message) error {
	log.Printf("channel: dry-run to=%s media=%s body=%q", msg.To, msg.MediaURL, msg.Body)
	return nil
}
