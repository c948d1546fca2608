package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	PublicBaseURL string

	DatabaseURL string

	Channel  ChannelConfig
	Queue    QueueConfig
	LLM      LLMConfig
	Speech   SpeechConfig
	Artifact ArtifactConfig
}

// ChannelConfig holds the messaging provider credentials. Send is
// disabled (dry-run logging) when AccountSID is empty.
type ChannelConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// QueueConfig enables asynchronous webhook processing. With an empty
// PublishURL the webhook handles turns inline.
type QueueConfig struct {
	PublishURL string
	Token      string
	SigningKey string
	Retries    int
}

type LLMConfig struct {
	Provider    string // "groq" (default) or "gemini"
	GroqKey     string
	GroqModel   string
	GeminiModel string
}

type SpeechConfig struct {
	APIKey  string
	BaseURL string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:          *port,
		Env:           env,
		PublicBaseURL: strings.TrimRight(firstNonEmpty(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "http://localhost"+*port), "/"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Channel: ChannelConfig{
			AccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
			AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
			From:       strings.TrimSpace(os.Getenv("TWILIO_FROM")),
		},
		Queue: QueueConfig{
			PublishURL: strings.TrimSpace(os.Getenv("QUEUE_PUBLISH_URL")),
			Token:      strings.TrimSpace(os.Getenv("QUEUE_TOKEN")),
			SigningKey: strings.TrimSpace(os.Getenv("QUEUE_SIGNING_KEY")),
			Retries:    intEnv("QUEUE_RETRIES", 3),
		},
		LLM: LLMConfig{
			Provider:    firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "groq"),
			GroqKey:     strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
			GroqModel:   firstNonEmpty(strings.TrimSpace(os.Getenv("GROQ_MODEL")), "llama-3.3-70b-versatile"),
			GeminiModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.0-flash"),
		},
		Speech: SpeechConfig{
			APIKey:  strings.TrimSpace(os.Getenv("SARVAM_API_KEY")),
			BaseURL: firstNonEmpty(strings.TrimSpace(os.Getenv("SARVAM_BASE_URL")), "https://api.sarvam.ai"),
		},
		Artifact: loadArtifactConfig(env),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fails fast on half-configured features. Fully absent
// optional features are fine; partially present credentials are a
// deployment mistake.
func (c *Config) validate() error {
	if c.Env == "production" {
		if c.Channel.AccountSID == "" || c.Channel.AuthToken == "" || c.Channel.From == "" {
			return fmt.Errorf("production requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM")
		}
	}
	if c.Queue.PublishURL != "" && c.Queue.SigningKey == "" {
		return fmt.Errorf("QUEUE_PUBLISH_URL is set but QUEUE_SIGNING_KEY is missing")
	}
	switch c.LLM.Provider {
	case "groq":
		if c.Env == "production" && c.LLM.GroqKey == "" {
			return fmt.Errorf("LLM_PROVIDER=groq requires GROQ_API_KEY in production")
		}
	case "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "nyaya-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
