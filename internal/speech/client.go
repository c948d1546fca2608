// Package speech wraps the speech/translation provider API: speech to
// text, text to speech and text translation for Indian languages.
// Auth is an api-subscription-key header.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// TTS input is capped by the provider; longer text is truncated, not
// rejected.
const ttsMaxChars = 500

const (
	sttModel       = "saaras:v3"
	ttsModel       = "bulbul:v3"
	translateModel = "mayura:v1"
)

type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string

	// Media hosted by the messaging channel needs channel credentials.
	mediaUser string
	mediaPass string
}

func NewClient(apiKey, baseURL, mediaUser, mediaPass string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("speech api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.sarvam.ai"
	}
	return &Client{
		http:      &http.Client{Timeout: 45 * time.Second},
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		mediaUser: mediaUser,
		mediaPass: mediaPass,
	}, nil
}

// Translate converts text between languages. sourceLang may be
// "unknown" to let the provider detect it; the detected code is
// returned alongside the translation.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, string, error) {
	if c == nil {
		return "", "", fmt.Errorf("client is nil")
	}
	body, _ := json.Marshal(map[string]any{
		"input":                text,
		"source_language_code": sourceLang,
		"target_language_code": targetLang,
		"model":                translateModel,
		"enable_preprocessing": true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("translate", resp); err != nil {
		return "", "", err
	}
	var out struct {
		TranslatedText     string `json:"translated_text"`
		SourceLanguageCode string `json:"source_language_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if out.TranslatedText == "" {
		return "", "", fmt.Errorf("translate: empty result")
	}
	return out.TranslatedText, out.SourceLanguageCode, nil
}

// Transcribe downloads the referenced media and submits it for speech
// to text with automatic language detection.
func (c *Client) Transcribe(ctx context.Context, mediaURL string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	audio, err := c.downloadMedia(ctx, mediaURL)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "recording.ogg")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	_ = mw.WriteField("model", sttModel)
	_ = mw.WriteField("language_code", "unknown")
	_ = mw.WriteField("with_timestamps", "false")
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("stt", resp); err != nil {
		return "", err
	}
	var out struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Transcript) == "" {
		return "", fmt.Errorf("stt: empty transcript")
	}
	return out.Transcript, nil
}

// Synthesize renders text as spoken audio (WAV bytes) in the target
// language. Text beyond the provider limit is truncated.
func (c *Client) Synthesize(ctx context.Context, text, targetLang string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	runes := []rune(text)
	if len(runes) > ttsMaxChars {
		text = string(runes[:ttsMaxChars])
	}
	if strings.TrimSpace(targetLang) == "" {
		targetLang = "en-IN"
	}
	body, _ := json.Marshal(map[string]any{
		"inputs":               []string{text},
		"target_language_code": targetLang,
		"model":                ttsModel,
		"speaker":              "kavya",
		"pace":                 1.0,
		"enable_preprocessing": true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus("tts", resp); err != nil {
		return nil, err
	}
	var out struct {
		Audios []string `json:"audios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Audios) == 0 || out.Audios[0] == "" {
		return nil, fmt.Errorf("tts: empty audio")
	}
	wav, err := base64.StdEncoding.DecodeString(out.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio: %w", err)
	}
	return wav, nil
}

func (c *Client) downloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	if c.mediaUser != "" {
		req.SetBasicAuth(c.mediaUser, c.mediaPass)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media host: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	const max = 1024
	if len(body) > max {
		body = body[:max]
	}
	return fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, string(body))
}
