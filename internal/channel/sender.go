// Package channel talks to the WhatsApp messaging gateway: outbound
// sends through the REST API and signature validation for inbound
// webhooks.
package channel

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Message is one outbound reply. MediaURL is optional.
type Message struct {
	To       string
	Body     string
	MediaURL string
}

// Sender delivers messages. The fake used in tests and the REST sender
// share this interface.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// RESTSender posts messages to the channel provider's message API with
// basic auth, the way the provider's own SDK does.
type RESTSender struct {
	http       *http.Client
	accountSID string
	authToken  string
	from       string
	baseURL    string
}

func NewRESTSender(accountSID, authToken, from string) (*RESTSender, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" {
		return nil, fmt.Errorf("channel account sid and auth token are required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("channel from number is required")
	}
	return &RESTSender{
		http:       &http.Client{Timeout: 30 * time.Second},
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    "https://api.twilio.com",
	}, nil
}

func (s *RESTSender) Send(ctx context.Context, msg Message) error {
	if s == nil {
		return fmt.Errorf("sender is nil")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	form := url.Values{}
	form.Set("From", s.from)
	form.Set("To", msg.To)
	form.Set("Body", msg.Body)
	if msg.MediaURL != "" {
		form.Set("MediaUrl", msg.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 1024
		if len(body) > max {
			body = body[:max]
		}
		return fmt.Errorf("channel send: unexpected status %s: %s", resp.Status, string(body))
	}
	log.Printf("channel: message sent to %s (media=%v)", msg.To, msg.MediaURL != "")
	return nil
}
