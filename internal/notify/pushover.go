package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"persona-agent/pkg/logger"
)

// DefaultEndpoint is the Pushover message API
const DefaultEndpoint = "https://api.pushover.net/1/messages.json"

// Pushover sends push notifications through the Pushover message API.
// Callers treat delivery as fire-and-forget; an error return only means the
// attempt failed.
type Pushover struct {
	token      string
	user       string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPushover creates a Pushover notifier. An empty endpoint falls back to
// DefaultEndpoint.
func NewPushover(token, user, endpoint string) *Pushover {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Pushover{
		token:    token,
		user:     user,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Get(),
	}
}

// Push delivers a single text message
func (p *Pushover) Push(ctx context.Context, message string) error {
	form := url.Values{
		"token":   {p.token},
		"user":    {p.user},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send pushover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}

	p.logger.Debug("Push notification sent", zap.Int("status", resp.StatusCode))
	return nil
}
