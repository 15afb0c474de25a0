package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quickbook/models"
)

// SMSConfig points at an HTTP SMS gateway that accepts
// {"from","to","body"} JSON with a bearer API key.
type SMSConfig struct {
	GatewayURL string
	APIKey     string
	From       string
}

// SMSSender delivers staff alerts as text messages.
type SMSSender struct {
	cfg    SMSConfig
	client *http.Client
}

// NewSMSSender returns nil when no gateway is configured.
func NewSMSSender(cfg SMSConfig, client *http.Client) *SMSSender {
	if cfg.GatewayURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SMSSender{cfg: cfg, client: client}
}

func (s *SMSSender) Channel() string { return models.ChannelSMS }

// Send posts the message. Non-2xx responses become *StatusError so the retry
// layer can tell throttling and outages from rejected numbers.
func (s *SMSSender) Send(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(map[string]string{
		"from": s.cfg.From,
		"to":   msg.To,
		"body": msg.Body,
	})
	if err != nil {
		return fmt.Errorf("sms: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
