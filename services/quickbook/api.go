package quickbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service is the selection behind one service button.
type Service struct {
	Name          string `json:"serviceName"`
	PriceCents    *int64 `json:"priceCents,omitempty"`
	DurationLabel string `json:"durationLabel,omitempty"`
	BookingType   string `json:"bookingType,omitempty"`
}

// Contact is what the visitor types into the contact form.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty" validate:"required_without=Email"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// ClickResponse is the recorded resolution returned by the click call.
type ClickResponse struct {
	Handling     string `json:"handling"`
	URL          string `json:"url,omitempty"`
	ProviderName string `json:"providerName,omitempty"`
	RedirectType string `json:"redirectType"`
}

// IsExternal reports whether the visitor leaves for a third-party scheduler.
func (r *ClickResponse) IsExternal() bool {
	return r != nil && r.Handling == "external" && r.URL != ""
}

// API is the server half of the flow as seen by the widget.
type API interface {
	StartIntent(ctx context.Context, sessionID string, svc Service) (string, error)
	AttachContact(ctx context.Context, intentID string, contact Contact) (string, error)
	Click(ctx context.Context, intentID string) (*ClickResponse, error)
	Complete(ctx context.Context, intentID string) error
}

// APIError is a rejection returned by the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("quickbook: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("quickbook: status %d: %s", e.StatusCode, e.Message)
}

// HTTPClient calls the intent endpoints of one workspace bot.
type HTTPClient struct {
	baseURL     string
	workspaceID string
	botID       string
	client      *http.Client
}

// NewHTTPClient builds a client for baseURL. A nil http.Client gets a 10s timeout.
func NewHTTPClient(baseURL, workspaceID, botID string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		workspaceID: workspaceID,
		botID:       botID,
		client:      client,
	}
}

func (c *HTTPClient) intentsURL(parts ...string) string {
	u := fmt.Sprintf("%s/api/workspaces/%s/bots/%s/quickbook/intents",
		c.baseURL, url.PathEscape(c.workspaceID), url.PathEscape(c.botID))
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *HTTPClient) StartIntent(ctx context.Context, sessionID string, svc Service) (string, error) {
	body := struct {
		SessionID string `json:"sessionId"`
		Service
	}{SessionID: sessionID, Service: svc}

	var out struct {
		IntentID string `json:"intentId"`
	}
	if err := c.post(ctx, c.intentsURL(), body, &out); err != nil {
		return "", err
	}
	if out.IntentID == "" {
		return "", errors.New("quickbook: start response missing intentId")
	}
	return out.IntentID, nil
}

func (c *HTTPClient) AttachContact(ctx context.Context, intentID string, contact Contact) (string, error) {
	var out struct {
		LeadID string `json:"leadId"`
	}
	if err := c.post(ctx, c.intentsURL(intentID, "contact"), contact, &out); err != nil {
		return "", err
	}
	return out.LeadID, nil
}

func (c *HTTPClient) Click(ctx context.Context, intentID string) (*ClickResponse, error) {
	var out ClickResponse
	if err := c.post(ctx, c.intentsURL(intentID, "click"), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Complete(ctx context.Context, intentID string) error {
	return c.post(ctx, c.intentsURL(intentID, "complete"), struct{}{}, nil)
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("quickbook: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("quickbook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("quickbook: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("quickbook: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("quickbook: decode response: %w", err)
	}
	return nil
}
