// Package webhook posts ingest reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// EventIngest identifies the payload sent after an ingest or check run.
const EventIngest = "wflogger.ingest"

// maxResponseBody caps how much of a response body is kept.
const maxResponseBody = 1024 * 1024

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event  string         `json:"event"`
	SentAt time.Time      `json:"sent_at"`
	Report *output.Report `json:"report"`
}

// Client sends ingest reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	// Name is the webhook name, or its URL when unnamed.
	Name string

	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ShouldFire reports whether a webhook with the given trigger fires for report.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasFailures()
	}
}

// Send posts a report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{Name: opts.URL}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	payload, err := json.Marshal(Payload{Event: EventIngest, SentAt: c.now().UTC(), Report: report})
	if err != nil {
		return fail(fmt.Errorf("failed to marshal report: %w", err))
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "wflogger-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// SendAll posts report to every configured webhook whose trigger fires,
// in order. Failures do not stop later webhooks.
func (c *Client) SendAll(ctx context.Context, hooks []config.WebhookConfig, report *output.Report) []*Response {
	var responses []*Response
	for _, hook := range hooks {
		if !ShouldFire(hook.Trigger, report) {
			continue
		}
		resp := c.Send(ctx, report, SendOptions{URL: hook.URL, Token: hook.Token, Timeout: hook.Timeout})
		if hook.Name != "" {
			resp.Name = hook.Name
		}
		responses = append(responses, resp)
	}
	return responses
}
