package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxBodyLog bounds how much of a sink response is kept in an Outcome.
const maxBodyLog = 4 << 10

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIVersion  string
	PixelID     string
	AccessToken string
	Timeout     time.Duration
}

// Client submits events to the Conversions API events endpoint.
// It is immutable and safe for concurrent use.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient builds a Client for the pixel in opts.
func NewClient(opts Options) *Client {
	return &Client{
		endpoint: fmt.Sprintf("%s/%s/%s/events",
			strings.TrimRight(opts.BaseURL, "/"), opts.APIVersion, opts.PixelID),
		token: opts.AccessToken,
		http:  &http.Client{Timeout: opts.Timeout},
	}
}

// Endpoint returns the events URL this client posts to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send posts ev and reports the result. Transport errors and non-2xx
// responses are carried in the Outcome.
func (c *Client) Send(ctx context.Context, ev ServerEvent) Outcome {
	start := time.Now()
	out := Outcome{EventName: ev.EventName, EventID: ev.EventID}

	status, body, err := c.post(ctx, ev)
	out.StatusCode = status
	out.Body = body
	out.Err = err
	out.Duration = time.Since(start)

	if out.OK() {
		slog.Info("capi event sent",
			"event_name", ev.EventName, "event_id", ev.EventID,
			"status", status, "body", body,
			"user_data_keys", ev.UserData.Fields())
	} else {
		slog.Warn("capi event failed",
			"event_name", ev.EventName, "event_id", ev.EventID,
			"status", status, "body", body, "err", err)
	}
	return out
}

func (c *Client) post(ctx context.Context, ev ServerEvent) (int, string, error) {
	payload, err := json.Marshal(envelope{Data: []ServerEvent{ev}, AccessToken: c.token})
	if err != nil {
		return 0, "", fmt.Errorf("capi: marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("capi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("capi: post %s: %w", ev.EventName, redactURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("capi: read response: %w", err)
	}
	return resp.StatusCode, string(raw), nil
}
