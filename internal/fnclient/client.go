// Package fnclient talks to the remote serverless functions platform over
// its v1 HTTP API. It is the only component that knows the platform's wire
// format; callers see domain types and typed errors.
package fnclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmdhema/picasso/internal/app/domain/app"
)

const maxResponseBytes = 1 << 20

// Config configures the platform client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is an HTTP client for the functions platform.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a platform client. A zero timeout defaults to 30s.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type appEnvelope struct {
	App app.RemoteApp `json:"app"`
}

type appsEnvelope struct {
	Apps []app.RemoteApp `json:"apps"`
}

type routesEnvelope struct {
	Routes []app.Route `json:"routes"`
}

// ShowApp fetches the platform app by name.
func (c *Client) ShowApp(ctx context.Context, name string) (app.RemoteApp, error) {
	var envelope appEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/apps/"+url.PathEscape(name), nil, &envelope); err != nil {
		return app.RemoteApp{}, err
	}
	return envelope.App, nil
}

// ListApps fetches every platform app.
func (c *Client) ListApps(ctx context.Context) ([]app.RemoteApp, error) {
	var envelope appsEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/apps", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Apps, nil
}

// CreateApp creates the platform app.
func (c *Client) CreateApp(ctx context.Context, name string) (app.RemoteApp, error) {
	body := map[string]any{"app": map[string]any{"name": name}}
	var envelope appEnvelope
	if err := c.do(ctx, http.MethodPost, "/v1/apps", body, &envelope); err != nil {
		return app.RemoteApp{}, err
	}
	return envelope.App, nil
}

// UpdateApp updates the platform app with the caller-supplied parameters,
// forwarded as-is.
func (c *Client) UpdateApp(ctx context.Context, name string, params map[string]any) (app.RemoteApp, error) {
	body := map[string]any{"app": params}
	var envelope appEnvelope
	if err := c.do(ctx, http.MethodPut, "/v1/apps/"+url.PathEscape(name), body, &envelope); err != nil {
		return app.RemoteApp{}, err
	}
	return envelope.App, nil
}

// DeleteApp removes the platform app.
func (c *Client) DeleteApp(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/apps/"+url.PathEscape(name), nil, nil)
}

// ListRoutes fetches the routes attached to the platform app.
func (c *Client) ListRoutes(ctx context.Context, name string) ([]app.Route, error) {
	var envelope routesEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/apps/"+url.PathEscape(name)+"/routes", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Routes, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("functions platform request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Reason: errorReason(raw, resp.StatusCode)}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorReason extracts the platform's error message from the standard
// {"error": {"message": ...}} envelope, falling back to the raw body.
func errorReason(raw []byte, status int) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
