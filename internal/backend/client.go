// Package backend is the single point of HTTP communication with the election
// backend. It normalizes list responses, attaches the session's bearer token,
// and translates failures into typed errors; it performs no retries and no
// navigation.
package backend

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

	"evoting-portal/pkg/logger"
)

// TokenProvider yields the bearer token for the current request, or "" when
// the caller is anonymous. Tokens live in the session, not in the client;
// the provider is how per-request identity reaches the transport layer.
type TokenProvider func(ctx context.Context) string

// Client talks to the election backend REST API
type Client struct {
	baseURL    string
	mediaURL   string
	httpClient *http.Client
	token      TokenProvider
	logger     *logger.Logger
}

// New creates a backend client. baseURL includes the backend's /api prefix;
// mediaURL is the origin serving uploaded media, derived from baseURL when
// left empty.
func New(baseURL, mediaURL string, token TokenProvider, log *logger.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if mediaURL == "" {
		mediaURL = strings.TrimSuffix(base, "/api")
	}
	return &Client{
		baseURL:  base,
		mediaURL: strings.TrimRight(mediaURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		token:  token,
		logger: log,
	}
}

// MediaURL resolves a backend-relative media path (candidate photos, incident
// evidence) to an absolute URL. Absolute inputs pass through unchanged.
func (c *Client) MediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.mediaURL + path
}

// do performs a JSON request against the backend. out may be nil when the
// caller does not need the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// doQuery performs a GET with query parameters
func (c *Client) doQuery(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.send(req, out)
}

// send attaches auth, executes the request and decodes the response. Non-2xx
// statuses become *APIError; transport failures are wrapped unchanged.
func (c *Client) send(req *http.Request, out interface{}) error {
	if token := c.token(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method": req.Method,
			"path":   req.URL.Path,
		}).WithError(err).Warn("Backend request failed")
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Backend request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"path":        req.URL.Path,
			"status_code": resp.StatusCode,
		}).Error("Failed to parse backend response")
		return fmt.Errorf("failed to parse backend response: %w", err)
	}

	return nil
}

// getRaw fetches a path and returns the raw body for shape-dependent decoding
func (c *Client) getRaw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doQuery(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
