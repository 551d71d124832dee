// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/uploader"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "memosync/1.0"
	memoriesPath     = "/memories"
	maxResponseBytes = 1 << 20
)

// Client uploads memory records over HTTP.
type Client struct {
	endpoint   string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ uploader.Uploader = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithTimeout sets the per-request timeout. Default is 5 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithToken sets a bearer token sent in the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// newClient is an internal constructor that returns the concrete type.
func newClient(serverURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(serverURL) == "" {
		return nil, uploader.ErrServerURLRequired
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: must be an absolute http(s) URL", serverURL)
	}

	c := &Client{
		endpoint:   strings.TrimRight(u.String(), "/") + memoriesPath,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default().With("component", "rest-uploader"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewClient creates an uploader for the memory server at serverURL.
//
// Returns uploader.Uploader interface to enforce abstraction.
func NewClient(serverURL string, opts ...Option) (uploader.Uploader, error) {
	return newClient(serverURL, opts...)
}

// memoryPayload is the request body of POST /memories.
type memoryPayload struct {
	Title       string `json:"title,omitempty"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash,omitempty"`
	CreatedAt   string `json:"created_at"`
	ClientID    string `json:"client_id"`
}

// apiResponse is the envelope the server wraps every response in.
type apiResponse struct {
	Success bool      `json:"success"`
	Data    apiData   `json:"data"`
	Error   *apiError `json:"error"`
}

type apiData struct {
	ID json.RawMessage `json:"id"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Upload sends record to the server.
func (c *Client) Upload(ctx context.Context, record *core.MemoryRecord) (uploader.Receipt, error) {
	payload, err := json.Marshal(memoryPayload{
		Title:       record.Title,
		Content:     record.Content,
		ContentHash: record.ContentHash,
		CreatedAt:   record.CreatedAt.UTC().Format(time.RFC3339),
		ClientID:    strconv.FormatUint(uint64(record.Id), 10),
	})
	if err != nil {
		return uploader.Receipt{}, fmt.Errorf("failed to marshal memory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return uploader.Receipt{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if record.SyncKey != "" {
		req.Header.Set("Idempotency-Key", record.SyncKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uploader.Receipt{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return uploader.Receipt{}, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed apiResponse
	parseErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &uploader.StatusError{StatusCode: resp.StatusCode}
		if parseErr == nil && parsed.Error != nil {
			se.Code = parsed.Error.Code
			se.Message = parsed.Error.Message
		}
		c.logger.Debug("upload rejected", "id", record.Id, "status", resp.StatusCode, "permanent", se.Permanent())
		return uploader.Receipt{}, se
	}

	// The status code is the acknowledgment; the body only carries the ID.
	if parseErr != nil {
		if len(bytes.TrimSpace(body)) > 0 {
			c.logger.Warn("unparseable upload response", "id", record.Id, "status", resp.StatusCode, "error", parseErr)
		}
		return uploader.Receipt{}, nil
	}

	receipt := uploader.Receipt{RemoteID: remoteID(parsed.Data.ID)}
	c.logger.Debug("memory uploaded", "id", record.Id, "remote_id", receipt.RemoteID, "elapsed", time.Since(start))
	return receipt, nil
}

// remoteID renders a JSON id (number or string) as a string.
func remoteID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
