// Package remote is the HTTP client for the bonus tracker backend. Every
// call is a single attempt; callers decide when to try again.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/bonusboard/pkg/logger"
	"github.com/okian/bonusboard/pkg/metrics"
)

// AdminKeyHeader carries the admin credential on mutating bonus calls.
const AdminKeyHeader = "x-admin-key"

// Client talks to the backend at a fixed base URL.
type Client struct {
	base string
	http *http.Client
	log  logger.Logger
}

// New creates a Client for base, e.g. https://backend.example.com.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(strings.TrimSpace(base), "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("remote")
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string { return c.base }

// do performs one request and decodes the body into out. A body that is not
// valid JSON decodes as empty; on non-2xx the backend's "error" field, if
// any, becomes the error message.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body any, headers map[string]string, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", endpoint, err)
		}
		rdr = bytes.NewReader(buf)
	}

	url := path
	if !strings.HasPrefix(path, "http") {
		url = c.base + path
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return fmt.Errorf("build %s: %w", endpoint, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordRemoteLatency(endpoint, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordRemoteRequest(endpoint, "error")
		c.log.Warn(ctx, "backend request failed", logger.String("endpoint", endpoint), logger.Error(err))
		return &transportError{cause: err}
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(endpoint, strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		c.log.Debug(ctx, "backend returned error status",
			logger.String("endpoint", endpoint), logger.Int("status", resp.StatusCode))
		return newHTTPError(resp.StatusCode, e.Error)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.log.Debug(ctx, "backend body not json", logger.String("endpoint", endpoint), logger.Error(err))
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	return c.do(ctx, endpoint, http.MethodGet, path, nil, nil, out)
}
