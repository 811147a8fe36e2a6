// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the paced HTTP client shared by source adapters.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/pdiddy/medlit/pkg/types"
)

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 64 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client issues GET requests no faster than one per CrawlDelay. Requests
// are not retried: a failed request fails the caller's unit of work.
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient returns a Client for cfg. When hc is nil a client with
// cfg.Timeout is created; otherwise hc is used as given.
func NewClient(cfg types.HTTPConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.CrawlDelay > 0 {
		limit = rate.Every(cfg.CrawlDelay)
	}
	return &Client{
		http:      hc,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: cfg.UserAgent,
	}
}

// Get waits for the limiter, fetches base with params encoded as the query
// string and returns the body. If the context is cancelled while waiting the
// function returns the context error.
func (c *Client) Get(ctx context.Context, base string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := base
	if len(params) > 0 {
		target = base + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", base, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", base, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: base, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
