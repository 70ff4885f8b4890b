// Copyright (c) 2025 Neomantra Corp

// Package fetch retrieves a remote NRBF blob over HTTP, retrying
// transient failures, so a caller can decode() it without first staging
// it to disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client wraps a retrying HTTP client configured for fetching NRBF blobs.
type Client struct {
	http *retryablehttp.Client
}

// NewClient builds a Client whose retry attempts are logged via logger.
func NewClient(logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil // silence the library's own stdlib-log default
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn("retrying nrbf fetch", "url", req.URL.String(), "attempt", attempt)
		}
	}
	return &Client{http: rc}
}

// Open issues a GET for url and returns its body as a stream the caller
// must close. A non-2xx response is surfaced as an error rather than
// handed to the decoder.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
