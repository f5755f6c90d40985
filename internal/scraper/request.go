package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"

// SiteError represents an HTTP-level failure from the buying-group site.
type SiteError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("buying group site error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *SiteError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// page is one fetched site page after redirects.
type page struct {
	body     []byte
	finalURL *url.URL
	status   int
}

// do performs a single request. form, when non-nil, is sent as an
// x-www-form-urlencoded POST body.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, referer string) (*page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setBrowserHeaders(req, referer)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &SiteError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       b,
		}
	}

	return &page{body: b, finalURL: resp.Request.URL, status: resp.StatusCode}, nil
}

// getWithRetry fetches a page with exponential backoff retry. Only GETs go
// through here; form POSTs are side-effecting and never retried blindly.
func (c *Client) getWithRetry(ctx context.Context, path string) (*page, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		pg, err := c.do(ctx, http.MethodGet, path, nil, "")
		if err == nil {
			return pg, nil
		}

		lastErr = err

		// Check if error is retryable
		siteErr, ok := err.(*SiteError)
		if !ok || !siteErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// setBrowserHeaders mimics the headers a desktop browser sends. The
// Accept-Encoding header is left to the transport so bodies arrive decoded.
func (c *Client) setBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-CA,en-GB;q=0.9,en-US;q=0.8,en-IN;q=0.7,en;q=0.6")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}
