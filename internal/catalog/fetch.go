package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError reports a non-2xx catalog response.
type APIError struct {
	URL        string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog status %d for %s", e.StatusCode, e.URL)
}

// CategoryError reports a filter slug the catalog does not know.
type CategoryError struct {
	Slug string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unknown item category %q", e.Slug)
}

// getJSON fetches rawURL into v, retrying transient failures with a
// doubling backoff. Client errors other than 429 fail immediately.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	backoff := time.Duration(c.cfg.RetryBackoffMS) * time.Millisecond
	attempts := c.cfg.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.log.Warnf("catalog: attempt %d/%d failed (%v), retrying in %s", attempt-1, attempts, lastErr, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := c.doGet(ctx, rawURL, v)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return lastErr
		}
		if !retryable(err) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (c *Client) doGet(ctx context.Context, rawURL string, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("catalog get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return &APIError{URL: rawURL, StatusCode: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("catalog decode: %w", err)
	}
	return nil
}

// retryable: 5xx and 429 are worth another try, as is anything that
// never produced a status line (DNS, timeout, connection reset). Other
// 4xx responses will not improve on their own.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
