package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ent0n29/greta/internal/reliability"
)

const (
	maxAttempts = 3
	retryBase   = 100 * time.Millisecond
	retryCap    = 2 * time.Second
)

// HTTPClient fetches forecasts from the weather backend. The backend
// takes a form-encoded POST with the place name and answers JSON.
// Transient failures are retried with capped exponential backoff.
type HTTPClient struct {
	url    string
	client *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		url: strings.TrimSpace(endpoint),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) Forecast(ctx context.Context, place string) (*Forecast, error) {
	payload := url.Values{"place": {place}}.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt-1, retryBase, retryCap)):
			}
		}

		forecast, retryable, err := c.fetch(ctx, payload)
		if err == nil {
			return forecast, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) fetch(ctx context.Context, payload string) (*Forecast, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("create weather request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch weather: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, reliability.IsRetryableHTTPStatus(res.StatusCode),
			fmt.Errorf("weather backend status %d: %s", res.StatusCode, string(body))
	}

	var forecast Forecast
	if err := json.NewDecoder(res.Body).Decode(&forecast); err != nil {
		return nil, false, fmt.Errorf("decode weather response: %w", err)
	}
	return &forecast, false, nil
}
