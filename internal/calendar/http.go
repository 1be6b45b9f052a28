package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/greta/internal/reliability"
)

const (
	maxAttempts = 3
	retryBase   = 100 * time.Millisecond
	retryCap    = 2 * time.Second
)

// ErrNotFound is returned when the backend has no appointment with the
// requested id.
var ErrNotFound = errors.New("appointment not found")

// HTTPClient talks to the calendar backend. Every calendar is addressed
// by a calendar id passed as a query parameter; the backend spells the
// parameter "calenderid", so we do too.
type HTTPClient struct {
	url        string
	calendarID string
	client     *http.Client
	now        func() time.Time
}

// NewHTTPClient builds a client for one calendar. An empty calendarID
// gets a fresh per-process one so local runs never collide.
func NewHTTPClient(endpoint, calendarID string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if calendarID == "" {
		calendarID = "greta_" + uuid.NewString()[:8]
	}
	return &HTTPClient{
		url:        strings.TrimSpace(endpoint),
		calendarID: calendarID,
		client: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// CalendarID returns the calendar this client addresses.
func (c *HTTPClient) CalendarID() string {
	return c.calendarID
}

func (c *HTTPClient) endpoint(id int64) string {
	q := url.Values{"calenderid": {c.calendarID}}
	if id != 0 {
		q.Set("id", strconv.FormatInt(id, 10))
	}
	return c.url + "?" + q.Encode()
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode calendar request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt-1, retryBase, retryCap)):
			}
		}

		retryable, err := c.doOnce(ctx, method, target, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, method, target string, payload []byte, out any) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return false, fmt.Errorf("create calendar request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("call calendar backend: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return reliability.IsRetryableHTTPStatus(res.StatusCode),
			fmt.Errorf("calendar backend status %d: %s", res.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode calendar response: %w", err)
		}
	}
	return false, nil
}

func (c *HTTPClient) Create(ctx context.Context, apt Appointment) (*Appointment, error) {
	var created Appointment
	if err := c.do(ctx, http.MethodPost, c.endpoint(0), apt, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) Get(ctx context.Context, id int64) (*Appointment, error) {
	var apt Appointment
	if err := c.do(ctx, http.MethodGet, c.endpoint(id), nil, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

// List fetches all appointments in the calendar. The backend answers a
// bare error object instead of an array when the calendar is empty or
// broken, so the decode is tolerant: anything that is not a JSON array
// comes back as an empty list.
func (c *HTTPClient) List(ctx context.Context) ([]Appointment, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint(0), nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}

	var appointments []Appointment
	if err := json.Unmarshal(trimmed, &appointments); err != nil {
		return nil, fmt.Errorf("decode calendar list: %w", err)
	}
	return appointments, nil
}

func (c *HTTPClient) Update(ctx context.Context, id int64, changes Changes) (*Appointment, error) {
	var updated Appointment
	if err := c.do(ctx, http.MethodPut, c.endpoint(id), changes, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(id), nil, nil)
}

func (c *HTTPClient) Next(ctx context.Context) (*Appointment, error) {
	appointments, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return nextUpcoming(appointments, c.now()), nil
}
