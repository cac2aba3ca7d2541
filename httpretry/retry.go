// Package httpretry issues HTTP requests and retries them with exponential
// backoff while the server answers 429 Too Many Requests.
package httpretry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultMaxRetries is the number of attempts made before giving up.
	DefaultMaxRetries = 5
	// DefaultBaseDelay is the wait after the first 429; it doubles after each one.
	DefaultBaseDelay = 1000 * time.Millisecond
)

// ErrRetriesExhausted is returned when every attempt was rate limited.
var ErrRetriesExhausted = fmt.Errorf("API request failed after multiple retries.")

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client wraps a Doer with the 429 retry loop.
type Client struct {
	doer       Doer
	maxRetries int
	baseDelay  time.Duration
	sleep      SleepFunc
	onRetry    func(attempt int, delay time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the total attempt budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay sets the wait after the first rate-limited attempt.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithSleep replaces the timer used between attempts (tests use a recorder).
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithOnRetry registers a callback invoked before each backoff wait.
func WithOnRetry(fn func(attempt int, delay time.Duration)) Option {
	return func(c *Client) { c.onRetry = fn }
}

// New creates a retrying client around doer. A nil doer uses http.DefaultClient.
func New(doer Doer, opts ...Option) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{
		doer:       doer,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req, retrying on 429. Any other status is returned as-is for the
// caller to judge. Transport errors are returned immediately without retry.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	delay := c.baseDelay
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		attemptReq, err := rewind(ctx, req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := c.doer.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Drain so the connection can be reused by the next attempt.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		slog.Debug("rate limited, backing off", "attempt", attempt, "delay", delay)
		if c.onRetry != nil {
			c.onRetry(attempt, delay)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
	return nil, ErrRetriesExhausted
}

// FetchWithRetry sends req through doer, making at most maxRetries attempts.
func FetchWithRetry(ctx context.Context, doer Doer, req *http.Request, maxRetries int, opts ...Option) (*http.Response, error) {
	opts = append([]Option{WithMaxRetries(maxRetries)}, opts...)
	return New(doer, opts...).Do(ctx, req)
}

// Sleep waits for d, returning early with ctx.Err() if ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rewind returns a request for the given attempt with a fresh body.
func rewind(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	out := req.WithContext(ctx)
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed for attempt %d", attempt)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	out.Body = body
	return out, nil
}
