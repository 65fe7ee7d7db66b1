package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/michaelzh/mnews/internal/logger"
)

const userAgent = "mnews-bot/1.0"

// Getter is the fetching contract the rest of the pipeline depends on.
// Callers must treat an error as "no content" and continue.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Client is a resty-backed HTTP fetcher with bounded retries and a
// fixed inter-attempt delay. It holds no mutable state besides the
// underlying connection pool.
type Client struct {
	http     *resty.Client
	attempts uint
	delay    time.Duration
}

// New builds a fetcher. retries is the number of retries after the
// first attempt, so retries=2 means up to 3 requests per URL.
func New(timeout time.Duration, retries int, delay time.Duration) *Client {
	if retries < 0 {
		retries = 0
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:     httpClient,
		attempts: uint(retries) + 1,
		delay:    delay,
	}
}

// Get fetches url and returns the response body. Any transport error
// or non-2xx status on the final attempt yields an error.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var body string

	err := retry.Do(
		func() error {
			resp, err := c.http.R().SetContext(ctx).Get(url)
			if err != nil {
				return fmt.Errorf("request %s: %w", url, err)
			}
			if resp.IsError() {
				return fmt.Errorf("request %s: status %d", url, resp.StatusCode())
			}
			body = resp.String()
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("fetch failed, retrying", "url", url, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	return body, nil
}
