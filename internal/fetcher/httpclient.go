package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

const (
	// Some upstream sources reject requests that do not look like a browser.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"

	defaultTimeout          = 30 * time.Second
	defaultRetryCount       = 3
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 4 * time.Second
)

// Options configures the shared HTTP client.
// Zero values fall back to the defaults above.
type Options struct {
	UserAgent        string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Logger           zerolog.Logger
}

// Client is the single shared HTTP client used by every source adapter.
// It sends a fixed browser user-agent on every request and retries with
// exponential backoff on HTTP 429 only; any other status is returned to the
// adapter immediately.
type Client struct {
	rc  *resty.Client
	log zerolog.Logger
}

// NewClient creates the shared HTTP client with retry logic and exponential backoff
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryCount == 0 {
		opts.RetryCount = defaultRetryCount
	}
	if opts.RetryWaitTime == 0 {
		opts.RetryWaitTime = defaultRetryWaitTime
	}
	if opts.RetryMaxWaitTime == 0 {
		opts.RetryMaxWaitTime = defaultRetryMaxWaitTime
	}

	log := opts.Logger.With().Str("component", "httpclient").Logger()

	client := resty.New().
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetRetryMaxWaitTime(opts.RetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook(log))

	return &Client{rc: client, log: log}
}

// Get performs a GET and returns the raw body and status code.
// A transport failure returns a network or timeout FetchError; persistent
// HTTP 429 after retry exhaustion returns a rate-limit FetchError. Any other
// status is the adapter's problem to interpret.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req := c.rc.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, NewTimeoutError(err)
		}
		return nil, 0, NewNetworkError(err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return resp.Bytes(), resp.StatusCode(), NewRateLimitError(resp.StatusCode())
	}

	return resp.Bytes(), resp.StatusCode(), nil
}

// retryCondition retries on rate limiting only. Server and client errors are
// returned to the adapter so the orchestrator can move on to the next source
// instead of burning time on a host that has answered.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return false
	}
	return r.StatusCode() == http.StatusTooManyRequests
}

// retryHook logs retry attempts for observability
func retryHook(log zerolog.Logger) resty.RetryHookFunc {
	return func(r *resty.Response, err error) {
		if err != nil {
			log.Debug().
				Str("url", r.Request.URL).
				Int("attempt", r.Request.Attempt).
				Err(err).
				Msg("retrying request after error")
			return
		}
		log.Debug().
			Str("url", r.Request.URL).
			Int("attempt", r.Request.Attempt).
			Int("status_code", r.StatusCode()).
			Msg("retrying rate-limited request")
	}
}
