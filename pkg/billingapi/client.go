package billingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/requestid"
)

// Operation names, also used as circuit breaker names.
const (
	OpFetchSubscription = "subscription.current"
	OpFetchUsage        = "usage.count"
	OpActivate          = "subscription.activate"
)

// Client talks to the subscription and usage API. It implements
// subscription.Provider, usage.Fetcher and activation.Activator.
//
// Each operation has its own circuit breaker, so a failing usage endpoint does
// not stop subscription fetches. Transport errors, 5xx, 408, 425 and 429 are
// retried with backoff; other 4xx responses fail immediately.
type Client struct {
	base       *url.URL
	cfg        Config
	httpClient *http.Client
	backoff    Backoff
	log        *slog.Logger
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
}

// New validates cfg and creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "gatekit/1.0"
	}

	c := &Client{
		base: base,
		cfg:  cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		backoff: ExponentialBackoff{
			InitialInterval: cfg.RetryInterval,
			MaxInterval:     cfg.MaxRetryDelay,
			Multiplier:      2,
			JitterFactor:    0.1,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breakers = map[string]*gobreaker.CircuitBreaker[[]byte]{
		OpFetchSubscription: c.newBreaker(OpFetchSubscription),
		OpFetchUsage:        c.newBreaker(OpFetchUsage),
		OpActivate:          c.newBreaker(OpActivate),
	}

	return c, nil
}

func (c *Client) newBreaker(op string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        op,
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.cfg.BreakerFailures
		},
		// a 4xx or a cancelled caller says nothing about the health of the API
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrPermanentFailure) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("billing api circuit breaker state changed",
				logger.Component("billingapi"),
				slog.String("operation", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// request describes one logical API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do runs req through the operation's breaker and the retry loop and returns the response body.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, fmt.Errorf("billingapi: marshal %s request: %w", req.op, err)
		}
	}

	target := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}
	requestID := requestid.FromContextOrNew(ctx)

	body, err := c.breakers[req.op].Execute(func() ([]byte, error) {
		return c.retry(ctx, req, target.String(), payload, requestID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, req.op)
	}
	return body, err
}

func (c *Client) retry(ctx context.Context, req request, target string, payload []byte, requestID string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff.NextInterval(attempt)
			c.log.DebugContext(ctx, "retrying billing api request",
				logger.Component("billingapi"),
				slog.String("operation", req.op),
				logger.Attempt(attempt+1),
				slog.Duration("delay", delay),
				logger.Error(lastErr),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, status, err := c.attempt(ctx, req.method, target, payload, requestID)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isPermanent(status) {
			return nil, fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		}
	}

	return nil, fmt.Errorf("%w: %s failed after %d attempts: %w",
		ErrTemporaryFailure, req.op, c.cfg.MaxRetries+1, lastErr)
}

// attempt performs a single HTTP round trip.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, requestID string) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	httpReq.Header.Set(requestid.Header, requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	// 1MB is far above any legitimate response of this API
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if len(respBody) > 0 {
			snippet := strings.ReplaceAll(string(respBody), "\n", " ")
			if len(snippet) > 200 {
				snippet = snippet[:200] + "..."
			}
			msg += ": " + snippet
		}
		return nil, resp.StatusCode, errors.New(msg)
	}

	return respBody, resp.StatusCode, nil
}

// isPermanent reports whether a status will not change by retrying.
func isPermanent(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	default:
		return true
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConfig)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	return u, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
