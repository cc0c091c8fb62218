// Package upstream implements the outbound HTTP clients used to reach the
// rating service, the info service and the third-party movie database.
//
// Every call runs under a per-attempt deadline, is classified into the
// fault taxonomy, and is retried with exponential backoff only when the
// failure is transient.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 2 * time.Second
	defaultAttempts = 1
	defaultBackoff  = 50 * time.Millisecond
	maxBackoffSteps = 4
	maxBodyBytes    = 1 << 20

	// RequestIDHeader carries the caller's request id to upstreams.
	RequestIDHeader = "X-Request-ID"
)

// Ref names what a call is about, for error annotation.
type Ref struct {
	Op       string
	Resource string
	ID       string
}

// Client issues GET requests against one upstream base URL.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	target    string
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	attempts  int
	backoff   time.Duration
	limiter   *rate.Limiter
	userAgent string
	logger    logger.Logger
}

// New creates a client for target (used as the metrics label) rooted at baseURL.
func New(target, baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	c := &Client{
		target:    target,
		base:      u,
		http:      http.DefaultClient,
		timeout:   defaultTimeout,
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
		userAgent: "marquee/" + target,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("upstream")
	}
	return c, nil
}

// Target returns the metrics label of this client.
func (c *Client) Target() string { return c.target }

// Get fetches base/segments...?query and returns the response body.
func (c *Client) Get(ctx context.Context, ref Ref, query url.Values, segments ...string) ([]byte, error) {
	u := c.base.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoff
	b.MaxInterval = c.backoff * maxBackoffSteps

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordUpstreamRetry(c.target)
		}
		body, ferr := c.do(ctx, ref, u)
		if ferr == nil {
			return body, nil
		}
		if !ferr.Retryable() {
			return nil, backoff.Permanent(ferr)
		}
		return nil, ferr
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Debug(ctx, "retrying upstream call",
				logger.String("target", c.target),
				logger.String("path", u.Path),
				logger.Duration("wait", wait),
				logger.Error(err),
			)
		}),
	)
	if err == nil {
		return body, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	var fe *fault.Error
	if !errors.As(err, &fe) {
		// Retry gave up on the caller's context rather than on an attempt.
		err = contextFault(ref, err)
	}
	c.logger.Warn(ctx, "upstream call failed",
		logger.String("target", c.target),
		logger.String("path", u.Path),
		logger.Int("attempts", attempt),
		logger.Error(err),
	)
	return nil, err
}

// do performs one attempt.
func (c *Client) do(ctx context.Context, ref Ref, u *url.URL) (body []byte, ferr *fault.Error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if ferr != nil {
			outcome = ferr.Kind.String()
		}
		metrics.RecordUpstreamRequest(c.target, outcome, float64(time.Since(start).Milliseconds()))
	}()

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(fault.KindTimeout, ref, 0, fmt.Errorf("rate limit wait: %w", err))
		}
		metrics.RecordRateLimitWait(float64(time.Since(waitStart).Milliseconds()))
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, c.fail(fault.KindUnknown, ref, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(transportKind(attemptCtx, err), ref, 0, redactURL(err, u))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(transportKind(attemptCtx, err), ref, 0, fmt.Errorf("read body: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, c.fail(fault.KindNotFound, ref, resp.StatusCode, nil)
	default:
		return nil, c.fail(fault.KindUpstreamBadResponse, ref, resp.StatusCode, nil)
	}
}

func (c *Client) fail(kind fault.Kind, ref Ref, status int, err error) *fault.Error {
	return &fault.Error{
		Kind:     kind,
		Op:       ref.Op,
		Resource: ref.Resource,
		ID:       ref.ID,
		Status:   status,
		Err:      err,
	}
}

// transportKind separates deadline expiry from connection failures.
func transportKind(ctx context.Context, err error) fault.Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fault.KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fault.KindTimeout
	}
	return fault.KindUpstreamUnavailable
}

// redactURL drops the query string from transport errors so credentials
// passed as query parameters never reach logs or error bodies.
func redactURL(err error, u *url.URL) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s %s: %w", ue.Op, u.Path, ue.Err)
	}
	return err
}

func contextFault(ref Ref, err error) error {
	kind := fault.KindUpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = fault.KindTimeout
	}
	return &fault.Error{Kind: kind, Op: ref.Op, Resource: ref.Resource, ID: ref.ID, Err: err}
}

// decodeJSON unmarshals body into v, classifying failures as bad responses.
func decodeJSON(ref Ref, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &fault.Error{
			Kind:     fault.KindUpstreamBadResponse,
			Op:       ref.Op,
			Resource: ref.Resource,
			ID:       ref.ID,
			Err:      fmt.Errorf("decode: %w", err),
		}
	}
	return nil
}
