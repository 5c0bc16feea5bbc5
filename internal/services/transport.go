package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tunetx/internal/shared"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// Option configures a remote adapter.
type Option func(*transport)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) { t.httpClient = c }
}

// WithBaseURL points the adapter at a different API root, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(t *transport) { t.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger for retry and request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(t *transport) { t.logger = l }
}

// WithRetry sets how many attempts a request gets and the base delay between them.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(t *transport) {
		t.maxRetries = attempts
		t.backoff = backoff
	}
}

// WithRateLimit throttles requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(t *transport) { t.limiter = rate.NewLimiter(r, burst) }
}

// transport sends JSON requests to one API with retries and status mapping.
type transport struct {
	service    string
	baseURL    string
	httpClient *http.Client
	header     http.Header
	limiter    *rate.Limiter
	logger     *log.Logger
	maxRetries int
	backoff    time.Duration
}

func newTransport(service, baseURL string, opts ...Option) *transport {
	t := &transport{
		service:    service,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     make(http.Header),
		logger:     log.New(io.Discard),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// url resolves endpoint against the base URL. Absolute URLs (pagination links) pass through.
func (t *transport) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return t.baseURL + endpoint
}

// do sends body (if non-nil) as JSON and decodes a 2xx response into result (if non-nil).
func (t *transport) do(ctx context.Context, method, endpoint string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", t.service, err)
		}
	}

	resp, err := t.send(ctx, method, t.url(endpoint), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := t.checkStatus(method, endpoint, resp); err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", t.service, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", t.service, err)
	}
	return nil
}

// send performs the request, retrying transport errors, 429 and 5xx with exponential backoff.
//
// A Retry-After header overrides the computed delay.
func (t *transport) send(ctx context.Context, method, url string, payload []byte) (*http.Response, error) {
	attempts := max(t.maxRetries, 1)

	for attempt := range attempts {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", shared.ErrTimeout, t.service, err)
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create request: %w", t.service, err)
		}
		for k, v := range t.header {
			req.Header[k] = v
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := t.httpClient.Do(req)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrTimeout, t.service, ctx.Err())
		}
		wait, retry := shouldRetry(resp, err)
		if !retry {
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, t.service, err)
			}
			return resp, nil
		}

		last := attempt == attempts-1
		if err != nil {
			t.logger.Warn("request failed", "service", t.service, "attempt", attempt+1, "of", attempts, "error", err)
			if last {
				return nil, fmt.Errorf("%w: %s: request failed after %d attempts: %v", shared.ErrServiceUnavailable, t.service, attempts, err)
			}
		} else {
			t.logger.Warn("retryable status", "service", t.service, "attempt", attempt+1, "of", attempts, "status", resp.StatusCode)
			if last {
				return resp, nil
			}
			resp.Body.Close()
		}

		if wait <= 0 {
			wait = t.backoff * time.Duration(1<<attempt)
		}
		if err := sleepContext(ctx, wait); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrTimeout, t.service, err)
		}
	}

	return nil, fmt.Errorf("%w: %s: request failed after %d attempts", shared.ErrServiceUnavailable, t.service, attempts)
}

// checkStatus maps a non-2xx response to a sentinel error.
func (t *transport) checkStatus(method, endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readDetail(resp.Body)
	where := fmt.Sprintf("%s %s %s", t.service, method, endpoint)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: status %d%s", shared.ErrNotAuthenticated, where, resp.StatusCode, detail)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s%s", shared.ErrForbidden, where, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s%s", shared.ErrPlaylistNotFound, where, detail)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s: status %d%s", shared.ErrServiceUnavailable, where, resp.StatusCode, detail)
	default:
		return fmt.Errorf("%w: %s: status %d%s", shared.ErrAPIRequest, where, resp.StatusCode, detail)
	}
}

// readDetail extracts a short error message from common JSON error shapes.
func readDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	switch {
	case body.Detail != "":
		return ": " + body.Detail
	case body.Error.Message != "":
		return ": " + body.Error.Message
	}
	return ""
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp.Header.Get("Retry-After")), true
	}
	return 0, false
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
