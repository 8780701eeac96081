package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"healthdash/internal/platform/id"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Config is the explicit request policy. Zero Timeout disables the deadline,
// zero MaxRetries sends each request once, zero RateLimit disables throttling.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	RateLimit  float64
}

// Options describe a single request. Method defaults to GET.
type Options struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryWait  time.Duration
	limiter    *rate.Limiter
	ids        id.Generator
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithIDGenerator(ids id.Generator) Option {
	return func(c *Client) { c.ids = ids }
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
		ids:        id.UUID{},
		logger:     zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send issues the request and decodes a successful JSON body into T.
// Every failure comes back as *RequestError.
func Send[T any](ctx context.Context, c *Client, path string, opts Options) (T, error) {
	var zero T
	resp, err := c.do(ctx, path, opts)
	if err != nil {
		return zero, &RequestError{Kind: KindTransport, Message: "request failed: " + err.Error(), Err: err}
	}
	if resp.status == http.StatusNoContent {
		return zero, nil
	}
	if resp.status < 200 || resp.status > 299 {
		return zero, &RequestError{
			Kind:    KindHTTP,
			Status:  resp.status,
			Message: ErrorMessage(resp.body, resp.statusText),
			Raw:     resp.body,
		}
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return zero, &RequestError{
			Kind:    KindDecode,
			Status:  resp.status,
			Message: fmt.Sprintf("decode response: %v", err),
			Raw:     resp.body,
			Err:     err,
		}
	}
	return out, nil
}

type response struct {
	status     int
	statusText string
	body       []byte
}

func (c *Client) do(ctx context.Context, path string, opts Options) (response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := c.ids.New()
	attempt := 0
	started := time.Now()

	op := func() (response, error) {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return response{}, backoff.Permanent(err)
			}
		}
		var body io.Reader
		if opts.Body != nil {
			body = bytes.NewReader(opts.Body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return response{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", ContentTypeJSON)
		req.Header.Set("Accept", ContentTypeJSON)
		req.Header.Set("X-Request-ID", requestID)
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return response{}, c.retryable(method, err)
		}
		defer resp.Body.Close()

		out := response{status: resp.StatusCode, statusText: statusText(resp)}
		if resp.StatusCode == http.StatusNoContent {
			return out, nil
		}
		out.body, err = io.ReadAll(resp.Body)
		if err != nil {
			return response{}, c.retryable(method, fmt.Errorf("read response: %w", err))
		}
		return out, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("attempts", attempt),
		zap.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		c.logger.Warn("api request failed", append(fields, zap.Error(err))...)
		return response{}, err
	}
	c.logger.Debug("api request", append(fields, zap.Int("status", resp.status))...)
	return resp, nil
}

// retryable marks failures of non-idempotent requests permanent so a POST or
// PATCH is never replayed against the service.
func (c *Client) retryable(method string, err error) error {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return err
	default:
		return backoff.Permanent(err)
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
