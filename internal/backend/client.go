package backend

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token for outgoing calls; "" sends none.
type TokenSource interface {
	Token() string
}

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	Tokens          TokenSource
	OnUnauthorized  func(ctx context.Context)
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Transport       http.RoundTripper
}

// Client talks to the retail REST backend.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	breaker        *gobreaker.CircuitBreaker[*reply]
}

type reply struct {
	statusCode int
	body       []byte
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*reply](gobreaker.Settings{
		Name:    "backend",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		breaker:        breaker,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, body, "application/json")
}

// do sends one request through the breaker. Only transport failures and 5xx
// replies count against the breaker; 4xx replies are the caller's problem.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) ([]byte, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	rep, err := c.breaker.Execute(func() (*reply, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		if c.tokens != nil {
			if token := c.tokens.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read reply failed: %w", err)
		}
		rep := &reply{statusCode: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			return rep, apiError(rep)
		}
		return rep, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if rep.statusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return nil, ErrUnauthorized
	}
	if rep.statusCode < 200 || rep.statusCode >= 300 {
		return nil, apiError(rep)
	}
	return rep.body, nil
}

func apiError(rep *reply) *APIError {
	var env envelope[json.RawMessage]
	msg := ""
	if json.Unmarshal(rep.body, &env) == nil {
		msg = env.Message
	}
	return &APIError{StatusCode: rep.statusCode, Message: msg}
}

func parseEnvelope[T any](body []byte) (envelope[T], error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return env, nil
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.getJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope[[]T](body)
	if err != nil {
		return nil, err
	}
	list, err := decodeList(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return list, nil
}

func getValue[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var zero T
	body, err := c.getJSON(ctx, path, query)
	if err != nil {
		return zero, err
	}
	env, err := parseEnvelope[T](body)
	if err != nil {
		return zero, err
	}
	v, err := env.decodeData()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return v, nil
}
