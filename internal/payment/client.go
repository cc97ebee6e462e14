package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Strategy selects how the gateway is reached
type Strategy int

const (
	// StrategyDirect calls the gateway base URL
	StrategyDirect Strategy = iota
	// StrategyProxy prefixes every gateway URL with the proxy URL
	StrategyProxy
)

func (s Strategy) String() string {
	if s == StrategyProxy {
		return "proxy"
	}
	return "direct"
}

// MarshalJSON renders the strategy by name
func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ErrUnavailable wraps transport failures that survived the proxy fallback
var ErrUnavailable = errors.New("payment gateway unavailable")

// GatewayErrorItem is one entry of a gateway error body
type GatewayErrorItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GatewayError is returned when the gateway answers with an error status
type GatewayError struct {
	StatusCode int
	Errors     []GatewayErrorItem
}

func (e *GatewayError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("payment gateway returned status %d", e.StatusCode)
	}
	parts := make([]string, len(e.Errors))
	for i, item := range e.Errors {
		parts[i] = item.Description
	}
	return fmt.Sprintf("payment gateway returned status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// Config holds the gateway endpoints and credentials
type Config struct {
	BaseURL  string
	ProxyURL string
	APIKey   string
	Timeout  time.Duration
}

// Client talks to an Asaas-style payment gateway. It holds no mutable state:
// the caller passes the strategy to use and gets back the one that worked.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates a new gateway client
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "payment").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// call performs one gateway request. A transport failure on the direct route
// is retried exactly once through the proxy when one is configured.
func (c *Client) call(ctx context.Context, strategy Strategy, method, path string, in, out any) (Strategy, error) {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return strategy, fmt.Errorf("marshal request: %w", err)
		}
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + path

	err := c.do(ctx, c.urlFor(strategy, target), method, body, out)
	var te *transportError
	if errors.As(err, &te) && strategy == StrategyDirect && c.cfg.ProxyURL != "" {
		c.logger.Warn().Err(err).Str("path", path).Msg("Direct gateway call failed, retrying through proxy")
		strategy = StrategyProxy
		err = c.do(ctx, c.urlFor(strategy, target), method, body, out)
	}

	if errors.As(err, &te) {
		return strategy, fmt.Errorf("%w: %v", ErrUnavailable, te.err)
	}
	return strategy, err
}

func (c *Client) urlFor(strategy Strategy, target string) string {
	if strategy == StrategyProxy && c.cfg.ProxyURL != "" {
		return strings.TrimRight(c.cfg.ProxyURL, "/") + "/" + target
	}
	return target
}

func (c *Client) do(ctx context.Context, url, method string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("access_token", c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		var parsed struct {
			Errors []GatewayErrorItem `json:"errors"`
		}
		if json.Unmarshal(data, &parsed) == nil {
			gwErr.Errors = parsed.Errors
		}
		return gwErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
