// Package llm provides a Generator backed by Ollama-compatible HTTP
// generation endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout bounds a single generation call when no timeout option is
// supplied.
const defaultTimeout = 2 * time.Minute

// Request carries one generation call's parameters.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	TopP        float64
}

// Result is the upstream output plus the observed call latency.
type Result struct {
	Output  string
	Latency time.Duration
}

// Generator produces one completion per request. Implementations must be
// safe for concurrent use; callers treat any error as "no metrics for this
// parameter pair".
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAPIKey sets a bearer token attached to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// Client implements Generator against a /api/generate endpoint.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c
}

// generateRequest mirrors the upstream generation schema. Sampling
// parameters ride in the options object.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Model         string `json:"model"`
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"`
	EvalCount     int    `json:"eval_count"`
}

// Generate performs one non-streaming generation call.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("llm: encode request: %w", err)
	}

	endpoint := c.baseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("llm: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return Result{}, fmt.Errorf("llm: decode response: %w", err)
	}

	return Result{
		Output:  gen.Response,
		Latency: time.Since(start),
	}, nil
}
