// Package gemini provides a client for the Gemini REST API covering text
// embeddings (with rate-limit-aware retry) and content generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// maxResponseSize limits API response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultBaseURL is the Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Default models. The embedding model must be identical on the ingestion
// and query paths: similarity search assumes one vector space.
const (
	DefaultEmbedModel = "text-embedding-004"
	DefaultGenModel   = "gemini-1.5-flash-latest"
)

// Client calls the Gemini REST API.
type Client struct {
	apiKey      string
	baseURL     string
	embedModel  string
	genModel    string
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(client *Client) {
		client.baseURL = baseURL
	}
}

// WithModels overrides the embedding and generation model names.
// Empty values keep the defaults.
func WithModels(embedModel, genModel string) Option {
	return func(client *Client) {
		if embedModel != "" {
			client.embedModel = embedModel
		}
		if genModel != "" {
			client.genModel = genModel
		}
	}
}

// WithRetryConfig sets the retry configuration for embedding requests.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a Gemini client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		embedModel:  DefaultEmbedModel,
		genModel:    DefaultGenModel,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Allow time for generation
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request/response shapes for the REST API.

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Embed turns text into a fixed-length vector. Rate-limit responses and
// transport failures are retried with exponential backoff up to the retry
// budget; exhausting the budget returns the last error.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s", c.baseURL, c.embedModel, c.apiKey)
	body := embedRequest{
		Model:   "models/" + c.embedModel,
		Content: content{Parts: []contentPart{{Text: text}}},
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		respBody, err := c.doRequest(ctx, url, body)
		if err == nil {
			var resp embedResponse
			if err := json.Unmarshal(respBody, &resp); err != nil {
				return nil, fmt.Errorf("parse embedding response: %w", err)
			}
			if len(resp.Embedding.Values) == 0 {
				return nil, fmt.Errorf("embedding response contained no values")
			}
			return resp.Embedding.Values, nil
		}

		lastErr = err
		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Embedding request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", c.retryConfig.MaxAttempts, lastErr)
}

// Generate calls the generative model with the full prompt as a single
// input and returns the response text. Generation is not retried; failures
// propagate immediately to the caller.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.genModel, c.apiKey)
	body := generateRequest{
		Contents: []content{{Parts: []contentPart{{Text: prompt}}}},
	}

	respBody, err := c.doRequest(ctx, url, body)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse generation response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// doRequest executes a single POST against the API and returns the body.
func (c *Client) doRequest(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("marshal request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	// Add jitter: +/- 25% to prevent synchronized retries
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("Gemini API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode >= 500:
		// Server errors are transient
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusBadRequest:
		// Auth and bad request errors are fatal
		return NewFatalError(err)
	default:
		return NewFatalError(err)
	}
}
