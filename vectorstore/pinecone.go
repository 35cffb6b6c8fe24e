package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxResponseSize limits index response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Pinecone talks to a Pinecone index over its REST API.
type Pinecone struct {
	host       string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// PineconeOption configures a Pinecone client.
type PineconeOption func(*Pinecone)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) PineconeOption {
	return func(p *Pinecone) {
		p.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PineconeOption {
	return func(p *Pinecone) {
		p.logger = logger
	}
}

// NewPinecone creates a client for the index at host (the full index URL).
func NewPinecone(host, apiKey string, opts ...PineconeOption) *Pinecone {
	p := &Pinecone{
		host:   host,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type upsertRequest struct {
	Vectors []Record `json:"vectors"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Upsert writes one batch of records to the index.
func (p *Pinecone) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	if _, err := p.do(ctx, "/vectors/upsert", upsertRequest{Vectors: records}); err != nil {
		return fmt.Errorf("upsert %d vectors: %w", len(records), err)
	}

	p.logger.Debug("Upserted vectors", "count", len(records))
	return nil
}

// Query returns up to topK nearest records with their metadata.
func (p *Pinecone) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	body, err := p.do(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse query response: %w", err)
	}
	return resp.Matches, nil
}

// do executes a single POST against the index and returns the body.
func (p *Pinecone) do(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(respBody)
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		return nil, fmt.Errorf("index API error (status %d): %s", resp.StatusCode, detail)
	}
	return respBody, nil
}
