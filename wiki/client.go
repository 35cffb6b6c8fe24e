package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxPageSize limits fetched page bodies to prevent memory exhaustion.
const maxPageSize = 10 * 1024 * 1024 // 10MB

// DefaultBaseURL is the wiki the dashboard ingests from.
const DefaultBaseURL = "https://apexlegends.wiki.gg"

// Client fetches wiki pages and parses them into DOM documents.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a wiki client for the given base URL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL returns the full URL for a page slug.
func (c *Client) PageURL(slug string) string {
	return c.baseURL + "/wiki/" + url.PathEscape(slug)
}

// FetchPage fetches a page by slug and parses it into a document.
// Non-2xx responses are errors; callers decide whether a failed page
// is fatal or just skipped.
func (c *Client) FetchPage(ctx context.Context, slug string) (*goquery.Document, error) {
	pageURL := c.PageURL(slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", slug, err)
	}
	req.Header.Set("User-Agent", "apexdash-ingester/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	c.logger.Debug("Fetched page", "slug", slug, "url", pageURL)
	return doc, nil
}
