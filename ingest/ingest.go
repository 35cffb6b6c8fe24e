// Package ingest drives the offline crawl: discover detail pages from index
// pages, extract chunks, embed them, and upsert vectors into the index.
package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/apexdash/apexdash/vectorstore"
	"github.com/apexdash/apexdash/wiki"
)

// PageFetcher fetches wiki pages. Satisfied by *wiki.Client.
type PageFetcher interface {
	FetchPage(ctx context.Context, slug string) (*goquery.Document, error)
	PageURL(slug string) string
}

// Embedder turns text into a fixed-length vector. Satisfied by *gemini.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds the crawl seeds and tuning knobs.
type Config struct {
	// IndexPages enumerate other pages and are never themselves chunked.
	IndexPages []string

	// DirectPages contain ingestible content and are scraped as-is.
	DirectPages []string

	// FetchRate is the politeness throttle between page fetches,
	// in requests per second.
	FetchRate float64

	// BatchSize bounds upsert request size.
	BatchSize int

	// EmbedWorkers bounds concurrent embedding calls within one batch.
	EmbedWorkers int

	// DryRun crawls and extracts but skips embedding and upserting.
	DryRun bool
}

// DefaultConfig returns the production seed set and tuning defaults.
func DefaultConfig() Config {
	return Config{
		IndexPages:   []string{"Legends", "Weapons", "Seasons", "Events", "Cosmetics"},
		DirectPages:  []string{"Apex_Legends", "Item", "Maps", "Game_modes", "Lore"},
		FetchRate:    2.0,
		BatchSize:    100,
		EmbedWorkers: 4,
	}
}

// Summary reports what an ingestion run did.
type Summary struct {
	PagesScraped    int
	PagesFailed     int
	Chunks          int
	VectorsUpserted int
	BatchesFailed   int
}

// Ingester orchestrates one ingestion run. It holds the only mutable chunk
// accumulator; extraction and discovery are pure functions over one page.
type Ingester struct {
	fetcher  PageFetcher
	embedder Embedder
	store    vectorstore.Store
	config   Config
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates an Ingester. A nil logger falls back to slog.Default().
func New(fetcher PageFetcher, embedder Embedder, store vectorstore.Store, cfg Config, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 1
	}
	if cfg.FetchRate <= 0 {
		cfg.FetchRate = 2.0
	}

	return &Ingester{
		fetcher:  fetcher,
		embedder: embedder,
		store:    store,
		config:   cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.FetchRate), 1),
		logger:   logger,
	}
}

// Run executes one full ingestion pass. Page-level failures are logged and
// skipped; only context cancellation aborts the run.
func (i *Ingester) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	pages, err := i.collectPages(ctx)
	if err != nil {
		return nil, err
	}
	i.logger.Info("Resolved scrape set", "pages", len(pages))

	chunks, err := i.scrapePages(ctx, pages, summary)
	if err != nil {
		return nil, err
	}
	summary.Chunks = len(chunks)
	i.logger.Info("Extraction complete",
		"pages_scraped", summary.PagesScraped,
		"pages_failed", summary.PagesFailed,
		"chunks", summary.Chunks)

	if i.config.DryRun || len(chunks) == 0 {
		return summary, nil
	}

	if err := i.embedAndUpsert(ctx, chunks, summary); err != nil {
		return nil, err
	}
	i.logger.Info("Ingestion complete",
		"vectors", summary.VectorsUpserted,
		"batches_failed", summary.BatchesFailed)

	return summary, nil
}

// collectPages resolves the final scrape set: direct pages plus every detail
// link discovered on the index pages, deduplicated in first-seen order.
// A failed index page contributes nothing and is not fatal.
func (i *Ingester) collectPages(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var pages []string

	add := func(slug string) {
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		pages = append(pages, slug)
	}

	for _, slug := range i.config.DirectPages {
		add(slug)
	}

	for _, indexPage := range i.config.IndexPages {
		if err := i.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		doc, err := i.fetcher.FetchPage(ctx, indexPage)
		if err != nil {
			i.logger.Warn("Failed to fetch index page, skipping", "page", indexPage, "error", err)
			continue
		}

		links := wiki.DiscoverLinks(doc, indexPage)
		i.logger.Info("Discovered detail links", "page", indexPage, "links", len(links))
		for _, slug := range links {
			add(slug)
		}
	}

	return pages, nil
}

// scrapePages extracts chunks from every page in the scrape set.
// A failed page contributes an empty chunk list and is not fatal.
func (i *Ingester) scrapePages(ctx context.Context, pages []string, summary *Summary) ([]wiki.Chunk, error) {
	var chunks []wiki.Chunk

	for _, slug := range pages {
		if err := i.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		doc, err := i.fetcher.FetchPage(ctx, slug)
		if err != nil {
			i.logger.Warn("Failed to fetch page, skipping", "page", slug, "error", err)
			summary.PagesFailed++
			continue
		}

		pageChunks := wiki.Extract(doc, i.fetcher.PageURL(slug), slug)
		i.logger.Debug("Extracted chunks", "page", slug, "chunks", len(pageChunks))
		chunks = append(chunks, pageChunks...)
		summary.PagesScraped++
	}

	return chunks, nil
}

// embedAndUpsert embeds chunks and writes them to the index in batches.
// A chunk whose embedding exhausts its retry budget is lost; a failed batch
// is logged and skipped. Partial index population is an accepted outcome.
func (i *Ingester) embedAndUpsert(ctx context.Context, chunks []wiki.Chunk, summary *Summary) error {
	// Content-hash IDs make re-ingestion an upsert-by-identity, so drop
	// duplicates within the run before batching.
	seen := make(map[string]struct{}, len(chunks))
	deduped := chunks[:0]
	for _, c := range chunks {
		id := c.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, c)
	}

	for start := 0; start < len(deduped); start += i.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+i.config.BatchSize, len(deduped))
		records := i.embedBatch(ctx, deduped[start:end])
		if len(records) == 0 {
			continue
		}

		if err := i.store.Upsert(ctx, records); err != nil {
			i.logger.Warn("Batch upsert failed, skipping", "batch_start", start, "size", len(records), "error", err)
			summary.BatchesFailed++
			continue
		}
		summary.VectorsUpserted += len(records)
	}

	return nil
}

// embedBatch embeds one batch concurrently, bounded by EmbedWorkers.
// The batch's texts are independent; per-chunk embedding failures leave a
// gap that is squeezed out of the returned records.
func (i *Ingester) embedBatch(ctx context.Context, chunks []wiki.Chunk) []vectorstore.Record {
	results := make([]*vectorstore.Record, len(chunks))
	sem := make(chan struct{}, i.config.EmbedWorkers)
	var wg sync.WaitGroup

	for idx, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, chunk wiki.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			vector, err := i.embedder.Embed(ctx, chunk.Content)
			if err != nil {
				i.logger.Warn("Embedding failed, dropping chunk",
					"page", chunk.Metadata.PageTitle,
					"section", chunk.Metadata.SectionTitle,
					"error", err)
				return
			}

			results[idx] = &vectorstore.Record{
				ID:     chunk.ID(),
				Values: vector,
				Metadata: vectorstore.RecordMetadata{
					Text:         chunk.Content,
					Source:       chunk.Metadata.Source,
					PageTitle:    chunk.Metadata.PageTitle,
					SectionTitle: chunk.Metadata.SectionTitle,
				},
			}
		}(idx, chunk)
	}
	wg.Wait()

	records := make([]vectorstore.Record, 0, len(chunks))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}
