package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apexdash/apexdash/config"
	"github.com/apexdash/apexdash/gemini"
	"github.com/apexdash/apexdash/ingest"
	"github.com/apexdash/apexdash/rag"
	"github.com/apexdash/apexdash/server"
	"github.com/apexdash/apexdash/vectorstore"
	"github.com/apexdash/apexdash/wiki"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 10 * time.Second

// loadConfig loads and validates configuration for a command.
func loadConfig(configPath string) (*config.Config, error) {
	return config.NewLoader(slog.Default()).Load(configPath)
}

// newStore builds the configured vector store.
func newStore(cfg *config.Config, logger *slog.Logger) (vectorstore.Store, error) {
	switch cfg.VectorStore.Provider {
	case config.ProviderLocal:
		return vectorstore.NewLocal(cfg.VectorStore.LocalPath, logger)
	case config.ProviderPinecone:
		if cfg.VectorStore.PineconeHost == "" {
			return nil, fmt.Errorf("PINECONE_HOST (or vector_store.pinecone_host) is required")
		}
		if cfg.VectorStore.PineconeAPIKey == "" {
			return nil, fmt.Errorf("PINECONE_API_KEY is required")
		}
		return vectorstore.NewPinecone(
			cfg.VectorStore.PineconeHost,
			cfg.VectorStore.PineconeAPIKey,
			vectorstore.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStore.Provider)
	}
}

// newGemini builds the Gemini client.
func newGemini(cfg *config.Config, logger *slog.Logger) (*gemini.Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return gemini.NewClient(
		cfg.Gemini.APIKey,
		gemini.WithModels(cfg.Gemini.EmbedModel, cfg.Gemini.GenModel),
		gemini.WithLogger(logger),
	), nil
}

// ingestCmd runs one offline ingestion pass.
func ingestCmd(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Crawl the wiki, extract chunks, and upsert embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			fetcher := wiki.NewClient(cfg.Wiki.BaseURL, wiki.WithLogger(logger))

			ingestCfg := ingest.Config{
				IndexPages:   cfg.Ingest.IndexPages,
				DirectPages:  cfg.Ingest.DirectPages,
				FetchRate:    cfg.Ingest.FetchRate,
				BatchSize:    cfg.Ingest.BatchSize,
				EmbedWorkers: cfg.Ingest.EmbedWorkers,
				DryRun:       dryRun,
			}

			var embedder ingest.Embedder
			var store vectorstore.Store
			if !dryRun {
				client, err := newGemini(cfg, logger)
				if err != nil {
					return err
				}
				embedder = client

				store, err = newStore(cfg, logger)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := ingest.New(fetcher, embedder, store, ingestCfg, logger).Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Ingestion finished: %d pages scraped (%d failed), %d chunks, %d vectors upserted (%d batches failed)\n",
				summary.PagesScraped, summary.PagesFailed, summary.Chunks,
				summary.VectorsUpserted, summary.BatchesFailed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "crawl and extract only; skip embedding and upserting")
	return cmd
}

// serveCmd runs the HTTP API server.
func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			client, err := newGemini(cfg, logger)
			if err != nil {
				return err
			}
			store, err := newStore(cfg, logger)
			if err != nil {
				return err
			}

			engine := rag.NewEngine(client, store, client,
				rag.WithTopK(cfg.Chat.TopK),
				rag.WithLogger(logger))

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(engine, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Serving chat API", "addr", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown failed", "error", err)
				return err
			}
			return nil
		},
	}
}
