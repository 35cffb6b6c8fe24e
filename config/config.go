// Package config provides configuration loading and management for apexdash.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vector store providers.
const (
	ProviderPinecone = "pinecone"
	ProviderLocal    = "local"
)

// Config represents the complete apexdash configuration.
type Config struct {
	Wiki        WikiConfig        `yaml:"wiki"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Chat        ChatConfig        `yaml:"chat"`
	Server      ServerConfig      `yaml:"server"`
}

// WikiConfig configures the source wiki.
type WikiConfig struct {
	// BaseURL is the wiki root (default: https://apexlegends.wiki.gg)
	BaseURL string `yaml:"base_url"`
}

// GeminiConfig configures the embedding and generation models.
// The API key is never read from YAML; it comes from GEMINI_API_KEY.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string `yaml:"-"`
	// EmbedModel is the embedding model, shared by ingestion and query.
	EmbedModel string `yaml:"embed_model"`
	// GenModel is the generative model for chat answers.
	GenModel string `yaml:"gen_model"`
}

// VectorStoreConfig selects and configures the vector index.
type VectorStoreConfig struct {
	// Provider is "pinecone" or "local".
	Provider string `yaml:"provider"`
	// PineconeHost is the full URL of the Pinecone index.
	// Overridden by PINECONE_HOST when set.
	PineconeHost string `yaml:"pinecone_host"`
	// PineconeAPIKey authenticates against Pinecone; from PINECONE_API_KEY.
	PineconeAPIKey string `yaml:"-"`
	// LocalPath is the persistence directory for the local provider.
	// Empty keeps vectors in memory.
	LocalPath string `yaml:"local_path"`
}

// IngestConfig configures the offline crawl.
type IngestConfig struct {
	// IndexPages enumerate detail pages and are never themselves chunked.
	IndexPages []string `yaml:"index_pages"`
	// DirectPages are scraped as-is.
	DirectPages []string `yaml:"direct_pages"`
	// FetchRate is the politeness throttle in page fetches per second.
	FetchRate float64 `yaml:"fetch_rate"`
	// BatchSize bounds upsert request size.
	BatchSize int `yaml:"batch_size"`
	// EmbedWorkers bounds concurrent embedding calls within a batch.
	EmbedWorkers int `yaml:"embed_workers"`
}

// ChatConfig configures the online answer path.
type ChatConfig struct {
	// TopK is how many chunks ground each answer.
	TopK int `yaml:"top_k"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiConfig{
			BaseURL: "https://apexlegends.wiki.gg",
		},
		Gemini: GeminiConfig{
			EmbedModel: "text-embedding-004",
			GenModel:   "gemini-1.5-flash-latest",
		},
		VectorStore: VectorStoreConfig{
			Provider:  ProviderPinecone,
			LocalPath: "./apexdash-vectors",
		},
		Ingest: IngestConfig{
			IndexPages:   []string{"Legends", "Weapons", "Seasons", "Events", "Cosmetics"},
			DirectPages:  []string{"Apex_Legends", "Item", "Maps", "Game_modes", "Lore"},
			FetchRate:    2.0,
			BatchSize:    100,
			EmbedWorkers: 4,
		},
		Chat: ChatConfig{
			TopK: 7,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Wiki.BaseURL == "" {
		return fmt.Errorf("wiki.base_url is required")
	}
	if c.Gemini.EmbedModel == "" {
		return fmt.Errorf("gemini.embed_model is required")
	}
	if c.Gemini.GenModel == "" {
		return fmt.Errorf("gemini.gen_model is required")
	}
	switch c.VectorStore.Provider {
	case ProviderPinecone, ProviderLocal:
	default:
		return fmt.Errorf("vector_store.provider must be %q or %q, got %q",
			ProviderPinecone, ProviderLocal, c.VectorStore.Provider)
	}
	if c.Chat.TopK <= 0 {
		return fmt.Errorf("chat.top_k must be positive, got %d", c.Chat.TopK)
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.FetchRate <= 0 {
		return fmt.Errorf("ingest.fetch_rate must be positive, got %v", c.Ingest.FetchRate)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Wiki.BaseURL != "" {
		c.Wiki.BaseURL = other.Wiki.BaseURL
	}
	if other.Gemini.EmbedModel != "" {
		c.Gemini.EmbedModel = other.Gemini.EmbedModel
	}
	if other.Gemini.GenModel != "" {
		c.Gemini.GenModel = other.Gemini.GenModel
	}
	if other.VectorStore.Provider != "" {
		c.VectorStore.Provider = other.VectorStore.Provider
	}
	if other.VectorStore.PineconeHost != "" {
		c.VectorStore.PineconeHost = other.VectorStore.PineconeHost
	}
	if other.VectorStore.LocalPath != "" {
		c.VectorStore.LocalPath = other.VectorStore.LocalPath
	}
	if len(other.Ingest.IndexPages) > 0 {
		c.Ingest.IndexPages = other.Ingest.IndexPages
	}
	if len(other.Ingest.DirectPages) > 0 {
		c.Ingest.DirectPages = other.Ingest.DirectPages
	}
	if other.Ingest.FetchRate != 0 {
		c.Ingest.FetchRate = other.Ingest.FetchRate
	}
	if other.Ingest.BatchSize != 0 {
		c.Ingest.BatchSize = other.Ingest.BatchSize
	}
	if other.Ingest.EmbedWorkers != 0 {
		c.Ingest.EmbedWorkers = other.Ingest.EmbedWorkers
	}
	if other.Chat.TopK != 0 {
		c.Chat.TopK = other.Chat.TopK
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}
