package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://apexlegends.wiki.gg", cfg.Wiki.BaseURL)
	assert.Equal(t, 7, cfg.Chat.TopK)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Contains(t, cfg.Ingest.IndexPages, "Legends")
	assert.Contains(t, cfg.Ingest.DirectPages, "Apex_Legends")
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Wiki.BaseURL = "" }},
		{"missing embed model", func(c *Config) { c.Gemini.EmbedModel = "" }},
		{"unknown provider", func(c *Config) { c.VectorStore.Provider = "weaviate" }},
		{"zero topk", func(c *Config) { c.Chat.TopK = 0 }},
		{"negative batch size", func(c *Config) { c.Ingest.BatchSize = -1 }},
		{"zero fetch rate", func(c *Config) { c.Ingest.FetchRate = 0 }},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMerge_OverlaysNonZeroFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Wiki:        WikiConfig{BaseURL: "https://other.wiki.test"},
		Chat:        ChatConfig{TopK: 5},
		VectorStore: VectorStoreConfig{Provider: ProviderLocal},
	})

	assert.Equal(t, "https://other.wiki.test", cfg.Wiki.BaseURL)
	assert.Equal(t, 5, cfg.Chat.TopK)
	assert.Equal(t, ProviderLocal, cfg.VectorStore.Provider)
	// Untouched fields keep their defaults.
	assert.Equal(t, "text-embedding-004", cfg.Gemini.EmbedModel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestMerge_NilIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	require.NoError(t, cfg.Validate())
}

func TestLoader_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apexdash.yaml")
	yaml := `
wiki:
  base_url: https://file.wiki.test
chat:
  top_k: 3
vector_store:
  provider: local
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("GEMINI_API_KEY", "gem-secret")
	t.Setenv("PINECONE_API_KEY", "pine-secret")
	t.Setenv("APEXDASH_WIKI_URL", "https://env.wiki.test")

	cfg, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	// Environment beats file, file beats defaults.
	assert.Equal(t, "https://env.wiki.test", cfg.Wiki.BaseURL)
	assert.Equal(t, 3, cfg.Chat.TopK)
	assert.Equal(t, ProviderLocal, cfg.VectorStore.Provider)
	assert.Equal(t, "gem-secret", cfg.Gemini.APIKey)
	assert.Equal(t, "pine-secret", cfg.VectorStore.PineconeAPIKey)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("APEXDASH_WIKI_URL", "")
	t.Setenv("PINECONE_HOST", "")
	t.Setenv("APEXDASH_ADDR", "")
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://apexlegends.wiki.gg", cfg.Wiki.BaseURL)
}

func TestLoader_BrokenFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chat: ["), 0644))

	// A broken explicit file falls back to defaults with a warning; the
	// merged config still validates.
	cfg, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Chat.TopK)
}
