package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// DefaultConfigFile is the project-level config file name.
const DefaultConfigFile = "apexdash.yaml"

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. Config file (path, or apexdash.yaml in the working directory)
// 3. Environment variables (secrets and deployment overrides)
//
// A .env file in the working directory is loaded into the environment
// first, so local development can keep credentials out of the shell.
func (l *Loader) Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("Loaded .env file")
	}

	config := DefaultConfig()

	filePath := path
	if filePath == "" {
		filePath = DefaultConfigFile
	}
	if fileConfig, err := LoadFromFile(filePath); err == nil {
		l.logger.Debug("Loaded config file", slog.String("path", filePath))
		config.Merge(fileConfig)
	} else if !os.IsNotExist(err) || path != "" {
		l.logger.Warn("Failed to load config file", slog.String("path", filePath), slog.String("error", err.Error()))
	}

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overlays environment variables onto the config. Credentials are
// only ever read from the environment.
func (l *Loader) applyEnv(config *Config) {
	config.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	config.VectorStore.PineconeAPIKey = os.Getenv("PINECONE_API_KEY")

	if host := os.Getenv("PINECONE_HOST"); host != "" {
		config.VectorStore.PineconeHost = host
	}
	if addr := os.Getenv("APEXDASH_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if baseURL := os.Getenv("APEXDASH_WIKI_URL"); baseURL != "" {
		config.Wiki.BaseURL = baseURL
	}
}
