// ABOUTME: Centralized configuration for the retrieval engine and CLI
// ABOUTME: Defaults, then an optional TOML file, then environment variables, with validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the optional config file looked up in the working directory
const FileName = "bookrag.toml"

// SharedCorpus is the default corpus and the read fallback for missing ones
const SharedCorpus = "shared"

// Config holds all configuration for bookrag
type Config struct {
	// Storage layout
	DataDir string `toml:"data_dir"`
	Corpus  string `toml:"corpus"`

	// Completion provider
	LLMProvider    string `toml:"llm_provider"`
	OllamaHost     string `toml:"ollama_host"`
	OllamaPort     string `toml:"ollama_port"`
	OllamaBaseURL  string `toml:"ollama_base_url"`
	OllamaModel    string `toml:"ollama_model"`
	OpenAIKey      string `toml:"-"`
	OpenAIModel    string `toml:"openai_model"`
	AnthropicKey   string `toml:"-"`
	AnthropicModel string `toml:"anthropic_model"`
	GeminiKey      string `toml:"-"`
	GeminiModel    string `toml:"gemini_model"`

	// Embeddings
	EmbeddingProvider  string `toml:"embedding_provider"`
	EmbeddingModel     string `toml:"embedding_model"`
	EmbeddingDimension int    `toml:"embedding_dimension"`

	// Ingestion
	ChunkSize        int `toml:"chunk_size"`
	ChunkOverlap     int `toml:"chunk_overlap"`
	SummaryThreshold int `toml:"summary_threshold"`
	SectionSize      int `toml:"section_size"`
	MaxSections      int `toml:"max_sections"`
	MasterBudget     int `toml:"master_budget"`

	// Querying
	ContextBudget       int     `toml:"context_budget"`
	ClassifierThreshold float64 `toml:"classifier_threshold"`

	// Provider calls
	Timeout           time.Duration `toml:"timeout"`
	MaxRetries        int           `toml:"max_retries"`
	RetryDelay        time.Duration `toml:"retry_delay"`
	RequestsPerSecond float64       `toml:"requests_per_second"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:             "crews",
		Corpus:              SharedCorpus,
		LLMProvider:         "ollama",
		OllamaHost:          "localhost",
		OllamaPort:          "11434",
		OllamaModel:         "llama3",
		OpenAIModel:         "gpt-4o-mini",
		AnthropicModel:      "claude-3-5-haiku-latest",
		GeminiModel:         "gemini-2.0-flash",
		EmbeddingProvider:   "ollama",
		EmbeddingModel:      "bge-m3",
		EmbeddingDimension:  384,
		ChunkSize:           1000,
		ChunkOverlap:        200,
		SummaryThreshold:    5000,
		SectionSize:         50000,
		MaxSections:         20,
		MasterBudget:        20000,
		ContextBudget:       15000,
		ClassifierThreshold: 0.7,
		Timeout:             120 * time.Second,
		MaxRetries:          2,
		RetryDelay:          2 * time.Second,
		RequestsPerSecond:   2,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Load reads bookrag.toml from the working directory if present, then the environment
func Load() (*Config, error) {
	return LoadFile(FileName)
}

// LoadFile reads the given TOML file if it exists, then applies environment overrides.
// A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("BOOKRAG_DATA_DIR", c.DataDir)
	c.Corpus = getEnv("BOOKRAG_CORPUS", c.Corpus)
	c.LLMProvider = getEnv("BOOKRAG_LLM_PROVIDER", c.LLMProvider)
	c.OllamaHost = getEnv("OLLAMA_SERVER", c.OllamaHost)
	c.OllamaPort = getEnv("OLLAMA_PORT", c.OllamaPort)
	c.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", c.OllamaBaseURL)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIModel = getEnv("BOOKRAG_OPENAI_MODEL", c.OpenAIModel)
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.AnthropicModel = getEnv("BOOKRAG_ANTHROPIC_MODEL", c.AnthropicModel)
	c.GeminiKey = getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY"))
	c.GeminiModel = getEnv("BOOKRAG_GEMINI_MODEL", c.GeminiModel)
	c.EmbeddingProvider = getEnv("BOOKRAG_EMBEDDING_PROVIDER", c.EmbeddingProvider)
	c.EmbeddingModel = getEnv("BOOKRAG_EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbeddingDimension = getEnvInt("BOOKRAG_EMBEDDING_DIM", c.EmbeddingDimension)
	c.ChunkSize = getEnvInt("BOOKRAG_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("BOOKRAG_CHUNK_OVERLAP", c.ChunkOverlap)
	c.ContextBudget = getEnvInt("BOOKRAG_CONTEXT_BUDGET", c.ContextBudget)
	c.ClassifierThreshold = getEnvFloat("BOOKRAG_CLASSIFIER_THRESHOLD", c.ClassifierThreshold)
	c.Timeout = getEnvDuration("BOOKRAG_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("BOOKRAG_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("BOOKRAG_RETRY_DELAY", c.RetryDelay)
	c.RequestsPerSecond = getEnvFloat("BOOKRAG_RPS", c.RequestsPerSecond)
	c.LogLevel = getEnv("BOOKRAG_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("BOOKRAG_LOG_FORMAT", c.LogFormat)
}

// Validate rejects configurations the engine cannot run with
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	}
	if c.SectionSize <= 0 || c.MaxSections <= 0 || c.MasterBudget <= 0 || c.ContextBudget <= 0 {
		return fmt.Errorf("section_size, max_sections, master_budget and context_budget must be positive")
	}
	if c.ClassifierThreshold < 0 || c.ClassifierThreshold > 1 {
		return fmt.Errorf("classifier_threshold must be 0-1, got %f", c.ClassifierThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be 0-10, got %d", c.MaxRetries)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding_dimension must be positive, got %d", c.EmbeddingDimension)
	}
	switch c.LLMProvider {
	case "ollama", "openai", "anthropic", "gemini", "none":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	switch c.EmbeddingProvider {
	case "ollama", "openai", "gemini", "fake":
	default:
		return fmt.Errorf("unknown embedding_provider %q", c.EmbeddingProvider)
	}
	return nil
}

// OllamaURL returns the OpenAI-compatible endpoint of the Ollama server
func (c *Config) OllamaURL() string {
	if c.OllamaBaseURL != "" {
		return c.OllamaBaseURL
	}
	return fmt.Sprintf("http://%s:%s/v1", c.OllamaHost, c.OllamaPort)
}

// CorpusDir returns the directory holding everything for one corpus
func (c *Config) CorpusDir(corpus string) string {
	return filepath.Join(c.DataDir, corpus)
}

// StorageDir returns the per-corpus storage directory
func (c *Config) StorageDir(corpus string) string {
	return filepath.Join(c.CorpusDir(corpus), "rag_db")
}

// InputDir returns the directory scanned by reindex
func (c *Config) InputDir(corpus string) string {
	return filepath.Join(c.CorpusDir(corpus), "input")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
