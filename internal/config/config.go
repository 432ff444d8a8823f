package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Storage    StorageConfig    `yaml:"storage"`
	Inbox      InboxConfig      `yaml:"inbox"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ProvidersConfig struct {
	Default        string           `yaml:"default"`
	RequestTimeout time.Duration    `yaml:"request_timeout"`
	StreamTimeout  time.Duration    `yaml:"stream_timeout"`
	Gemini         GeminiConfig     `yaml:"gemini"`
	OpenRouter     OpenRouterConfig `yaml:"openrouter"`
}

// GeminiConfig configures the single-model Gemini backend.
// APIKey is normally supplied through GEMINI_API_KEY.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OpenRouterConfig configures the multi-model chat-completion backend.
// Models are tried in order. APIKey is normally supplied through OPENROUTER_API_KEY.
type OpenRouterConfig struct {
	APIKey  string   `yaml:"api_key"`
	BaseURL string   `yaml:"base_url"`
	Models  []string `yaml:"models"`
}

// ChunkingConfig sizes transcript chunks. Overlap is a pointer so an
// explicit 0 can be told apart from an absent key.
type ChunkingConfig struct {
	ChunkSize   int  `yaml:"chunk_size"`
	Overlap     *int `yaml:"overlap"`
	Concurrency int  `yaml:"concurrency"`
}

// OverlapChars returns the configured overlap, 0 when unset.
func (c ChunkingConfig) OverlapChars() int {
	if c.Overlap == nil {
		return 0
	}
	return *c.Overlap
}

type TranscriptConfig struct {
	Languages      []string      `yaml:"languages"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	YtDlpPath      string        `yaml:"ytdlp_path"`
	TempDir        string        `yaml:"temp_dir"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	CacheMaxItems  int           `yaml:"cache_max_items"`
	RedisURL       string        `yaml:"redis_url"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// InboxConfig configures batch mode: URL files dropped into Input are
// summarized into Output and then moved to Archived.
type InboxConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Archived      string `yaml:"archived"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	AIModel       string `yaml:"ai_model"`
	Language      string `yaml:"language"`
}

func (c *Config) Validate() error {
	if c.Chunking.ChunkSize < 0 {
		return fmt.Errorf("chunking.chunk_size must not be negative")
	}
	if c.Chunking.OverlapChars() < 0 {
		return fmt.Errorf("chunking.overlap must not be negative")
	}
	if c.Inbox.Enabled {
		if c.Inbox.Input == "" {
			return fmt.Errorf("inbox.input is required when inbox is enabled")
		}
		if c.Inbox.Output == "" {
			return fmt.Errorf("inbox.output is required when inbox is enabled")
		}
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Providers.Default == "" {
		c.Providers.Default = "gemini"
	}
	if c.Providers.RequestTimeout == 0 {
		c.Providers.RequestTimeout = 60 * time.Second
	}
	if c.Providers.StreamTimeout == 0 {
		c.Providers.StreamTimeout = 5 * time.Minute
	}
	if c.Providers.Gemini.Model == "" {
		c.Providers.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Providers.OpenRouter.BaseURL == "" {
		c.Providers.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if len(c.Providers.OpenRouter.Models) == 0 {
		c.Providers.OpenRouter.Models = []string{
			"deepseek/deepseek-chat-v3.1:free",
			"meta-llama/llama-3.3-70b-instruct:free",
			"mistralai/mistral-small-3.2-24b-instruct:free",
		}
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 7000
	}
	if c.Chunking.Overlap == nil {
		overlap := min(1000, c.Chunking.ChunkSize/7)
		c.Chunking.Overlap = &overlap
	}
	if c.Chunking.OverlapChars() >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.chunk_size (%d)",
			c.Chunking.OverlapChars(), c.Chunking.ChunkSize)
	}
	if c.Chunking.Concurrency <= 0 {
		c.Chunking.Concurrency = 1
	}
	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = []string{"en"}
	}
	if c.Transcript.RequestTimeout == 0 {
		c.Transcript.RequestTimeout = 20 * time.Second
	}
	if c.Transcript.TempDir == "" {
		c.Transcript.TempDir = "data/temp"
	}
	if c.Transcript.CacheTTL == 0 {
		c.Transcript.CacheTTL = time.Hour
	}
	if c.Transcript.CacheMaxItems == 0 {
		c.Transcript.CacheMaxItems = 200
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/summaries.db"
	}
	if c.Inbox.Archived == "" {
		c.Inbox.Archived = "data/archived"
	}
	if c.Inbox.MaxConcurrent == 0 {
		c.Inbox.MaxConcurrent = 2
	}
	if c.Inbox.AIModel == "" {
		c.Inbox.AIModel = c.Providers.Default
	}
	if c.Inbox.Language == "" {
		c.Inbox.Language = "en"
	}

	return nil
}
