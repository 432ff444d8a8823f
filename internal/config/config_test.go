package config

import (
	"os"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config gets defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "overlap not smaller than chunk size",
			config: Config{
				Chunking: ChunkingConfig{ChunkSize: 1000, Overlap: intPtr(1000)},
			},
			wantErr: true,
		},
		{
			name: "small chunk size without overlap",
			config: Config{
				Chunking: ChunkingConfig{ChunkSize: 500},
			},
			wantErr: false,
		},
		{
			name: "explicit zero overlap",
			config: Config{
				Chunking: ChunkingConfig{ChunkSize: 500, Overlap: intPtr(0)},
			},
			wantErr: false,
		},
		{
			name: "negative overlap",
			config: Config{
				Chunking: ChunkingConfig{ChunkSize: 500, Overlap: intPtr(-1)},
			},
			wantErr: true,
		},
		{
			name: "negative chunk size",
			config: Config{
				Chunking: ChunkingConfig{ChunkSize: -1},
			},
			wantErr: true,
		},
		{
			name: "inbox enabled without paths",
			config: Config{
				Inbox: InboxConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "inbox enabled with paths",
			config: Config{
				Inbox: InboxConfig{Enabled: true, Input: "data/inbox", Output: "data/summaries"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Chunking.ChunkSize != 7000 || cfg.Chunking.OverlapChars() != 1000 {
		t.Errorf("chunking = %+v, want 7000/1000", cfg.Chunking)
	}
	if cfg.Providers.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Providers.Gemini.Model)
	}
	if len(cfg.Providers.OpenRouter.Models) == 0 {
		t.Error("OpenRouter.Models should have default candidates")
	}
	if cfg.Providers.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.Providers.RequestTimeout)
	}
	if cfg.Inbox.AIModel != "gemini" {
		t.Errorf("Inbox.AIModel = %q, want provider default", cfg.Inbox.AIModel)
	}
}

func TestValidateOverlapDefault(t *testing.T) {
	tests := []struct {
		name    string
		chunk   ChunkingConfig
		wantOvl int
	}{
		{"absent overlap scales with chunk size", ChunkingConfig{ChunkSize: 500}, 71},
		{"absent overlap capped", ChunkingConfig{ChunkSize: 20000}, 1000},
		{"explicit zero kept", ChunkingConfig{ChunkSize: 500, Overlap: intPtr(0)}, 0},
		{"explicit value kept", ChunkingConfig{ChunkSize: 500, Overlap: intPtr(50)}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Chunking: tt.chunk}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := cfg.Chunking.OverlapChars(); got != tt.wantOvl {
				t.Errorf("overlap = %d, want %d", got, tt.wantOvl)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
server:
  addr: ":9000"

logging:
  level: "debug"
  format: "json"

providers:
  request_timeout: 45s
  openrouter:
    models:
      - "model-a"
      - "model-b"

chunking:
  chunk_size: 5000
  overlap: 500
  concurrency: 3
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvGeminiAPIKey, "gemini-key")
	t.Setenv(EnvOpenRouterAPIKey, "")

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %v, want %v", cfg.Server.Addr, ":9000")
	}
	if cfg.Providers.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.Providers.RequestTimeout)
	}
	if got := cfg.Providers.OpenRouter.Models; len(got) != 2 || got[0] != "model-a" {
		t.Errorf("Models = %v", got)
	}
	if cfg.Chunking.OverlapChars() != 500 {
		t.Errorf("Overlap = %d, want 500", cfg.Chunking.OverlapChars())
	}
	if cfg.Chunking.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Chunking.Concurrency)
	}
	if cfg.Providers.Gemini.APIKey != "gemini-key" {
		t.Errorf("Gemini.APIKey = %q, want value from environment", cfg.Providers.Gemini.APIKey)
	}
	if cfg.Providers.OpenRouter.APIKey != "" {
		t.Errorf("OpenRouter.APIKey = %q, want empty", cfg.Providers.OpenRouter.APIKey)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
