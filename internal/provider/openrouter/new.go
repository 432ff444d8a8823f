// Package openrouter implements the multi-model chat-completion backend.
// Candidate models are tried in order until one succeeds.
package openrouter

import (
	"net/http"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"github.com/sashabaranov/go-openai"
)

const (
	Name   = "openrouter"
	EnvKey = "OPENROUTER_API_KEY"
)

type Config struct {
	APIKey         string
	BaseURL        string
	Models         []string
	RequestTimeout time.Duration // per candidate call, and per stream establishment
	StreamTimeout  time.Duration // whole stream lifetime
	HTTPClient     *http.Client
}

type implProvider struct {
	cfg        Config
	client     *openai.Client
	httpClient *http.Client
	logger     logger.Logger
}

// New creates the OpenRouter provider. Credentials are checked per call so
// a missing key surfaces as a ConfigurationError to the caller.
func New(cfg Config, log logger.Logger) provider.Streamer {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-level timeout: streams are bounded by context instead.
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		}
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = httpClient

	return &implProvider{
		cfg:        cfg,
		client:     openai.NewClientWithConfig(oc),
		httpClient: httpClient,
		logger:     log,
	}
}

func (p *implProvider) Name() string {
	return Name
}

func (p *implProvider) checkCredentials() error {
	if p.cfg.APIKey == "" {
		return &provider.ConfigurationError{Provider: Name, Variable: EnvKey}
	}
	return nil
}
