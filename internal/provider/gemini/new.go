// Package gemini implements the single-model Gemini backend.
package gemini

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"google.golang.org/genai"
)

const (
	Name         = "gemini"
	EnvKey       = "GEMINI_API_KEY"
	DefaultModel = "gemini-2.5-flash"
)

// Config holds the Gemini credentials. APIKey may list several keys
// separated by commas; a rate-limited key is rotated out.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// contentGenerator is the part of *genai.Models the backend uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type clientFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

type implProvider struct {
	cfg       Config
	apiKeys   []string
	newClient clientFactory
	logger    logger.Logger

	mu         sync.Mutex
	currentKey int
	clients    map[string]contentGenerator
}

// New creates the Gemini provider. No client is created until the first
// call, so a missing key is reported per request.
func New(cfg Config, log logger.Logger) provider.Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return newProvider(cfg, log, func(ctx context.Context, apiKey string) (contentGenerator, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  cfg.HTTPClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		})
		if err != nil {
			return nil, err
		}
		return client.Models, nil
	})
}

func newProvider(cfg Config, log logger.Logger, factory clientFactory) *implProvider {
	return &implProvider{
		cfg:       cfg,
		apiKeys:   splitKeys(cfg.APIKey),
		newClient: factory,
		logger:    log,
		clients:   make(map[string]contentGenerator),
	}
}

func (p *implProvider) Name() string {
	return Name
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// client returns the generator for the current key, creating it once.
func (p *implProvider) client(ctx context.Context) (contentGenerator, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.currentKey
	key := p.apiKeys[idx]
	if c, ok := p.clients[key]; ok {
		return c, idx, nil
	}
	c, err := p.newClient(ctx, key)
	if err != nil {
		return nil, idx, err
	}
	p.clients[key] = c
	return c, idx, nil
}

// rotateKey moves past the key at idx unless another call already did.
func (p *implProvider) rotateKey(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentKey == idx {
		p.currentKey = (p.currentKey + 1) % len(p.apiKeys)
	}
}
