package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/chunker"
	"github.com/nguyentantai21042004/yt-summarizer/internal/config"
	"github.com/nguyentantai21042004/yt-summarizer/internal/httpapi"
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/processor"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider/gemini"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider/openrouter"
	"github.com/nguyentantai21042004/yt-summarizer/internal/store"
	"github.com/nguyentantai21042004/yt-summarizer/internal/summarizer"
	"github.com/nguyentantai21042004/yt-summarizer/internal/transcript"
	"github.com/nguyentantai21042004/yt-summarizer/internal/watcher"
	"github.com/nguyentantai21042004/yt-summarizer/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "YouTube Summarizer")
	log.Info(ctx, "========================================")

	// Providers
	registry := provider.NewRegistry()
	registry.Register(gemini.New(gemini.Config{
		APIKey:         cfg.Providers.Gemini.APIKey,
		Model:          cfg.Providers.Gemini.Model,
		BaseURL:        cfg.Providers.Gemini.BaseURL,
		RequestTimeout: cfg.Providers.RequestTimeout,
	}, log))
	registry.Register(openrouter.New(openrouter.Config{
		APIKey:         cfg.Providers.OpenRouter.APIKey,
		BaseURL:        cfg.Providers.OpenRouter.BaseURL,
		Models:         cfg.Providers.OpenRouter.Models,
		RequestTimeout: cfg.Providers.RequestTimeout,
		StreamTimeout:  cfg.Providers.StreamTimeout,
	}, log))
	if err := registry.SetDefault(cfg.Providers.Default); err != nil {
		log.Error(ctx, "Invalid default provider: %v", err)
		os.Exit(1)
	}
	if cfg.Providers.Gemini.APIKey == "" {
		log.Warn(ctx, "%s is not set; gemini requests will fail", config.EnvGeminiAPIKey)
	}
	if cfg.Providers.OpenRouter.APIKey == "" {
		log.Warn(ctx, "%s is not set; openrouter requests will fail", config.EnvOpenRouterAPIKey)
	}

	// Transcripts: caption scrape first, yt-dlp as fallback, both behind the cache
	fetcher := transcript.NewChain(log,
		transcript.NamedFetcher{Name: "youtube", Fetcher: transcript.NewYouTube(transcript.YouTubeConfig{
			Timeout: cfg.Transcript.RequestTimeout,
		}, log)},
		transcript.NamedFetcher{Name: "yt-dlp", Fetcher: transcript.NewYtDlp(transcript.YtDlpConfig{
			Path:    cfg.Transcript.YtDlpPath,
			TempDir: cfg.Transcript.TempDir,
		}, executor.New(), log)},
	)
	cache := transcript.NewCache(ctx, transcript.CacheConfig{
		TTL:        cfg.Transcript.CacheTTL,
		MaxEntries: cfg.Transcript.CacheMaxItems,
		RedisURL:   cfg.Transcript.RedisURL,
	}, fetcher, log)
	defer cache.Close()

	st, err := store.Open(ctx, cfg.Storage.Path)
	if err != nil {
		log.Error(ctx, "Failed to open summary store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	ch, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.OverlapChars())
	if err != nil {
		log.Error(ctx, "Invalid chunking config: %v", err)
		os.Exit(1)
	}
	sum := summarizer.New(ch, cfg.Chunking.Concurrency, log)

	proc := processor.New(processor.Config{
		AIModel:         cfg.Providers.Default,
		TranscriptLangs: cfg.Transcript.Languages,
		InboxAIModel:    cfg.Inbox.AIModel,
		InboxLanguage:   cfg.Inbox.Language,
		OutputDir:       cfg.Inbox.Output,
		ArchivedDir:     cfg.Inbox.Archived,
	}, cache, sum, registry, st, log)

	app := httpapi.New(httpapi.Options{
		Processor:    proc,
		Store:        st,
		Providers:    registry.Names(),
		Logger:       log,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  ctx,
	})

	errChan := make(chan error, 2)
	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Optional inbox for batch files
	done := make(chan struct{})
	if cfg.Inbox.Enabled {
		if err := ensureDirectories(cfg); err != nil {
			log.Error(ctx, "Failed to create directories: %v", err)
			os.Exit(1)
		}
		w, err := watcher.New(cfg.Inbox.Input, proc.ProcessFile, log, watcher.Options{
			MaxConcurrent: cfg.Inbox.MaxConcurrent,
		})
		if err != nil {
			log.Error(ctx, "Failed to create watcher: %v", err)
			os.Exit(1)
		}
		go func() {
			defer close(done)
			defer w.Stop()
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("watcher: %w", err)
			}
		}()
		log.Info(ctx, "Monitoring inbox: %s -> %s", cfg.Inbox.Input, cfg.Inbox.Output)
	} else {
		close(done)
	}

	log.Info(ctx, "Listening on %s (providers: %v, default: %s)", cfg.Server.Addr, registry.Names(), cfg.Providers.Default)
	log.Info(ctx, "Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "%v", err)
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "HTTP shutdown: %v", err)
	}
	<-done

	hits, misses := cache.Stats()
	log.Info(shutdownCtx, "Transcript cache: %d hits, %d misses", hits, misses)
	log.Info(shutdownCtx, "YouTube Summarizer stopped")
}

// ensureDirectories creates the inbox directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Inbox.Input,
		cfg.Inbox.Output,
		cfg.Inbox.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
