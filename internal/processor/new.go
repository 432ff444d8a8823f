// Package processor drives a summarize request from URL to summary and
// reports its progress as a stream of events.
package processor

import (
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"github.com/nguyentantai21042004/yt-summarizer/internal/store"
	"github.com/nguyentantai21042004/yt-summarizer/internal/summarizer"
	"github.com/nguyentantai21042004/yt-summarizer/internal/transcript"
)

// Config holds request defaults and the inbox directories.
type Config struct {
	Language        string   // default summary language
	Mode            string   // default mode
	AIModel         string   // default provider name
	TranscriptLangs []string // caption languages tried after the requested one

	InboxAIModel  string // provider for inbox files, AIModel when empty
	InboxLanguage string // summary language for inbox files, Language when empty
	OutputDir     string // inbox results
	ArchivedDir   string // processed inbox files
}

type implProcessor struct {
	cfg        Config
	fetcher    transcript.Fetcher
	summarizer summarizer.Summarizer
	registry   *provider.Registry
	store      store.Store
	logger     logger.Logger
}

// New creates a Processor. st may be nil to skip persistence.
func New(cfg Config, fetcher transcript.Fetcher, sum summarizer.Summarizer, reg *provider.Registry, st store.Store, log logger.Logger) Processor {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Mode == "" {
		cfg.Mode = "video"
	}
	return &implProcessor{
		cfg:        cfg,
		fetcher:    fetcher,
		summarizer: sum,
		registry:   reg,
		store:      st,
		logger:     log,
	}
}

func (p *implProcessor) withDefaults(req Request) Request {
	if req.Language == "" {
		req.Language = p.cfg.Language
	}
	if req.Mode == "" {
		req.Mode = p.cfg.Mode
	}
	if req.AIModel == "" {
		req.AIModel = p.cfg.AIModel
	}
	return req
}

// transcriptLangs puts the requested language first.
func (p *implProcessor) transcriptLangs(lang string) []string {
	langs := []string{lang}
	for _, l := range p.cfg.TranscriptLangs {
		if l != lang {
			langs = append(langs, l)
		}
	}
	return langs
}
