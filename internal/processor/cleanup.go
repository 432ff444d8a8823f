package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/export"
)

// ProcessFile summarizes each URL listed in an inbox file (one per line,
// '#' starts a comment), writes <videoId>.md and <videoId>.docx into the
// output directory and then archives the input file.
func (p *implProcessor) ProcessFile(ctx context.Context, path string) error {
	startTime := time.Now()
	p.logger.Info(ctx, "Processing inbox file: %s", path)

	urls, err := readURLs(path)
	if err != nil {
		return fmt.Errorf("read inbox file: %w", err)
	}
	if len(urls) == 0 {
		p.logger.Warn(ctx, "No URLs in %s", path)
	}

	var errs []error
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.logger.Info(ctx, "[%d/%d] Summarizing: %s", i+1, len(urls), u)

		mdPath, err := p.summarizeToFiles(ctx, u)
		if err != nil {
			p.logger.Error(ctx, "Failed to summarize %s: %v", u, err)
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		p.logger.Info(ctx, "[DONE] %s -> %s", u, mdPath)
	}

	if err := p.moveToArchived(ctx, path); err != nil {
		p.logger.Warn(ctx, "Failed to archive %s: %v", path, err)
	}

	p.logger.Info(ctx, "Inbox file done: %d ok, %d failed in %s", len(urls)-len(errs), len(errs), time.Since(startTime))
	return errors.Join(errs...)
}

func (p *implProcessor) summarizeToFiles(ctx context.Context, url string) (string, error) {
	logProgress := SinkFunc(func(ev Event) error {
		if ev.Type == TypeProgress {
			p.logger.Debug(ctx, "%s: %s", url, ev.Message)
		}
		return nil
	})

	req := Request{URL: url, AIModel: p.cfg.InboxAIModel, Language: p.cfg.InboxLanguage}
	res, err := p.Process(ctx, req, logProgress)
	if err != nil {
		return "", err
	}

	mdPath, _, err := export.WriteFiles(export.Document{
		Title:     res.Title,
		VideoID:   res.VideoID,
		Language:  res.Language,
		Model:     res.Model,
		Summary:   res.Summary,
		CreatedAt: time.Now(),
	}, p.cfg.OutputDir, res.VideoID)
	return mdPath, err
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

// moveToArchived moves a processed inbox file out of the watched folder.
// An existing file of the same name gets a timestamp suffix.
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if p.cfg.ArchivedDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.cfg.ArchivedDir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(p.cfg.ArchivedDir, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		dest = filepath.Join(p.cfg.ArchivedDir, fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), time.Now().Format("20060102-150405"), ext))
	}

	p.logger.Info(ctx, "Archiving: %s -> %s", path, dest)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}
