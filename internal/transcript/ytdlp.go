package transcript

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/pkg/executor"
)

var reCueID = regexp.MustCompile(`^\d+$`)

// YtDlpConfig configures the yt-dlp subtitle fetcher.
type YtDlpConfig struct {
	Path    string // binary, defaults to yt-dlp
	TempDir string
}

type ytdlpFetcher struct {
	cfg      YtDlpConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewYtDlp creates a Fetcher that downloads subtitles with yt-dlp. No
// media is downloaded.
func NewYtDlp(cfg YtDlpConfig, exec executor.Executor, log logger.Logger) Fetcher {
	if cfg.Path == "" {
		cfg.Path = "yt-dlp"
	}
	return &ytdlpFetcher{cfg: cfg, executor: exec, logger: log}
}

func (f *ytdlpFetcher) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	if f.cfg.TempDir != "" {
		if err := os.MkdirAll(f.cfg.TempDir, 0755); err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(f.cfg.TempDir, "subs-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", subLangs(langs),
		"--no-simulate",
		"--print", "title",
		"--no-warnings",
		"-o", "%(id)s.%(ext)s",
		defaultWatchURL + videoID,
	}
	out, err := f.executor.ExecuteInDir(ctx, dir, f.cfg.Path, args...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	path, lang, err := pickSubtitleFile(dir, langs)
	if err != nil {
		return nil, err
	}
	f.logger.Debug(ctx, "transcript: %s using yt-dlp subtitle %s", videoID, filepath.Base(path))

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle: %w", err)
	}
	defer file.Close()

	text, err := parseVTT(file)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("subtitle file is empty")
	}

	title := strings.TrimSpace(out)
	if title == "" {
		title = titleFromText(text)
	}

	return &Transcript{
		VideoID:  videoID,
		Text:     text,
		Source:   Source,
		Title:    title,
		Language: lang,
	}, nil
}

// subLangs builds the --sub-langs filter: the requested languages, then
// any English variant.
func subLangs(langs []string) string {
	out := make([]string, 0, len(langs)+1)
	out = append(out, langs...)
	return strings.Join(append(out, "en.*"), ",")
}

// pickSubtitleFile chooses among <id>.<lang>.vtt files written by yt-dlp,
// in the same order of preference as the watch-page fetcher.
func pickSubtitleFile(dir string, langs []string) (path, lang string, err error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if err != nil {
		return "", "", err
	}
	if len(matches) == 0 {
		return "", "", errors.New("no subtitles available")
	}
	sort.Strings(matches)

	byLang := make(map[string]string, len(matches))
	var order []string
	for _, m := range matches {
		parts := strings.Split(filepath.Base(m), ".")
		if len(parts) < 3 {
			continue
		}
		l := parts[len(parts)-2]
		byLang[l] = m
		order = append(order, l)
	}
	if len(order) == 0 {
		return "", "", errors.New("no subtitles available")
	}

	for _, l := range langs {
		if p, ok := byLang[l]; ok {
			return p, l, nil
		}
	}
	for _, l := range order {
		if strings.HasPrefix(l, "en") {
			return byLang[l], l, nil
		}
	}
	return byLang[order[0]], order[0], nil
}

// parseVTT returns the cue text of a WebVTT file. Auto-generated tracks
// repeat each line across cues, so consecutive duplicates are dropped.
func parseVTT(r io.Reader) (string, error) {
	var (
		lines  []string
		last   string
		inNote bool
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			inNote = false
			continue
		case inNote:
			continue
		case strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"),
			strings.Contains(line, "-->"),
			reCueID.MatchString(line):
			continue
		case strings.HasPrefix(line, "NOTE"), line == "STYLE", line == "REGION":
			inNote = true
			continue
		}

		text := strings.Join(strings.Fields(html.UnescapeString(reTags.ReplaceAllString(line, ""))), " ")
		if text == "" || text == last {
			continue
		}
		lines = append(lines, text)
		last = text
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read subtitle: %w", err)
	}
	return strings.Join(lines, " "), nil
}
