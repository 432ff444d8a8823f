package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

const (
	defaultWatchURL = "https://www.youtube.com/watch?v="
	playerMarker    = "ytInitialPlayerResponse = "
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var reTags = regexp.MustCompile(`<[^>]+>`)

type playerResponse struct {
	VideoDetails *struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// timedText covers both timedtext formats: <transcript><text> and
// the format-3 <timedtext><body><p>.
type timedText struct {
	Texts      []string `xml:"text"`
	Paragraphs []struct {
		Inner string `xml:",innerxml"`
	} `xml:"body>p"`
}

// YouTubeConfig configures the watch-page fetcher.
type YouTubeConfig struct {
	WatchURL   string // defaults to https://www.youtube.com/watch?v=
	HTTPClient *http.Client
	Timeout    time.Duration
}

type youtubeFetcher struct {
	watchURL string
	client   *http.Client
	logger   logger.Logger
}

// NewYouTube creates a Fetcher that scrapes the watch page for caption
// tracks and downloads the chosen track.
func NewYouTube(cfg YouTubeConfig, log logger.Logger) Fetcher {
	if cfg.WatchURL == "" {
		cfg.WatchURL = defaultWatchURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &youtubeFetcher{watchURL: cfg.WatchURL, client: client, logger: log}
}

func (f *youtubeFetcher) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	body, err := f.get(ctx, f.watchURL+videoID, 6*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), playerMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	data := extractJSON(body[idx+len(playerMarker):])
	if data == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions for this video")
	}

	track, ok := pickBestTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, langs)
	if !ok {
		return nil, errors.New("no usable caption tracks")
	}
	f.logger.Debug(ctx, "transcript: %s using %s track (kind=%q)", videoID, track.LanguageCode, track.Kind)

	raw, err := f.get(ctx, track.BaseURL, 2*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	text, err := parseTimedText(raw)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("caption track is empty")
	}

	title := ""
	if player.VideoDetails != nil {
		title = player.VideoDetails.Title
	}
	if title == "" {
		title = titleFromText(text)
	}

	return &Transcript{
		VideoID:  videoID,
		Text:     text,
		Source:   Source,
		Title:    title,
		Language: track.LanguageCode,
	}, nil
}

func (f *youtubeFetcher) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// needsPoToken reports whether a caption URL only works in a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a requested language, then an
// auto-generated one, then any English track, then the first track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func parseTimedText(raw []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	lines := tt.Texts
	for _, p := range tt.Paragraphs {
		// innerxml is still XML-escaped.
		lines = append(lines, html.UnescapeString(reTags.ReplaceAllString(p.Inner, "")))
	}

	var sb strings.Builder
	for _, line := range lines {
		// Captions are often double-escaped (&amp;#39;).
		text := strings.Join(strings.Fields(html.UnescapeString(line)), " ")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// extractJSON returns the JSON object starting at b[0] by tracking brace
// depth outside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
