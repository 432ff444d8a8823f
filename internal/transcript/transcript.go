// Package transcript resolves YouTube URLs and fetches caption text.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Source is the only transcript source currently produced.
const Source = "youtube"

// ErrInvalidURL is returned when no video ID can be found in the input.
var ErrInvalidURL = errors.New("invalid YouTube URL")

// Transcript is the caption text of one video.
type Transcript struct {
	VideoID  string `json:"videoId"`
	Text     string `json:"transcript"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	Language string `json:"language"`
}

// Fetcher retrieves the transcript of a video. langs is the caller's
// preference order.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error)
}

// UnavailableError reports that no transcript could be obtained.
type UnavailableError struct {
	VideoID string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("failed to get transcript for %s: %v", e.VideoID, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

var (
	reVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	reURLID   = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|live/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

// ExtractVideoID returns the 11-character video ID in a watch, short,
// embed or youtu.be URL. A bare ID is accepted as is.
func ExtractVideoID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if reVideoID.MatchString(s) {
		return s, nil
	}
	if m := reURLID.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

// titleFromText is the fallback title: the first 100 characters of text.
func titleFromText(text string) string {
	if utf8.RuneCountInString(text) <= 100 {
		return text
	}
	r := []rune(text)
	return string(r[:100]) + "..."
}
