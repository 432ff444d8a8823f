package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

NOTE generated
by a tool

1
00:00:00.000 --> 00:00:02.000 align:start position:0%
Hello<00:00:00.500><c> world</c>

2
00:00:02.000 --> 00:00:04.000
Hello world

3
00:00:04.000 --> 00:00:06.000
it&#39;s &amp; fine
`

func TestParseVTT(t *testing.T) {
	got, err := parseVTT(strings.NewReader(sampleVTT))
	if err != nil {
		t.Fatal(err)
	}
	if want := "Hello world it's & fine"; got != want {
		t.Errorf("parseVTT() = %q, want %q", got, want)
	}
}

func TestPickSubtitleFile(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		langs    []string
		wantLang string
		wantErr  bool
	}{
		{"requested language", []string{"id.en.vtt", "id.vi.vtt"}, []string{"vi"}, "vi", false},
		{"english variant", []string{"id.de.vtt", "id.en-US.vtt"}, []string{"ja"}, "en-US", false},
		{"first available", []string{"id.fr.vtt", "id.de.vtt"}, []string{"ja"}, "de", false},
		{"none", nil, []string{"en"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("WEBVTT"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			path, lang, err := pickSubtitleFile(dir, tt.langs)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil || lang != tt.wantLang || filepath.Dir(path) != dir {
				t.Errorf("pickSubtitleFile() = %q, %q, %v; want lang %q", path, lang, err, tt.wantLang)
			}
		})
	}
}

func TestSubLangs(t *testing.T) {
	if got := subLangs([]string{"vi", "fr"}); got != "vi,fr,en.*" {
		t.Errorf("subLangs() = %q", got)
	}
}

// fakeExecutor writes subtitle files into the working directory the way
// yt-dlp would.
type fakeExecutor struct {
	files map[string]string
	out   string
	err   error
	args  []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, ".", name, args...)
}

func (f *fakeExecutor) ExecuteInDir(_ context.Context, dir, name string, args ...string) (string, error) {
	f.args = append([]string{name}, args...)
	if f.err != nil {
		return "", f.err
	}
	for n, content := range f.files {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(content), 0644); err != nil {
			return "", err
		}
	}
	return f.out, nil
}

func TestYtDlpFetch(t *testing.T) {
	exec := &fakeExecutor{
		files: map[string]string{"dQw4w9WgXcQ.en.vtt": sampleVTT},
		out:   "Video Title\n",
	}
	f := NewYtDlp(YtDlpConfig{TempDir: t.TempDir()}, exec, logger.Discard())

	got, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got.Title != "Video Title" || got.Language != "en" || got.Text != "Hello world it's & fine" {
		t.Errorf("transcript = %+v", got)
	}
	if exec.args[0] != "yt-dlp" || !strings.Contains(strings.Join(exec.args, " "), "--skip-download") {
		t.Errorf("args = %v", exec.args)
	}
}

func TestYtDlpFetchCreatesTempDir(t *testing.T) {
	exec := &fakeExecutor{files: map[string]string{"dQw4w9WgXcQ.en.vtt": sampleVTT}}
	tempDir := filepath.Join(t.TempDir(), "data", "temp")
	f := NewYtDlp(YtDlpConfig{TempDir: tempDir}, exec, logger.Discard())

	if _, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"}); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if exec.args == nil {
		t.Error("yt-dlp was not run")
	}
	if info, err := os.Stat(tempDir); err != nil || !info.IsDir() {
		t.Errorf("temp dir not created: %v", err)
	}
}

func TestYtDlpFetchErrors(t *testing.T) {
	t.Run("command fails", func(t *testing.T) {
		exec := &fakeExecutor{err: errors.New("exit status 1")}
		f := NewYtDlp(YtDlpConfig{TempDir: t.TempDir()}, exec, logger.Discard())
		if _, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", nil); err == nil || !strings.Contains(err.Error(), "yt-dlp") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("no subtitles written", func(t *testing.T) {
		exec := &fakeExecutor{}
		f := NewYtDlp(YtDlpConfig{TempDir: t.TempDir()}, exec, logger.Discard())
		if _, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", nil); err == nil {
			t.Error("expected error")
		}
	})
}
