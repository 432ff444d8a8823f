package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
)

// recorder captures the model of every request the fake backend receives.
type recorder struct {
	mu     sync.Mutex
	models []string
	auth   []string
}

func (r *recorder) add(model, auth string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, model)
	r.auth = append(r.auth, auth)
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.models...)
}

func newBackend(t *testing.T, handle func(w http.ResponseWriter, r *http.Request, req chatRequest)) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		rec.add(req.Model, r.Header.Get("Authorization"))
		handle(w, r, req)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newProvider(srv *httptest.Server, key string, models ...string) provider.Streamer {
	return New(Config{
		APIKey:         key,
		BaseURL:        srv.URL,
		Models:         models,
		RequestTimeout: 2 * time.Second,
		StreamTimeout:  5 * time.Second,
		HTTPClient:     srv.Client(),
	}, logger.Discard())
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"gen-1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func writeAPIError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"message":"upstream unavailable","type":"server_error","code":%d}}`, status)
}

func TestSummarizeFallback(t *testing.T) {
	tests := []struct {
		name      string
		models    []string
		good      string
		wantCalls int
		wantErr   bool
	}{
		{"first model succeeds", []string{"a", "b", "c"}, "a", 1, false},
		{"third model succeeds", []string{"a", "b", "c"}, "c", 3, false},
		{"all models fail", []string{"a", "b", "c"}, "", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
				if req.Model == tt.good {
					writeCompletion(w, "summary from "+req.Model)
					return
				}
				writeAPIError(w, http.StatusServiceUnavailable)
			})
			p := newProvider(srv, "test-key", tt.models...)

			got, err := p.Summarize(context.Background(), provider.Request{Text: "hello", Language: "en"})

			if calls := rec.calls(); len(calls) != tt.wantCalls {
				t.Errorf("backend calls = %v, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr {
				var exhausted *provider.ExhaustedError
				if !errors.As(err, &exhausted) {
					t.Fatalf("error = %v, want *ExhaustedError", err)
				}
				var reqErr *provider.RequestError
				if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("last error should be a 503 RequestError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := "summary from " + tt.good; got != want {
				t.Errorf("summary = %q, want %q", got, want)
			}
		})
	}
}

func TestSummarizeMalformedPayloadAdvances(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		switch req.Model {
		case "broken":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"choices": [`)
		case "empty":
			writeCompletion(w, "   ")
		default:
			writeCompletion(w, "ok")
		}
	})
	p := newProvider(srv, "k", "broken", "empty", "good")

	got, err := p.Summarize(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("summary = %q, want ok", got)
	}
	if calls := rec.calls(); len(calls) != 3 {
		t.Errorf("calls = %v, want 3", calls)
	}
}

func TestSummarizeSendsCredentialAndPrompt(t *testing.T) {
	var prompt string
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		prompt = req.Messages[0].Content
		writeCompletion(w, "ok")
	})
	p := newProvider(srv, "secret", "m")

	if _, err := p.Summarize(context.Background(), provider.Request{Text: "TRANSCRIPT BODY", Language: "de"}); err != nil {
		t.Fatal(err)
	}
	if rec.auth[0] != "Bearer secret" {
		t.Errorf("Authorization = %q", rec.auth[0])
	}
	if !strings.Contains(prompt, "TRANSCRIPT BODY") || !strings.Contains(prompt, "German") {
		t.Errorf("prompt not rendered from request: %q", prompt)
	}
}

func TestMissingCredentials(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		writeCompletion(w, "should not happen")
	})
	p := newProvider(srv, "", "m")

	_, err := p.Summarize(context.Background(), provider.Request{Text: "x"})
	var cfgErr *provider.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Variable != EnvKey {
		t.Errorf("Summarize error = %v, want ConfigurationError for %s", err, EnvKey)
	}

	_, err = p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if !errors.As(err, &cfgErr) {
		t.Errorf("SummarizeStream error = %v, want ConfigurationError", err)
	}

	if calls := rec.calls(); len(calls) != 0 {
		t.Errorf("backend was called %d times", len(calls))
	}
}

func writeSSE(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, l := range lines {
		io.WriteString(w, l+"\n")
	}
}

func delta(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func collect(t *testing.T, s provider.Stream) ([]string, error) {
	t.Helper()
	defer s.Close()
	var out []string
	for {
		frag, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, frag)
	}
}

func TestSummarizeStream(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		if !req.Stream {
			t.Error("stream flag not set")
		}
		writeSSE(w,
			": OPENROUTER PROCESSING",
			"",
			delta("Hello"),
			"",
			"data: {not json",
			"",
			delta(""),
			"event: ping",
			delta(", world"),
			"",
			"data: [DONE]",
			"",
			delta("after done"),
		)
	})
	p := newProvider(srv, "k", "m")

	s, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := collect(t, s)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if strings.Join(got, "|") != "Hello|, world" {
		t.Errorf("fragments = %q", got)
	}
}

func TestSummarizeStreamWithoutDoneSentinel(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		writeSSE(w, delta("a"), delta("b"))
	})
	p := newProvider(srv, "k", "m")

	s, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := collect(t, s)
	if err != nil || strings.Join(got, "") != "ab" {
		t.Errorf("fragments = %q, err = %v", got, err)
	}
}

func TestSummarizeStreamFallback(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		switch req.Model {
		case "rate-limited":
			writeAPIError(w, http.StatusTooManyRequests)
		case "down":
			writeAPIError(w, http.StatusBadGateway)
		default:
			writeSSE(w, delta("from "+req.Model), "data: [DONE]")
		}
	})
	p := newProvider(srv, "k", "rate-limited", "down", "good")

	s, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := collect(t, s)
	if len(got) != 1 || got[0] != "from good" {
		t.Errorf("fragments = %q", got)
	}
	if calls := rec.calls(); len(calls) != 3 {
		t.Errorf("calls = %v, want 3", calls)
	}
}

func TestSummarizeStreamExhausted(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		writeAPIError(w, http.StatusInternalServerError)
	})
	p := newProvider(srv, "k", "a", "b")

	_, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	var exhausted *provider.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 2 || len(rec.calls()) != 2 {
		t.Errorf("attempts = %d, calls = %d, want 2 each", len(exhausted.Attempts), len(rec.calls()))
	}
}

func TestSummarizeStreamErrorFrame(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		writeSSE(w, delta("partial"), `data: {"error":{"message":"provider overloaded","code":502}}`)
	})
	p := newProvider(srv, "k", "m")

	s, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := collect(t, s)
	if len(got) != 1 || got[0] != "partial" {
		t.Errorf("fragments = %q", got)
	}
	if err == nil || !strings.Contains(err.Error(), "provider overloaded") {
		t.Errorf("error = %v, want upstream error message", err)
	}
}

func TestSummarizeStreamCloseReleasesUpstream(t *testing.T) {
	disconnected := make(chan struct{})
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		writeSSE(w, delta("first"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(disconnected)
	})
	p := newProvider(srv, "k", "m")

	s, err := p.SummarizeStream(context.Background(), provider.Request{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	frag, err := s.Next()
	if err != nil || frag != "first" {
		t.Fatalf("Next() = %q, %v", frag, err)
	}
	s.Close()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream request still open after Close")
	}

	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after Close = %v, want io.EOF", err)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind frameKind
		text string
	}{
		{"content", delta("hi") + "\n", frameContent, "hi"},
		{"crlf", delta("hi") + "\r\n", frameContent, "hi"},
		{"no space after colon", `data:{"choices":[{"delta":{"content":"x"}}]}`, frameContent, "x"},
		{"done", "data: [DONE]\n", frameDone, ""},
		{"comment", ": keep-alive\n", frameIgnore, ""},
		{"blank", "\n", frameIgnore, ""},
		{"other field", "event: message\n", frameIgnore, ""},
		{"malformed", "data: {oops\n", frameMalformed, ""},
		{"no choices", `data: {"choices":[]}`, frameIgnore, ""},
		{"error", `data: {"error":{"message":"bad"}}`, frameError, "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFrame(tt.line)
			if f.kind != tt.kind || f.content != tt.text {
				t.Errorf("parseFrame(%q) = %+v, want kind %d text %q", tt.line, f, tt.kind, tt.text)
			}
		})
	}
}
