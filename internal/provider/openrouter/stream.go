package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// SummarizeStream opens a streaming completion with the first candidate
// model that answers with a success status. Fallback covers establishing
// the stream only; once fragments flow, errors are returned by Next.
func (p *implProvider) SummarizeStream(ctx context.Context, req provider.Request) (provider.Stream, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	var (
		streamCtx context.Context
		cancel    context.CancelFunc
	)
	if p.cfg.StreamTimeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, p.cfg.StreamTimeout)
	} else {
		streamCtx, cancel = context.WithCancel(ctx)
	}

	prompt := provider.Prompt(req)
	s, err := provider.FirstSuccess(streamCtx, Name, p.cfg.Models, 0,
		func(ctx context.Context, model string) (*sseStream, error) {
			s, err := p.openStream(ctx, model, prompt)
			if err != nil {
				p.logger.Warn(ctx, "openrouter: stream with model %s failed: %v", model, err)
				return nil, err
			}
			p.logger.Info(ctx, "openrouter: streaming with model %s", model)
			return s, nil
		})
	if err != nil {
		cancel()
		return nil, err
	}

	s.cancels = append(s.cancels, cancel)
	return s, nil
}

func (p *implProvider) openStream(ctx context.Context, model, prompt string) (*sseStream, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	var timer *time.Timer
	if p.cfg.RequestTimeout > 0 {
		timer = time.AfterFunc(p.cfg.RequestTimeout, cancel)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, &provider.RequestError{Provider: Name, Model: model, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	timedOut := timer != nil && !timer.Stop()
	if err != nil {
		cancel()
		if timedOut {
			err = fmt.Errorf("no response within %s: %w", p.cfg.RequestTimeout, err)
		}
		return nil, &provider.RequestError{Provider: Name, Model: model, Err: err}
	}
	if timedOut {
		resp.Body.Close()
		cancel()
		return nil, &provider.RequestError{Provider: Name, Model: model, Err: context.DeadlineExceeded}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, &provider.RequestError{
			Provider:   Name,
			Model:      model,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	return &sseStream{
		body:    resp.Body,
		reader:  bufio.NewReader(resp.Body),
		cancels: []context.CancelFunc{cancel},
		model:   model,
		logger:  p.logger,
		ctx:     ctx,
	}, nil
}

// sseStream reads "data:" frames from a chat-completion event stream.
type sseStream struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	cancels []context.CancelFunc
	model   string
	logger  logger.Logger
	ctx     context.Context

	done      bool
	closeOnce sync.Once
	skipped   int
}

func (s *sseStream) Next() (string, error) {
	for !s.done {
		line, readErr := s.reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return "", &provider.RequestError{Provider: Name, Model: s.model, Err: fmt.Errorf("read stream: %w", readErr)}
		}
		if errors.Is(readErr, io.EOF) {
			s.done = true
		}

		f := parseFrame(line)
		switch f.kind {
		case frameDone:
			s.done = true
		case frameError:
			s.done = true
			return "", &provider.RequestError{Provider: Name, Model: s.model, Err: errors.New(f.content)}
		case frameMalformed:
			s.skipped++
			s.logger.Debug(s.ctx, "openrouter: skipping malformed frame from %s", s.model)
		case frameContent:
			return f.content, nil
		}
	}
	return "", io.EOF
}

func (s *sseStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.done = true
		err = s.body.Close()
		for _, cancel := range s.cancels {
			cancel()
		}
		if s.skipped > 0 {
			s.logger.Warn(s.ctx, "openrouter: skipped %d malformed frames from %s", s.skipped, s.model)
		}
	})
	return err
}

type frameKind int

const (
	frameIgnore frameKind = iota
	frameContent
	frameDone
	frameError
	frameMalformed
)

type frame struct {
	kind    frameKind
	content string
}

// parseFrame interprets one line of an SSE body. Only "data:" lines carry
// payloads; comments, blank lines and other fields are ignored.
func parseFrame(line string) frame {
	line = strings.TrimRight(line, "\r\n")
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return frame{kind: frameIgnore}
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return frame{kind: frameIgnore}
	}
	if payload == "[DONE]" {
		return frame{kind: frameDone}
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return frame{kind: frameMalformed}
	}
	if chunk.Error != nil {
		msg := chunk.Error.Message
		if msg == "" {
			msg = "upstream error"
		}
		return frame{kind: frameError, content: msg}
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return frame{kind: frameIgnore}
	}
	return frame{kind: frameContent, content: chunk.Choices[0].Delta.Content}
}
