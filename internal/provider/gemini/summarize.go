package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("empty response")

// Summarize makes one GenerateContent call against the configured model.
// There is no model fallback; a quota error moves on to the next API key
// when more than one is configured.
func (p *implProvider) Summarize(ctx context.Context, req provider.Request) (string, error) {
	if len(p.apiKeys) == 0 {
		return "", &provider.ConfigurationError{Provider: Name, Variable: EnvKey}
	}

	prompt := provider.Prompt(req)
	var lastErr error
	for range len(p.apiKeys) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		client, idx, err := p.client(ctx)
		if err != nil {
			return "", &provider.RequestError{Provider: Name, Model: p.cfg.Model, Err: fmt.Errorf("create client: %w", err)}
		}

		text, err := p.generate(ctx, client, prompt)
		if err == nil {
			p.logger.Debug(ctx, "gemini: %s returned %d chars (%s stage)", p.cfg.Model, len(text), req.Stage)
			return text, nil
		}
		lastErr = err
		if !rateLimited(err) || len(p.apiKeys) == 1 {
			break
		}
		p.logger.Warn(ctx, "gemini: key %d rate limited, rotating", idx+1)
		p.rotateKey(idx)
	}

	return "", lastErr
}

func (p *implProvider) generate(ctx context.Context, client contentGenerator, prompt string) (string, error) {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := client.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", &provider.RequestError{Provider: Name, Model: p.cfg.Model, StatusCode: statusOf(err), Err: err}
	}

	text := responseText(result)
	if strings.TrimSpace(text) == "" {
		return "", &provider.RequestError{Provider: Name, Model: p.cfg.Model, Err: errEmptyResponse}
	}
	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func statusOf(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func rateLimited(err error) bool {
	var reqErr *provider.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
