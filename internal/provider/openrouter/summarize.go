package openrouter

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"github.com/sashabaranov/go-openai"
)

var errEmptyCompletion = errors.New("empty completion")

// Summarize sends one chat completion per candidate model until one returns
// a non-empty message.
func (p *implProvider) Summarize(ctx context.Context, req provider.Request) (string, error) {
	if err := p.checkCredentials(); err != nil {
		return "", err
	}

	prompt := provider.Prompt(req)
	return provider.FirstSuccess(ctx, Name, p.cfg.Models, p.cfg.RequestTimeout,
		func(ctx context.Context, model string) (string, error) {
			text, err := p.complete(ctx, model, prompt)
			if err != nil {
				p.logger.Warn(ctx, "openrouter: model %s failed (%s stage): %v", model, req.Stage, err)
				return "", err
			}
			p.logger.Debug(ctx, "openrouter: model %s returned %d chars (%s stage)", model, len(text), req.Stage)
			return text, nil
		})
}

func (p *implProvider) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &provider.RequestError{Provider: Name, Model: model, StatusCode: statusOf(err), Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &provider.RequestError{Provider: Name, Model: model, Err: errEmptyCompletion}
	}
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
