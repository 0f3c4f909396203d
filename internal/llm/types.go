package llm

import (
	"context"
	"errors"
)

// Provider is a chat-completion backend. Implementations build a fresh
// session per call; no conversation state is shared between requests.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error)
}

// ErrEmptyResponse is returned when the model answers with no usable text,
// typically a safety refusal.
var ErrEmptyResponse = errors.New("model returned an empty response")

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	TopK            float64
	TopP            float64
}

type Response struct {
	Content string
	Usage   Usage
}
