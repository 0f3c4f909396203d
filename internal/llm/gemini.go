package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/insight-relay/server/internal/config"
)

// Gemini client implementation
type Gemini struct {
	client *genai.Client
	cfg    *config.GeminiConfig
	safety []*genai.SafetySetting
}

func NewGemini(ctx context.Context, cfg *config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		cfg:    cfg,
		safety: defaultSafetySettings(),
	}, nil
}

// defaultSafetySettings blocks medium-and-above content across all harm
// categories. The thresholds are fixed and not tunable per request.
func defaultSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	options := &Options{
		Model:           g.cfg.Model,
		Temperature:     0.75,
		MaxOutputTokens: 2048,
		TopK:            1,
		TopP:            1,
	}
	for _, opt := range opts {
		opt(options)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		TopK:            genai.Ptr(float32(options.TopK)),
		TopP:            genai.Ptr(float32(options.TopP)),
		MaxOutputTokens: int32(options.MaxOutputTokens),
		SafetySettings:  g.safety,
	}

	// A fresh chat session per call; nothing carries over between requests.
	chat, err := g.client.Chats.Create(ctx, options.Model, genCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		slog.Error("gemini generation failed", "model", options.Model, "error", err)
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	response := &Response{Content: text}
	if result.UsageMetadata != nil {
		response.Usage = Usage{
			PromptTokens:     int64(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	return response, nil
}
