// Package relay drives the request pipeline: validate and clean the query,
// classify it, assemble the model input alongside concurrent enrichment,
// call the provider and post-process the reply.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/insight-relay/server/apimodels"
	"github.com/insight-relay/server/internal/enrich"
	"github.com/insight-relay/server/internal/llm"
	"github.com/insight-relay/server/internal/prompt"
)

// ErrModelCall wraps provider failures. Handlers surface it as a generic
// 5xx; the underlying detail stays in the logs.
var ErrModelCall = errors.New("model call failed")

type Relay struct {
	classifier *prompt.Classifier
	assembler  *prompt.Assembler
	post       *prompt.PostProcessor
	provider   llm.Provider
	enrichers  []enrich.Enricher
}

func New(provider llm.Provider, enrichers []enrich.Enricher, rng *rand.Rand) *Relay {
	// Assembler and post-processor each get their own source; sharing one
	// rand.Rand across their separate locks would race.
	return &Relay{
		classifier: prompt.NewClassifier(),
		assembler:  prompt.NewAssembler(rand.New(rand.NewSource(rng.Int63()))),
		post:       prompt.NewPostProcessor(rand.New(rand.NewSource(rng.Int63()))),
		provider:   provider,
		enrichers:  enrichers,
	}
}

// Respond runs one query through the full pipeline. The incoming prompt is
// never mutated; every stage works on derived values.
func (r *Relay) Respond(ctx context.Context, rawPrompt, domain string) (*apimodels.RelayResponse, error) {
	start := time.Now()

	cleaned, issues, err := prompt.ValidateAndClean(rawPrompt)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		slog.Warn("prompt validation issues", "domain", domain, "issues", issues)
	}

	classification := r.classifier.Classify(cleaned, domain)
	params := prompt.SelectParameters(cleaned, classification)

	// Entity extraction runs against the raw query; cleaning strips the
	// punctuation that ticker and topic patterns rely on.
	enrichment := enrich.Collect(ctx, domain, rawPrompt, r.enrichers)

	assembled := r.assembler.Assemble(cleaned, domain, classification, enrichment)

	slog.Debug("dispatching assembled prompt",
		"domain", domain,
		"intent", classification.MainIntent,
		"temperature", params.Temperature,
		"maxOutputTokens", params.MaxOutputTokens,
		"enriched", enrichment != "")

	response, err := r.provider.Generate(ctx, assembled, llm.Option(func(o *llm.Options) {
		o.Temperature = params.Temperature
		o.MaxOutputTokens = params.MaxOutputTokens
		o.TopK = params.TopK
		o.TopP = params.TopP
	}))
	if err != nil {
		slog.Error("model call failed",
			"domain", domain, "prompt", truncateString(rawPrompt, 80), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	final := r.post.Process(response.Content, domain, classification, enrichment != "")

	return &apimodels.RelayResponse{
		Response: final,
		Metrics: apimodels.Metrics{
			ResponseTime: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
			TokenCount:   len(final) / 4,
		},
	}, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
