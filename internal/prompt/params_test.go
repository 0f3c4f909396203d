package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectParametersIntentModifiers(t *testing.T) {
	relevant := Relevance{IsRelevant: true, Confidence: 1}

	tests := []struct {
		name   string
		query  string
		cls    ClassificationResult
		want   float64
		tokens int
	}{
		{
			name:   "factual",
			query:  "Who invented the telephone",
			cls:    ClassificationResult{MainIntent: IntentFactual, Relevance: relevant},
			want:   0.4,
			tokens: 2048,
		},
		{
			name:   "creative",
			query:  "brainstorm a slogan",
			cls:    ClassificationResult{MainIntent: IntentCreative, Relevance: relevant},
			want:   0.9,
			tokens: 2048,
		},
		{
			name:   "technical with technical term",
			query:  "debug this function",
			cls:    ClassificationResult{MainIntent: IntentTechnical, Relevance: relevant},
			want:   0.4,
			tokens: 2048,
		},
		{
			name:   "long analysis",
			query:  strings.Repeat("compare the markets ", 11),
			cls:    ClassificationResult{MainIntent: IntentAnalysis, Relevance: relevant},
			want:   0.5,
			tokens: 2048,
		},
		{
			name:   "off-domain general",
			query:  "something unrelated",
			cls:    ClassificationResult{MainIntent: IntentGeneral, Relevance: Relevance{IsRelevant: false, Confidence: 0.1}},
			want:   0.7,
			tokens: 512,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := SelectParameters(tt.query, tt.cls)
			assert.InDelta(t, tt.want, params.Temperature, 1e-9)
			assert.Equal(t, tt.tokens, params.MaxOutputTokens)
		})
	}
}

func TestSelectParametersTemperatureBounds(t *testing.T) {
	intents := []Intent{IntentTechnical, IntentAnalysis, IntentInstruction, IntentFactual, IntentCreative, IntentGeneral}
	queries := []string{
		"short",
		"debug the api code with a technical function",
		strings.Repeat("a very long query about code and api internals ", 10),
	}

	for _, intent := range intents {
		for _, query := range queries {
			for _, confidence := range []float64{0, 0.2, 0.5, 1} {
				cls := ClassificationResult{
					MainIntent: intent,
					Relevance:  Relevance{IsRelevant: confidence > 0.2, Confidence: confidence},
				}
				params := SelectParameters(query, cls)
				assert.GreaterOrEqual(t, params.Temperature, 0.1, "intent %s query %q", intent, query)
				assert.LessOrEqual(t, params.Temperature, 0.9, "intent %s query %q", intent, query)
			}
		}
	}
}

func TestDefaultParameters(t *testing.T) {
	params := DefaultParameters()
	assert.InDelta(t, 0.75, params.Temperature, 1e-9)
	assert.Equal(t, 2048, params.MaxOutputTokens)
	assert.EqualValues(t, 1, params.TopK)
	assert.EqualValues(t, 1, params.TopP)
}
