package prompt

import "regexp"

// GenerationParameters is the per-request model tuning computed from the
// classification. Never mutated after computation.
type GenerationParameters struct {
	Temperature     float64
	MaxOutputTokens int
	TopK            float64
	TopP            float64
}

// DefaultParameters is the untuned configuration used when no
// classification is available.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Temperature:     0.75,
		MaxOutputTokens: 2048,
		TopK:            1,
		TopP:            1,
	}
}

var technicalTermRE = regexp.MustCompile(`(?i)\b(code|api|function|technical)\b`)

var intentTemperatureModifiers = map[Intent]float64{
	IntentTechnical: -0.2,
	IntentCreative:  +0.2,
	IntentAnalysis:  -0.1,
	IntentFactual:   -0.3,
}

// SelectParameters tunes temperature and the output budget from the
// classification. Pure function, no I/O.
func SelectParameters(cleaned string, cls ClassificationResult) GenerationParameters {
	temperature := 0.7
	temperature += intentTemperatureModifiers[cls.MainIntent]

	if len(cleaned) > 200 {
		temperature -= 0.1
	}
	if technicalTermRE.MatchString(cleaned) {
		temperature -= 0.1
	}

	if temperature < 0.1 {
		temperature = 0.1
	}
	if temperature > 0.9 {
		temperature = 0.9
	}

	// Off-topic queries get a reduced output budget.
	maxTokens := 2048
	if !cls.Relevance.IsRelevant {
		maxTokens = 512
	}

	return GenerationParameters{
		Temperature:     temperature,
		MaxOutputTokens: maxTokens,
		TopK:            1,
		TopP:            1,
	}
}
