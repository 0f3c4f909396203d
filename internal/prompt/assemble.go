package prompt

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
)

// ValidationError reports a malformed prompt. It maps to a 4xx response at
// the HTTP surface.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	whitespaceRE  = regexp.MustCompile(`\s+`)
	punctuationRE = regexp.MustCompile("[`~!@#$%^&*()_+\\-=\\[\\]{};':\"\\\\|,.<>?]")
	greetingRE    = regexp.MustCompile(`(?i)^(hi|hello|hey)$`)
	terminalRE    = regexp.MustCompile(`[.?!]\s*$`)
)

// ValidateAndClean normalizes the raw prompt before classification: collapse
// whitespace, strip the punctuation/symbol class, enforce length bounds.
// Soft issues are surfaced as warnings, not failures.
func ValidateAndClean(raw string) (string, []string, error) {
	cleaned := whitespaceRE.ReplaceAllString(strings.TrimSpace(raw), " ")
	hadTerminal := terminalRE.MatchString(cleaned)

	cleaned = punctuationRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(whitespaceRE.ReplaceAllString(cleaned, " "))

	if len(cleaned) < 3 {
		return "", nil, &ValidationError{Reason: "prompt too short, please provide more context"}
	}
	if len(cleaned) > 2000 {
		return "", nil, &ValidationError{Reason: "prompt too long, please reduce the length"}
	}

	var issues []string
	if len(strings.Fields(cleaned)) < 3 {
		issues = append(issues, "query may be too brief for accurate analysis")
	}
	if !hadTerminal {
		issues = append(issues, "query may be incomplete")
	}
	if greetingRE.MatchString(cleaned) {
		issues = append(issues, "query appears to be a greeting rather than a substantive question")
	}

	return cleaned, issues, nil
}

// Section is one named piece of the assembled prompt. Render order is fixed
// and significant.
type Section struct {
	Name string
	Text string
}

type promptTemplate struct {
	prefix string
	suffix string
}

// Persona is the static per-domain profile prepended to the model input.
type Persona struct {
	Role           string
	Expertise      []string
	Description    string
	Considerations []string
}

type reasoningFramework struct {
	label string
	lead  string
}

// Assembler composes the final model input from the cleaned query, the
// classification and any enrichment block. The randomness source only
// affects the chain-of-thought framework pick.
type Assembler struct {
	templates  map[Intent]promptTemplate
	personas   map[string]Persona
	frameworks []reasoningFramework

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAssembler(rng *rand.Rand) *Assembler {
	return &Assembler{
		templates:  defaultTemplates(),
		personas:   defaultPersonas(),
		frameworks: defaultFrameworks(),
		rng:        rng,
	}
}

func defaultTemplates() map[Intent]promptTemplate {
	return map[Intent]promptTemplate{
		IntentGeneral: {
			prefix: "Given the following request, provide a detailed, accurate, and well-structured response:",
			suffix: "Please ensure the response is:\n1. Accurate and fact-based\n2. Well-structured and organized\n3. Relevant to the query\n4. Actionable when applicable",
		},
		IntentTechnical: {
			prefix: "As a technical expert, analyze and respond to the following query with precise technical details:",
			suffix: "Ensure to include:\n1. Technical specifications\n2. Best practices\n3. Potential limitations\n4. Implementation considerations",
		},
		IntentAnalysis: {
			prefix: "Conduct a comprehensive analysis of the following query:",
			suffix: "Provide:\n1. Key insights\n2. Supporting data\n3. Relevant context\n4. Actionable recommendations",
		},
		IntentCreative: {
			prefix: "Approach this request with innovative and creative thinking:",
			suffix: "Consider:\n1. Novel approaches\n2. Unique perspectives\n3. Creative solutions\n4. Innovation opportunities",
		},
	}
}

func defaultPersonas() map[string]Persona {
	return map[string]Persona{
		"finance": {
			Role: "Expert Financial Analyst and Investment Strategist",
			Expertise: []string{
				"Market Analysis",
				"Investment Strategy",
				"Risk Assessment",
				"Economic Trends",
				"Portfolio Management",
			},
			Description: "I am a seasoned financial analyst with over 15 years of experience in global markets, investment banking, and portfolio management. I specialize in providing clear, actionable financial insights backed by data and market trends. I always support analyses with current market data, provide balanced risk assessments, explain complex financial concepts clearly, and acknowledge market uncertainties while providing clear guidance.",
			Considerations: []string{
				"Market conditions",
				"Economic indicators",
				"Risk factors",
				"Investment horizons",
				"Portfolio impact",
			},
		},
		"healthcare": {
			Role: "Experienced Medical Professional and Health Educator",
			Expertise: []string{
				"Clinical Best Practices",
				"Preventive Medicine",
				"Patient Education",
				"Evidence-Based Care",
				"Health Research",
			},
			Description: "I am a healthcare professional providing comprehensive guidance grounded in current medical best practices and evidence-based recommendations. I emphasize patient safety, preventive measures and the latest research findings, and I always indicate when professional in-person consultation is needed.",
			Considerations: []string{
				"Patient safety",
				"Evidence-based practice",
				"Preventive measures",
				"Warning signs",
				"Professional consultation",
			},
		},
		"news": {
			Role: "Senior News Analyst and Media Expert",
			Expertise: []string{
				"Current Events Analysis",
				"Global Affairs",
				"Trend Spotting",
				"Source Verification",
				"Cross-Reference Validation",
			},
			Description: "I am an experienced news analyst with extensive background in global journalism and media analysis. I excel at synthesizing information from multiple reliable sources to provide comprehensive, accurate coverage. I verify information across credible sources, provide context to current events, maintain journalistic objectivity, and distinguish between facts and analysis.",
			Considerations: []string{
				"Source credibility",
				"Global implications",
				"Timeline of events",
				"Stakeholder impact",
				"Future developments",
			},
		},
	}
}

func defaultFrameworks() []reasoningFramework {
	return []reasoningFramework{
		{label: "Sequential Analysis", lead: "Let's approach this step by step:"},
		{label: "Structured Decomposition", lead: "Let's break this down systematically:"},
		{label: "Multi-Dimensional Analysis", lead: "Let's analyze this through multiple perspectives:"},
		{label: "Mutually Exclusive, Collectively Exhaustive", lead: "Let's evaluate this using the MECE framework:"},
		{label: "Fundamental Analysis", lead: "Let's apply the First Principles thinking:"},
	}
}

const structuralGuidance = `Please structure your response to include:
1. Initial assessment/overview
2. Detailed analysis/explanation
3. Supporting evidence/examples
4. Practical implications/recommendations
5. Additional considerations/caveats
6. Next steps/further resources

Even if specific data or details aren't available, provide valuable insights and guidance based on general knowledge and expertise in the field.`

// Assemble renders the ordered section list into the final model input.
func (a *Assembler) Assemble(cleaned, domain string, cls ClassificationResult, enrichment string) string {
	sections := a.Sections(cleaned, domain, cls, enrichment)
	parts := make([]string, 0, len(sections))
	for _, section := range sections {
		parts = append(parts, section.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Sections exposes the assembly as named sections in render order so each
// stage can be snapshot-tested on its own.
func (a *Assembler) Sections(cleaned, domain string, cls ClassificationResult, enrichment string) []Section {
	var sections []Section

	if len(cls.Markers) > 0 {
		sections = append(sections, Section{
			Name: "context-cues",
			Text: fmt.Sprintf("[Context: %s]", strings.Join(cls.Markers, ", ")),
		})
	}

	framework := a.pickFramework()
	sections = append(sections, Section{
		Name: "reasoning-framework",
		Text: fmt.Sprintf("[Reasoning Framework: %s]\n%s", framework.label, framework.lead),
	})

	template, ok := a.templates[cls.MainIntent]
	if !ok {
		template = a.templates[IntentGeneral]
	}
	sections = append(sections, Section{Name: "intent-template", Text: template.prefix})

	if persona, ok := a.personas[domain]; ok {
		sections = append(sections, Section{
			Name: "domain-context",
			Text: a.personaBlock(cleaned, persona),
		})
	}

	if domain == "healthcare" && cls.Specialty != nil && cls.Specialty.Confidence > SpecialtyThreshold {
		sections = append(sections, Section{
			Name: "specialty-focus",
			Text: fmt.Sprintf("Address this as a %s with particular focus on: %s.",
				cls.Specialty.Role, strings.Join(cls.Specialty.Expertise, ", ")),
		})
	}

	if cls.Relevance.Confidence <= relevanceThreshold {
		sections = append(sections, Section{
			Name: "brevity-guard",
			Text: fmt.Sprintf("The question appears to fall outside the %s domain. Keep the response brief and suggest refocusing on %s topics.", domain, domain),
		})
	}

	sections = append(sections, Section{
		Name: "query",
		Text: "USER QUERY: " + cleaned,
	})

	if enrichment != "" {
		sections = append(sections, Section{Name: "enrichment", Text: enrichment})
	}

	guidance := structuralGuidance
	if template.suffix != "" {
		guidance = template.suffix + "\n\n" + guidance
	}
	sections = append(sections, Section{Name: "structure-guide", Text: guidance})

	return sections
}

// personaBlock renders the persona role plus either the expertise entries the
// query actually mentions or, failing that, the top-3 domain considerations.
func (a *Assembler) personaBlock(cleaned string, persona Persona) string {
	lower := strings.ToLower(cleaned)

	var relevant []string
	for _, expertise := range persona.Expertise {
		if strings.Contains(lower, strings.ToLower(expertise)) {
			relevant = append(relevant, expertise)
		}
	}

	focus := "Key Considerations: " + strings.Join(topN(persona.Considerations, 3), ", ")
	if len(relevant) > 0 {
		focus = "Relevant Expertise: " + strings.Join(relevant, ", ")
	}

	return fmt.Sprintf("[SYSTEM: You are acting as a %s. %s]\n\nYour areas of expertise include: %s.\n%s",
		persona.Role, persona.Description, strings.Join(persona.Expertise, ", "), focus)
}

func (a *Assembler) pickFramework() reasoningFramework {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameworks[a.rng.Intn(len(a.frameworks))]
}

func topN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
