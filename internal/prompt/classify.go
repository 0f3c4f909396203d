package prompt

import (
	"regexp"
	"sort"
	"strings"
)

type Intent string

const (
	IntentTechnical   Intent = "technical"
	IntentAnalysis    Intent = "analysis"
	IntentInstruction Intent = "instruction"
	IntentFactual     Intent = "factual"
	IntentCreative    Intent = "creative"
	IntentGeneral     Intent = "general"
)

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Relevance describes how strongly a query belongs to its declared domain.
type Relevance struct {
	IsRelevant bool
	Confidence float64
}

// Specialty is a healthcare sub-classification such as cardiology.
type Specialty struct {
	Name       string
	Role       string
	Expertise  []string
	Confidence float64
}

type LanguageFeatures struct {
	HasQuestion       bool
	HasTechnicalTerms bool
	HasNumbers        bool
	HasURLs           bool
	Sentiment         string
}

type ClassificationResult struct {
	MainIntent    Intent
	SubCategories []string
	Complexity    Complexity
	Relevance     Relevance
	Specialty     *Specialty
	Features      LanguageFeatures
	Markers       []string
}

// relevanceThreshold gates the off-domain brevity clause and the reduced
// output-token budget.
const relevanceThreshold = 0.2

// SpecialtyThreshold gates specialty prefixing; below it the query is
// handled as general practice.
const SpecialtyThreshold = 0.3

const GeneralPractitionerRole = "General Practitioner"

type subRule struct {
	name    string
	pattern *regexp.Regexp
}

type intentRule struct {
	intent  Intent
	pattern *regexp.Regexp
	subs    []subRule
}

type specialtyRule struct {
	keywords  []string
	role      string
	expertise []string
}

// Classifier runs the stateless lexical classifiers. Keyword tables are
// injectable so each classifier can be exercised in isolation.
type Classifier struct {
	intents        []intentRule
	domainKeywords map[string][]string
	specialties    map[string]specialtyRule
	markers        map[string][]string
}

func NewClassifier() *Classifier {
	return &Classifier{
		intents:        defaultIntentRules(),
		domainKeywords: defaultDomainKeywords(),
		specialties:    defaultSpecialties(),
		markers:        defaultContextMarkers(),
	}
}

// Intent rule order is a deliberate tie-break: a query matching both the
// technical and factual patterns classifies as technical.
func defaultIntentRules() []intentRule {
	return []intentRule{
		{
			intent:  IntentTechnical,
			pattern: regexp.MustCompile(`(?i)how|implement|code|debug|error|function|method|api|framework`),
			subs: []subRule{
				{"implementation", regexp.MustCompile(`(?i)implement|code|develop`)},
				{"debugging", regexp.MustCompile(`(?i)debug|error|fix|issue`)},
				{"architecture", regexp.MustCompile(`(?i)design|structure|pattern|system`)},
			},
		},
		{
			intent:  IntentAnalysis,
			pattern: regexp.MustCompile(`(?i)analyze|compare|evaluate|assess|review|explain|why|what|difference`),
			subs: []subRule{
				{"comparison", regexp.MustCompile(`(?i)compare|versus|vs|difference`)},
				{"evaluation", regexp.MustCompile(`(?i)evaluate|assess|review`)},
				{"explanation", regexp.MustCompile(`(?i)explain|why|how|what`)},
			},
		},
		{
			intent:  IntentInstruction,
			pattern: regexp.MustCompile(`(?i)guide|tutorial|steps|process|procedure`),
			subs: []subRule{
				{"tutorial", regexp.MustCompile(`(?i)tutorial|guide|learn`)},
				{"procedure", regexp.MustCompile(`(?i)steps|process|procedure|how to`)},
				{"bestPractices", regexp.MustCompile(`(?i)best|practice|recommend`)},
			},
		},
		{
			intent:  IntentFactual,
			pattern: regexp.MustCompile(`(?i)who|when|where|which|define|list`),
			subs: []subRule{
				{"definition", regexp.MustCompile(`(?i)define|what is|meaning`)},
				{"factCheck", regexp.MustCompile(`(?i)verify|confirm|true|false`)},
				{"information", regexp.MustCompile(`(?i)who|when|where|which`)},
			},
		},
	}
}

func defaultDomainKeywords() map[string][]string {
	return map[string][]string{
		"finance": {
			"stock", "market", "investment", "price", "trading", "financial",
			"economy", "shares", "fund", "portfolio", "dividend", "earnings",
		},
		"healthcare": {
			"health", "medical", "patient", "treatment", "symptoms", "disease",
			"diagnosis", "medicine", "clinical", "doctor", "hospital", "care",
			"therapy", "wellness", "prevention",
		},
		"news": {
			"news", "current events", "report", "latest", "update", "breaking",
			"coverage", "story", "headline", "media", "press",
		},
	}
}

func defaultSpecialties() map[string]specialtyRule {
	return map[string]specialtyRule{
		"cardiology": {
			keywords:  []string{"heart", "cardiac", "cardiovascular", "chest pain", "blood pressure", "arrhythmia"},
			role:      "Cardiologist",
			expertise: []string{"Heart Disease", "Cardiovascular Health"},
		},
		"neurology": {
			keywords:  []string{"brain", "nervous system", "headache", "migraine", "seizure", "neurological"},
			role:      "Neurologist",
			expertise: []string{"Brain Health", "Neurological Disorders"},
		},
		"pediatrics": {
			keywords:  []string{"child", "baby", "infant", "pediatric", "childhood", "growth"},
			role:      "Pediatrician",
			expertise: []string{"Child Health", "Child Development"},
		},
		"dermatology": {
			keywords:  []string{"skin", "rash", "acne", "dermatitis", "dermatological"},
			role:      "Dermatologist",
			expertise: []string{"Skin Health", "Skin Conditions"},
		},
	}
}

func defaultContextMarkers() map[string][]string {
	return map[string][]string{
		"temporal":    {"current", "latest", "recent", "upcoming", "historical"},
		"comparative": {"versus", "compared to", "better than", "difference between"},
		"analytical":  {"analyze", "evaluate", "assess", "examine"},
		"actionable":  {"how to", "steps to", "guide", "tutorial"},
		"sentiment":   {"positive", "negative", "neutral", "optimistic", "cautious"},
		"complexity":  {"simple", "complex", "advanced", "basic", "intermediate"},
		"urgency":     {"immediate", "urgent", "critical", "long-term", "strategic"},
		"certainty":   {"definite", "probable", "possible", "uncertain", "speculative"},
	}
}

var (
	technicalFeatureRE = regexp.MustCompile(`(?i)\b(api|code|function|database|algorithm)\b`)
	numberRE           = regexp.MustCompile(`\d+`)
	urlRE              = regexp.MustCompile(`https?://\S+`)
	sentimentRE        = regexp.MustCompile(`(?i)\b(positive|negative|neutral)\b`)
)

// Classify derives everything the downstream stages need from the cleaned
// query text and the declared domain. It never fails: unmatched input
// produces the general, lowest-confidence result.
func (c *Classifier) Classify(text, domain string) ClassificationResult {
	result := ClassificationResult{
		MainIntent:    IntentGeneral,
		SubCategories: []string{"general"},
		Complexity:    complexityOf(text),
		Relevance:     c.DomainRelevance(text, domain),
		Features:      languageFeatures(text),
		Markers:       c.contextMarkers(text),
	}

	for _, rule := range c.intents {
		if !rule.pattern.MatchString(text) {
			continue
		}
		result.MainIntent = rule.intent
		subs := make([]string, 0, len(rule.subs))
		for _, sub := range rule.subs {
			if sub.pattern.MatchString(text) {
				subs = append(subs, sub.name)
			}
		}
		if len(subs) == 0 {
			subs = []string{"general"}
		}
		result.SubCategories = subs
		break
	}

	if domain == "healthcare" {
		specialty := c.MedicalSpecialty(text)
		result.Specialty = &specialty
	}

	return result
}

func complexityOf(text string) Complexity {
	switch {
	case len(text) < 100:
		return ComplexitySimple
	case len(text) < 200:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

// DomainRelevance scores how many domain keywords appear in the query,
// normalized by min(5, table size). No domain means no gating.
func (c *Classifier) DomainRelevance(text, domain string) Relevance {
	if domain == "" {
		return Relevance{IsRelevant: true, Confidence: 1}
	}

	keywords, ok := c.domainKeywords[domain]
	if !ok || len(keywords) == 0 {
		return Relevance{IsRelevant: true, Confidence: 1}
	}

	lower := strings.ToLower(text)
	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			matched++
		}
	}

	denominator := len(keywords)
	if denominator > 5 {
		denominator = 5
	}
	confidence := float64(matched) / float64(denominator)
	if confidence > 1 {
		confidence = 1
	}

	return Relevance{
		IsRelevant: confidence > relevanceThreshold,
		Confidence: confidence,
	}
}

// MedicalSpecialty picks the specialty whose keyword table best matches the
// text. Confidence is the fraction of that table's keywords present.
func (c *Classifier) MedicalSpecialty(text string) Specialty {
	lower := strings.ToLower(text)

	names := make([]string, 0, len(c.specialties))
	for name := range c.specialties {
		names = append(names, name)
	}
	sort.Strings(names)

	best := Specialty{Role: GeneralPractitionerRole}
	for _, name := range names {
		rule := c.specialties[name]
		matched := 0
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				matched++
			}
		}
		confidence := float64(matched) / float64(len(rule.keywords))
		if confidence > best.Confidence {
			best = Specialty{
				Name:       name,
				Role:       rule.role,
				Expertise:  rule.expertise,
				Confidence: confidence,
			}
		}
	}

	return best
}

func (c *Classifier) contextMarkers(text string) []string {
	lower := strings.ToLower(text)

	categories := make([]string, 0, len(c.markers))
	for category := range c.markers {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var found []string
	for _, category := range categories {
		for _, marker := range c.markers[category] {
			if strings.Contains(lower, marker) {
				found = append(found, category)
				break
			}
		}
	}
	return found
}

func languageFeatures(text string) LanguageFeatures {
	sentiment := "neutral"
	if m := sentimentRE.FindString(text); m != "" {
		sentiment = strings.ToLower(m)
	}
	return LanguageFeatures{
		HasQuestion:       strings.Contains(text, "?"),
		HasTechnicalTerms: technicalFeatureRE.MatchString(text),
		HasNumbers:        numberRE.MatchString(text),
		HasURLs:           urlRE.MatchString(text),
		Sentiment:         sentiment,
	}
}
