package prompt

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndCleanTooShort(t *testing.T) {
	for _, raw := range []string{"", "  ", "hi", "?!", "a."} {
		_, _, err := ValidateAndClean(raw)

		var validationErr *ValidationError
		require.Error(t, err, "input %q", raw)
		assert.True(t, errors.As(err, &validationErr), "input %q should fail as ValidationError", raw)
		assert.Contains(t, validationErr.Error(), "too short")
	}
}

func TestValidateAndCleanTooLong(t *testing.T) {
	_, _, err := ValidateAndClean(strings.Repeat("a", 2001))

	var validationErr *ValidationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Error(), "too long")
}

func TestValidateAndCleanNormalizes(t *testing.T) {
	cleaned, issues, err := ValidateAndClean("  What   is\tthe  price of AAPL?  ")
	require.NoError(t, err)
	assert.Equal(t, "What is the price of AAPL", cleaned)
	assert.Empty(t, issues)
}

func TestValidateAndCleanSoftIssues(t *testing.T) {
	cleaned, issues, err := ValidateAndClean("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", cleaned)
	assert.Len(t, issues, 3, "brief + incomplete + greeting")
}

func newTestAssembler() *Assembler {
	return NewAssembler(rand.New(rand.NewSource(1)))
}

func sectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func TestAssembleSectionOrder(t *testing.T) {
	c := NewClassifier()
	a := newTestAssembler()

	query := "What is the stock price of AAPL"
	cls := c.Classify(query, "finance")
	out := a.Assemble(query, "finance", cls, "Current stock information:\nAAPL: $150.00")

	positions := []int{
		strings.Index(out, "[Reasoning Framework:"),
		strings.Index(out, "Conduct a comprehensive analysis"),
		strings.Index(out, "Expert Financial Analyst"),
		strings.Index(out, "USER QUERY: "+query),
		strings.Index(out, "Current stock information:"),
		strings.Index(out, "Please structure your response"),
	}
	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "section %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "section %d out of order", i)
		}
	}
}

func TestAssembleOmitsEmptyEnrichment(t *testing.T) {
	c := NewClassifier()
	a := newTestAssembler()

	query := "What is the latest news coverage"
	cls := c.Classify(query, "news")
	names := sectionNames(a.Sections(query, "news", cls, ""))
	assert.NotContains(t, names, "enrichment")

	// Identical inputs and seed produce the identical prompt, with or
	// without the empty block.
	assert.Equal(t, newTestAssembler().Assemble(query, "news", cls, ""), newTestAssembler().Assemble(query, "news", cls, ""))
}

func TestAssembleSpecialtyGating(t *testing.T) {
	c := NewClassifier()
	a := newTestAssembler()

	strong := c.Classify("I have chest pain and high blood pressure, what treatment do doctors recommend", "healthcare")
	names := sectionNames(a.Sections("q", "healthcare", strong, ""))
	assert.Contains(t, names, "specialty-focus")

	weak := c.Classify("My doctor mentioned a headache treatment", "healthcare")
	names = sectionNames(a.Sections("q", "healthcare", weak, ""))
	assert.NotContains(t, names, "specialty-focus")
}

func TestAssembleBrevityGuard(t *testing.T) {
	c := NewClassifier()
	a := newTestAssembler()

	offDomain := c.Classify("How do I bake sourdough bread", "finance")
	out := a.Assemble("How do I bake sourdough bread", "finance", offDomain, "")
	assert.Contains(t, out, "Keep the response brief")

	onDomain := c.Classify("What is the stock price outlook", "finance")
	out = a.Assemble("What is the stock price outlook", "finance", onDomain, "")
	assert.NotContains(t, out, "Keep the response brief")
}

func TestPersonaBlockExpertiseFilter(t *testing.T) {
	a := newTestAssembler()
	persona := a.personas["finance"]

	block := a.personaBlock("give me a risk assessment of my portfolio", persona)
	assert.Contains(t, block, "Relevant Expertise: Risk Assessment")

	block = a.personaBlock("should I buy now", persona)
	assert.Contains(t, block, "Key Considerations: Market conditions, Economic indicators, Risk factors")
}
