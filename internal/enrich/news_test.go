package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insight-relay/server/internal/config"
)

type fakeNewsService struct {
	articles []Article
	err      error
	lastReq  SearchRequest
}

func (f *fakeNewsService) Search(ctx context.Context, req SearchRequest) ([]Article, error) {
	f.lastReq = req
	return f.articles, f.err
}

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"What is the latest news about the election results today", []string{"election", "results"}},
		{"Tell me about climate policy in Europe", []string{"climate", "policy", "europe"}},
		{"one two three four five six seven eight", []string{"three", "four", "five", "seven", "eight"}},
		{"a an it", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractTopics(tt.text), "text %q", tt.text)
	}
}

func TestNewsEnricherRendersArticles(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc := &fakeNewsService{articles: []Article{
		{
			Title:       "Markets rally after rate decision",
			Description: "Stocks climbed broadly.",
			URL:         "https://example.com/rally",
			PublishedAt: now.Add(-2 * time.Hour),
			Source:      ArticleSource{Name: "Reuters"},
		},
		{
			Title:       "Local festival draws crowds",
			PublishedAt: now.Add(-48 * time.Hour),
			URL:         "https://example.com/festival",
			Source:      ArticleSource{Name: "Random Blog"},
		},
	}}
	e := NewNewsEnricher(svc, time.Second)
	e.now = func() time.Time { return now }

	block := e.Enrich(context.Background(), "latest news about the markets rally")
	assert.Equal(t, "markets rally", svc.lastReq.Query)
	assert.Equal(t, maxArticles, svc.lastReq.PageSize)
	assert.Equal(t, "relevancy", svc.lastReq.SortBy)

	assert.Contains(t, block, "### LATEST NEWS ARTICLES (CURRENT AS OF Mar 10, 2025):")
	assert.Contains(t, block, "1. Markets rally after rate decision")
	assert.Contains(t, block, "Reuters (✅ verified outlet)")
	assert.Contains(t, block, "🔥 breaking")
	assert.Contains(t, block, "2. Local festival draws crowds")
	assert.Contains(t, block, "Random Blog (ℹ️ unverified outlet)")
	assert.Contains(t, block, "📅 older")
	assert.Contains(t, block, "No description available.")
	assert.Contains(t, block, "### ANALYTICAL FRAMEWORK:")
}

func TestNewsEnricherCapsArticleCount(t *testing.T) {
	now := time.Now()
	articles := make([]Article, 8)
	for i := range articles {
		articles[i] = Article{Title: "story", PublishedAt: now}
	}
	e := NewNewsEnricher(&fakeNewsService{articles: articles}, time.Second)

	block := e.Enrich(context.Background(), "latest stories")
	assert.Contains(t, block, "5. story")
	assert.NotContains(t, block, "6. story")
}

func TestNewsEnricherFreshnessMarkers(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "🔥 breaking", freshnessMarker(now, now.Add(-time.Hour)))
	assert.Equal(t, "🕒 today", freshnessMarker(now, now.Add(-10*time.Hour)))
	assert.Equal(t, "📅 older", freshnessMarker(now, now.Add(-72*time.Hour)))
}

func TestNewsEnricherEmptyResultsAndFailures(t *testing.T) {
	e := NewNewsEnricher(&fakeNewsService{}, time.Second)
	assert.Empty(t, e.Enrich(context.Background(), "anything current"))

	e = NewNewsEnricher(&fakeNewsService{err: errors.New("quota exceeded")}, time.Second)
	assert.Empty(t, e.Enrich(context.Background(), "anything current"))
}

func TestNewsEnricherFallsBackToRawQuery(t *testing.T) {
	svc := &fakeNewsService{}
	e := NewNewsEnricher(svc, time.Second)

	e.Enrich(context.Background(), "a b c")
	assert.Equal(t, "a b c", svc.lastReq.Query, "no extractable topics falls back to the raw query")
}

func TestNewsEnricherApplies(t *testing.T) {
	e := NewNewsEnricher(&fakeNewsService{}, time.Second)
	assert.True(t, e.Applies("news"))
	assert.False(t, e.Applies("finance"))
}

func TestNewsClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "election results", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "relevancy", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "news-key", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"Results are in","url":"https://example.com/a","publishedAt":"2025-03-10T08:00:00Z","source":{"name":"BBC"}}]}`))
	}))
	defer ts.Close()

	client := NewNewsClient(&config.NewsConfig{Endpoint: ts.URL, APIKey: "news-key", Timeout: time.Second})
	articles, err := client.Search(context.Background(), SearchRequest{Query: "election results", PageSize: 5, SortBy: "relevancy"})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Results are in", articles[0].Title)
	assert.Equal(t, "BBC", articles[0].Source.Name)
}

func TestNewsClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewNewsClient(&config.NewsConfig{Endpoint: ts.URL, Timeout: time.Second})
	_, err := client.Search(context.Background(), SearchRequest{Query: "q", PageSize: 5, SortBy: "relevancy"})
	assert.Error(t, err)
}

type staticEnricher struct {
	name   string
	domain string
	block  string
}

func (s staticEnricher) Name() string { return s.name }

func (s staticEnricher) Applies(domain string) bool { return domain == s.domain }
func (s staticEnricher) Enrich(ctx context.Context, query string) string {
	return s.block
}

func TestCollectJoinsApplicableBlocks(t *testing.T) {
	enrichers := []Enricher{
		staticEnricher{name: "stocks", domain: "finance", block: "quote block"},
		staticEnricher{name: "news", domain: "news", block: "article block"},
		staticEnricher{name: "empty", domain: "finance", block: ""},
	}

	out := Collect(context.Background(), "finance", "q", enrichers)
	assert.Equal(t, "quote block", out)

	out = Collect(context.Background(), "news", "q", enrichers)
	assert.Equal(t, "article block", out)

	out = Collect(context.Background(), "healthcare", "q", enrichers)
	assert.Empty(t, out)
}
