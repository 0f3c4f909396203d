// Package enrich fetches external structured data (stock quotes, news
// articles) and renders it into prompt-insertable text blocks. Enrichment is
// best-effort: any lookup failure degrades to an unenriched prompt.
package enrich

import (
	"context"
	"strings"
	"sync"
)

// Enricher produces a prompt-insertable block for queries in its domain.
// An empty string means no enrichment applies.
type Enricher interface {
	Name() string
	Applies(domain string) bool
	Enrich(ctx context.Context, query string) string
}

// Collect runs every applicable enricher concurrently and joins their
// blocks in enricher order. The lookups are independent of each other.
func Collect(ctx context.Context, domain, query string, enrichers []Enricher) string {
	blocks := make([]string, len(enrichers))

	var wg sync.WaitGroup
	for i, enricher := range enrichers {
		if !enricher.Applies(domain) {
			continue
		}
		wg.Add(1)
		go func(i int, enricher Enricher) {
			defer wg.Done()
			blocks[i] = enricher.Enrich(ctx, query)
		}(i, enricher)
	}
	wg.Wait()

	var nonEmpty []string
	for _, block := range blocks {
		if block != "" {
			nonEmpty = append(nonEmpty, block)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
