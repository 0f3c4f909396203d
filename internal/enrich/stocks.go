package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/insight-relay/server/internal/config"
)

// Quote is one fetched stock record.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	CompanyName   string  `json:"companyName"`
}

// QuoteService looks up quotes by symbol. Calls may fail or return partial
// results.
type QuoteService interface {
	GetQuotes(ctx context.Context, symbols []string) ([]Quote, error)
}

var symbolRE = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// Uppercase words that read like tickers but aren't worth a lookup.
var symbolStopwords = map[string]struct{}{
	"A": {}, "I": {}, "AN": {}, "AND": {}, "AS": {}, "AT": {}, "BE": {},
	"BY": {}, "CEO": {}, "DO": {}, "ETF": {}, "FOR": {}, "HOW": {},
	"IN": {}, "IPO": {}, "IS": {}, "IT": {}, "OF": {}, "ON": {}, "OR": {},
	"THE": {}, "TO": {}, "USA": {}, "VS": {}, "WHAT": {}, "WHY": {},
}

// ExtractSymbols pulls candidate ticker symbols from the raw query text,
// de-duplicated in order of appearance.
func ExtractSymbols(text string) []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, match := range symbolRE.FindAllString(text, -1) {
		if _, stop := symbolStopwords[match]; stop {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		symbols = append(symbols, match)
	}
	return symbols
}

// QuoteClient talks to the quote REST service.
type QuoteClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewQuoteClient(cfg *config.StocksConfig) *QuoteClient {
	return &QuoteClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *QuoteClient) GetQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	if c.apiKey != "" {
		params.Set("token", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/quotes?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote lookup returned status %d", resp.StatusCode)
	}

	var quotes []Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}
	return quotes, nil
}

// StockEnricher renders fetched quotes into a prompt block for finance
// queries.
type StockEnricher struct {
	quotes  QuoteService
	timeout time.Duration
}

func NewStockEnricher(quotes QuoteService, timeout time.Duration) *StockEnricher {
	return &StockEnricher{quotes: quotes, timeout: timeout}
}

func (e *StockEnricher) Name() string { return "stocks" }

func (e *StockEnricher) Applies(domain string) bool { return domain == "finance" }

func (e *StockEnricher) Enrich(ctx context.Context, query string) string {
	symbols := ExtractSymbols(query)
	if len(symbols) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	quotes, err := e.quotes.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("stock lookup failed, continuing without enrichment",
			"symbols", symbols, "error", err)
		return ""
	}
	if len(quotes) == 0 {
		return ""
	}

	return renderQuoteBlock(quotes)
}

func renderQuoteBlock(quotes []Quote) string {
	var b strings.Builder
	b.WriteString("Current stock information:\n")
	for _, q := range quotes {
		marker := "📈 up"
		if q.Change < 0 {
			marker = "📉 down"
		}
		fmt.Fprintf(&b, "%s: $%.2f (%s %+.2f%%) - %s\n",
			q.Symbol, q.Price, marker, q.ChangePercent, q.CompanyName)
	}
	b.WriteString("\nPlease incorporate this real-time stock data into your response.")
	return b.String()
}
