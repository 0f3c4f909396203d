// cmd/server/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"time"

	"github.com/insight-relay/server/internal/config"
	"github.com/insight-relay/server/internal/enrich"
	"github.com/insight-relay/server/internal/llm"
	"github.com/insight-relay/server/internal/realtime"
	"github.com/insight-relay/server/internal/relay"
	"github.com/insight-relay/server/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "openai":
		provider, err = llm.NewOpenAI(&cfg.OpenAI)
	default:
		provider, err = llm.NewGemini(context.Background(), &cfg.Gemini)
	}
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	newsClient := enrich.NewNewsClient(&cfg.News)
	enrichers := []enrich.Enricher{
		enrich.NewStockEnricher(enrich.NewQuoteClient(&cfg.Stocks), cfg.Stocks.Timeout),
		enrich.NewNewsEnricher(newsClient, cfg.News.Timeout),
	}

	if len(cfg.News.Topics) > 0 {
		broadcaster := realtime.NewBroadcaster(newsClient, cfg.News.PollInterval)
		defer broadcaster.Close()
		broadcaster.Subscribe(cfg.News.Topics...)
		go func() {
			for article := range broadcaster.Updates() {
				slog.Info("news update", "title", article.Title, "source", article.Source.Name, "url", article.URL)
			}
		}()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rly := relay.New(provider, enrichers, rng)

	srv := server.New(*cfg, rly)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "provider", cfg.LLM.Provider)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
