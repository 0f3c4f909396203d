// Package realtime polls the news upstream for subscribed topics and
// broadcasts unseen articles. It is independent of the request pipeline.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/insight-relay/server/internal/enrich"
)

const (
	maxCacheSize  = 100
	updatesBuffer = 16
)

// Broadcaster dedupes polled articles through a bounded in-memory cache and
// pushes new ones onto the updates channel. Polling starts with the first
// subscribed topic and stops with the last.
type Broadcaster struct {
	news     enrich.NewsService
	interval time.Duration
	updates  chan enrich.Article

	mu       sync.Mutex
	topics   map[string]struct{}
	cache    map[string]struct{}
	cacheLog []string
	stop     chan struct{}
	closed   bool
}

func NewBroadcaster(news enrich.NewsService, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		news:     news,
		interval: interval,
		updates:  make(chan enrich.Article, updatesBuffer),
		topics:   make(map[string]struct{}),
		cache:    make(map[string]struct{}),
	}
}

// Updates is the broadcast channel of newly seen articles. Slow consumers
// drop updates rather than block polling.
func (b *Broadcaster) Updates() <-chan enrich.Article {
	return b.updates
}

// Subscribe adds topics and returns the active topic list.
func (b *Broadcaster) Subscribe(topics ...string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	for _, topic := range topics {
		b.topics[topic] = struct{}{}
	}

	if b.stop == nil && len(b.topics) > 0 {
		b.stop = make(chan struct{})
		go b.poll(b.stop)
	}

	return b.topicList()
}

// Unsubscribe removes topics and returns the remaining topic list.
func (b *Broadcaster) Unsubscribe(topics ...string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, topic := range topics {
		delete(b.topics, topic)
	}

	if len(b.topics) == 0 && b.stop != nil {
		close(b.stop)
		b.stop = nil
	}

	return b.topicList()
}

// Close stops polling and clears all state.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	b.topics = make(map[string]struct{})
	b.cache = make(map[string]struct{})
	b.cacheLog = nil
}

func (b *Broadcaster) topicList() []string {
	topics := make([]string, 0, len(b.topics))
	for topic := range b.topics {
		topics = append(topics, topic)
	}
	return topics
}

func (b *Broadcaster) poll(stop chan struct{}) {
	// First fetch happens immediately, then on the interval.
	b.update()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.update()
		}
	}
}

func (b *Broadcaster) update() {
	b.mu.Lock()
	topics := b.topicList()
	b.mu.Unlock()

	if len(topics) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, topic := range topics {
		articles, err := b.news.Search(ctx, enrich.SearchRequest{
			Query:    topic,
			PageSize: 10,
			SortBy:   "publishedAt",
		})
		if err != nil {
			slog.Warn("realtime news update failed", "topic", topic, "error", err)
			continue
		}

		for _, article := range articles {
			b.publish(article)
		}
	}
}

func (b *Broadcaster) publish(article enrich.Article) {
	key := article.URL
	if key == "" {
		key = article.Title
	}

	b.mu.Lock()
	if _, seen := b.cache[key]; seen || b.closed {
		b.mu.Unlock()
		return
	}
	b.cache[key] = struct{}{}
	b.cacheLog = append(b.cacheLog, key)
	if len(b.cacheLog) > maxCacheSize {
		oldest := b.cacheLog[0]
		b.cacheLog = b.cacheLog[1:]
		delete(b.cache, oldest)
	}
	b.mu.Unlock()

	select {
	case b.updates <- article:
	default:
		// Consumer fell behind; drop rather than stall the poller.
	}
}
