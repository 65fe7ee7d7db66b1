package metrics

import (
	"sync"
	"time"
)

// Metrics collects pipeline counters for the optional monitoring endpoint.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	EntriesMerged      int64
	DuplicatesDropped  int64
	ArticlesFetched    int64
	ArticleFetchErrors int64
	TranslationsOK     int64
	TranslationsEmpty  int64
	CacheHits          int64
	CacheMisses        int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime time.Time
	LastError   string
	IsHealthy   bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) AddEntriesMerged(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesMerged += int64(n)
}

func (m *Metrics) IncrementDuplicatesDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesDropped++
}

func (m *Metrics) IncrementArticlesFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched++
}

func (m *Metrics) IncrementArticleFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticleFetchErrors++
}

func (m *Metrics) IncrementTranslationsOK() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsOK++
}

func (m *Metrics) IncrementTranslationsEmpty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsEmpty++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":        m.FeedsFetched,
		"feeds_failed":         m.FeedsFailed,
		"entries_merged":       m.EntriesMerged,
		"duplicates_dropped":   m.DuplicatesDropped,
		"articles_fetched":     m.ArticlesFetched,
		"article_fetch_errors": m.ArticleFetchErrors,
		"translations_ok":      m.TranslationsOK,
		"translations_empty":   m.TranslationsEmpty,
		"cache_hits":           m.CacheHits,
		"cache_misses":         m.CacheMisses,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
