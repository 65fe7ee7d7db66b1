// Package app wires the sequential pipeline: merge feeds, select the
// incremental set, enrich each item with a scraped lead paragraph and
// its translation, then publish the site artifacts.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelzh/mnews/internal/config"
	"github.com/michaelzh/mnews/internal/extract"
	"github.com/michaelzh/mnews/internal/feed"
	"github.com/michaelzh/mnews/internal/fetch"
	"github.com/michaelzh/mnews/internal/logger"
	"github.com/michaelzh/mnews/internal/metrics"
	"github.com/michaelzh/mnews/internal/ratelimit"
	"github.com/michaelzh/mnews/internal/site"
	"github.com/michaelzh/mnews/internal/store"
	"github.com/michaelzh/mnews/internal/translate"
)

// Display timezone for published timestamps.
var jst = time.FixedZone("JST", 9*60*60)

// App owns the run-scoped collaborators. All of them are interfaces or
// constructed from config, so tests swap in stubs freely.
type App struct {
	cfg       *config.Config
	sources   []feed.Source
	getter    fetch.Getter
	engine    translate.Engine
	seenStore store.SeenStore
}

func New(cfg *config.Config, sources []feed.Source, getter fetch.Getter, engine translate.Engine, seenStore store.SeenStore) *App {
	return &App{
		cfg:       cfg,
		sources:   sources,
		getter:    getter,
		engine:    engine,
		seenStore: seenStore,
	}
}

// Run executes one full pipeline pass. Durable state (seen set,
// translation cache, site artifacts) is only persisted after the
// corresponding stage fully completes.
func (a *App) Run(ctx context.Context, mode feed.Mode) error {
	start := time.Now()

	seenBefore, err := a.seenStore.Load()
	if err != nil {
		logger.Warn("seen store load failed, starting empty", "error", err)
		seenBefore = make(map[string]struct{})
	}

	fallback := feed.FallbackNow
	if a.cfg.TimestampFallback == "oldest" {
		fallback = feed.FallbackOldest
	}

	entries := feed.FetchAll(ctx, a.getter, a.sources, fallback)
	merged := feed.MergeAndSort(entries)
	logger.Info("feeds merged", "entries", len(merged), "sources", len(a.sources))

	selected, seenAfter := feed.Select(merged, seenBefore, mode)
	logger.Info("selection computed", "mode", mode.String(), "selected", len(selected))

	// The site writer is constructed before any enrichment work so an
	// unusable output directory fails fast.
	writer, err := site.NewWriter(a.cfg.SiteDir)
	if err != nil {
		return err
	}

	cache := translate.OpenCache(a.cfg.CacheFilePath, a.cfg.CacheMaxEntries, a.cfg.CacheFlushEvery)
	bridge := translate.NewBridge(a.engine, cache, a.cfg.TargetLang, a.cfg.PivotLangs)
	if a.cfg.MaxTranslations > 0 {
		bridge.SetLimiter(ratelimit.NewBudget(a.cfg.MaxTranslations))
	}
	pacer := ratelimit.NewPacer(a.cfg.ArticleFetchDelay)

	items := make([]site.Item, 0, len(selected))
	for i, entry := range selected {
		summary := a.fetchLead(ctx, pacer, entry)
		logger.Debug("item enriched", "index", i+1, "total", len(selected), "link", entry.Link)

		items = append(items, site.Item{
			Source:            entry.Source.Name,
			SourceLang:        entry.Source.Lang,
			Title:             entry.Title,
			TitleTranslated:   bridge.ToTarget(ctx, entry.Title, entry.Source.Lang),
			Link:              entry.Link,
			PublishedAt:       entry.Published.In(jst).Format(time.RFC3339),
			Summary:           summary,
			SummaryTranslated: bridge.ToTarget(ctx, summary, entry.Source.Lang),
		})
	}

	generatedAt := time.Now().In(jst)
	if err := writer.Write(generatedAt, items); err != nil {
		return err
	}
	if err := a.archiveRun(generatedAt, items); err != nil {
		return err
	}

	if err := cache.Flush(); err != nil {
		logger.Warn("translation cache flush failed", "error", err)
	}
	if err := a.seenStore.Save(seenAfter); err != nil {
		logger.Warn("seen store save failed", "error", err)
	}

	a.printPreview(items)
	metrics.Global.RecordRun(time.Since(start))
	logger.Info("run finished", "items", len(items), "duration", time.Since(start).String())
	return nil
}

// fetchLead downloads the article page and extracts its lead paragraph.
// Any failure degrades to "".
func (a *App) fetchLead(ctx context.Context, pacer *ratelimit.Pacer, entry feed.Entry) string {
	if entry.Link == "" {
		return ""
	}
	pacer.Wait()

	body, err := a.getter.Get(ctx, entry.Link)
	if err != nil {
		logger.Warn("article fetch failed, no summary", "link", entry.Link, "error", err)
		metrics.Global.IncrementArticleFetchErrors()
		return ""
	}
	metrics.Global.IncrementArticlesFetched()
	return extract.Lead(entry.Link, body)
}

// archiveRun keeps a timestamped JSON copy of each run's output.
func (a *App) archiveRun(generatedAt time.Time, items []site.Item) error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", a.cfg.OutputDir, err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run archive: %w", err)
	}
	name := fmt.Sprintf("news_%s.json", generatedAt.Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(a.cfg.OutputDir, name), data, 0644); err != nil {
		return fmt.Errorf("write run archive: %w", err)
	}
	return nil
}

func (a *App) printPreview(items []site.Item) {
	limit := a.cfg.PrintLimit
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	fmt.Printf("\nLatest %d of %d items:\n", limit, len(items))
	for i := 0; i < limit; i++ {
		item := items[i]
		titleTr := item.TitleTranslated
		if titleTr == "" {
			titleTr = "(untranslated)"
		}
		summaryTr := item.SummaryTranslated
		if summaryTr == "" {
			summaryTr = "(untranslated)"
		}
		fmt.Printf("%d. [%s] (%s)\n", i+1, item.PublishedAt, item.Source)
		fmt.Printf("   title:   %s\n", item.Title)
		fmt.Printf("   title %s: %s\n", a.cfg.TargetLang, titleTr)
		fmt.Printf("   summary: %s\n", item.Summary)
		fmt.Printf("   summary %s: %s\n", a.cfg.TargetLang, summaryTr)
		fmt.Printf("   link:    %s\n\n", item.Link)
	}
}
