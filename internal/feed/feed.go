package feed

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/michaelzh/mnews/internal/fetch"
	"github.com/michaelzh/mnews/internal/logger"
	"github.com/michaelzh/mnews/internal/metrics"
)

// Source is one configured RSS endpoint. Immutable after load.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Lang string `yaml:"lang"`
}

type sourcesConfig struct {
	Feeds []Source `yaml:"feeds"`
}

// LoadSources reads the feed source list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg sourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	for i, s := range cfg.Feeds {
		if s.URL == "" {
			return nil, fmt.Errorf("feeds config %s: entry %d has no url", path, i)
		}
	}
	return cfg.Feeds, nil
}

// Entry is one normalized feed item. Either Link or Title is non-empty;
// entries with neither are dropped at parse time.
type Entry struct {
	Title     string
	Link      string
	Published time.Time
	Source    Source
}

// Key is the canonical deduplication identity: the link when present,
// otherwise the title.
func (e Entry) Key() string {
	if e.Link != "" {
		return e.Link
	}
	return e.Title
}

// TimestampFallback decides how entries without a parseable published
// date rank in the merged ordering.
type TimestampFallback int

const (
	// FallbackNow ranks undated entries as most recent ("just discovered").
	FallbackNow TimestampFallback = iota
	// FallbackOldest ranks undated entries last.
	FallbackOldest
)

// FetchAll downloads and parses every configured feed. A feed that
// fails to fetch or parse is skipped with a warning; the rest proceed.
func FetchAll(ctx context.Context, getter fetch.Getter, sources []Source, fallback TimestampFallback) []Entry {
	var entries []Entry
	now := time.Now()

	parser := gofeed.NewParser()
	for _, source := range sources {
		body, err := getter.Get(ctx, source.URL)
		if err != nil {
			logger.Warn("skipping feed, fetch failed", "feed", source.Name, "error", err)
			metrics.Global.IncrementFeedsFailed()
			continue
		}

		parsed, err := parser.ParseString(body)
		if err != nil {
			logger.Warn("skipping feed, parse failed", "feed", source.Name, "error", err)
			metrics.Global.IncrementFeedsFailed()
			continue
		}

		count := 0
		for _, item := range parsed.Items {
			entry, ok := normalizeItem(item, source, now, fallback)
			if !ok {
				continue
			}
			entries = append(entries, entry)
			count++
		}
		logger.Info("feed loaded", "feed", source.Name, "entries", count)
		metrics.Global.IncrementFeedsFetched()
	}

	return entries
}

func normalizeItem(item *gofeed.Item, source Source, now time.Time, fallback TimestampFallback) (Entry, bool) {
	title := textOrEmpty(item.Title)
	link := textOrEmpty(item.Link)
	if title == "" && link == "" {
		return Entry{}, false
	}
	if title == "" {
		title = "(no title)"
	}

	published := now
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	default:
		if fallback == FallbackOldest {
			published = time.Time{}
		}
	}

	return Entry{
		Title:     title,
		Link:      link,
		Published: published,
		Source:    source,
	}, true
}

func textOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// MergeAndSort orders all entries newest first (stable, so discovery
// order breaks timestamp ties) and drops duplicates by canonical key,
// keeping the first occurrence after sorting: the newest duplicate wins.
func MergeAndSort(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.After(sorted[j].Published)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]Entry, 0, len(sorted))
	for _, entry := range sorted {
		key := entry.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			metrics.Global.IncrementDuplicatesDropped()
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	metrics.Global.AddEntriesMerged(len(out))
	return out
}
