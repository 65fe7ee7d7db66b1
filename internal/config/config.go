package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings. Everything has a default so the
// pipeline runs with no environment at all; env vars override.
type Config struct {
	// Paths
	FeedsConfigPath string
	OutputDir       string
	SiteDir         string
	SeenFilePath    string
	CacheFilePath   string
	ModelsFilePath  string

	// Translation settings
	TargetLang      string
	PivotLangs      map[string]string // source lang -> intermediate lang
	ModelIndexURL   string
	MaxTranslations int // per-run budget for engine calls (0 = unlimited)
	CacheMaxEntries int
	CacheFlushEvery int

	// HTTP settings
	RequestTimeout    time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	ArticleFetchDelay time.Duration

	// Merge settings
	TimestampFallback string // "now" or "oldest" for unparseable published dates

	// Display
	PrintLimit int

	// Optional backends
	DatabaseURL  string
	GeminiAPIKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsConfigPath: getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		OutputDir:       getEnvOrDefault("OUTPUT_DIR", "output"),
		SiteDir:         getEnvOrDefault("SITE_DIR", "docs"),
		SeenFilePath:    getEnvOrDefault("SEEN_FILE_PATH", "seen.json"),
		CacheFilePath:   getEnvOrDefault("TRANSLATION_CACHE_PATH", "translation_cache.json"),
		ModelsFilePath:  getEnvOrDefault("MODELS_FILE_PATH", "models.json"),

		TargetLang:      getEnvOrDefault("TARGET_LANG", "zh"),
		PivotLangs:      map[string]string{"ja": "en"},
		ModelIndexURL:   getEnvOrDefault("MODEL_INDEX_URL", "https://raw.githubusercontent.com/argosopentech/argospm-index/main/index.json"),
		MaxTranslations: getEnvIntOrDefault("MAX_TRANSLATIONS", 0),
		CacheMaxEntries: getEnvIntOrDefault("TRANSLATION_CACHE_MAX_ENTRIES", 5000),
		CacheFlushEvery: getEnvIntOrDefault("TRANSLATION_CACHE_FLUSH_EVERY", 10),

		RequestTimeout:    getEnvDurationOrDefault("REQUEST_TIMEOUT", 12*time.Second),
		RetryAttempts:     getEnvIntOrDefault("REQUEST_RETRIES", 2),
		RetryDelay:        getEnvDurationOrDefault("REQUEST_RETRY_DELAY", 1*time.Second),
		ArticleFetchDelay: getEnvDurationOrDefault("ARTICLE_FETCH_DELAY", 250*time.Millisecond),

		TimestampFallback: getEnvOrDefault("TIMESTAMP_FALLBACK", "now"),

		PrintLimit: getEnvIntOrDefault("PRINT_LIMIT", 10),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	if pivots := os.Getenv("PIVOT_LANGS"); pivots != "" {
		parsed, err := parsePivots(pivots)
		if err != nil {
			return nil, err
		}
		cfg.PivotLangs = parsed
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TargetLang == "" {
		return fmt.Errorf("TARGET_LANG must not be empty")
	}
	if c.TimestampFallback != "now" && c.TimestampFallback != "oldest" {
		return fmt.Errorf("TIMESTAMP_FALLBACK must be 'now' or 'oldest', got %q", c.TimestampFallback)
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("TRANSLATION_CACHE_MAX_ENTRIES must be positive")
	}
	if c.CacheFlushEvery <= 0 {
		return fmt.Errorf("TRANSLATION_CACHE_FLUSH_EVERY must be positive")
	}
	return nil
}

// parsePivots parses "ja:en,ko:en" into a source->intermediate map.
func parsePivots(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid PIVOT_LANGS entry %q, want from:via", pair)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
