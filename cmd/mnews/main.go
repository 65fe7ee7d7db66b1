package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelzh/mnews/internal/app"
	"github.com/michaelzh/mnews/internal/config"
	"github.com/michaelzh/mnews/internal/feed"
	"github.com/michaelzh/mnews/internal/fetch"
	"github.com/michaelzh/mnews/internal/logger"
	"github.com/michaelzh/mnews/internal/metrics"
	"github.com/michaelzh/mnews/internal/store"
	"github.com/michaelzh/mnews/internal/translate"
)

func main() {
	var (
		debugMode bool
		allMode   bool
		newMode   bool
		limit     int
	)

	rootCommand := &cobra.Command{
		Use:           "mnews",
		Short:         "RSS news site generator with lead-paragraph extraction and chained translation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(debugMode)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if allMode && newMode {
				return fmt.Errorf("--all and --new are mutually exclusive")
			}
			mode := feed.ModeNewOnly
			if allMode {
				mode = feed.ModeAll
			}
			return runPipeline(cmd, mode, limit)
		},
	}
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCommand.Flags().BoolVar(&allMode, "all", false, "emit every merged entry, not only new ones")
	rootCommand.Flags().BoolVar(&newMode, "new", false, "emit only entries not seen before (default)")
	rootCommand.Flags().IntVar(&limit, "limit", 0, "number of items to print on the console")

	rootCommand.AddCommand(newInstallModelsCommand())

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mnews: %v\n", err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, mode feed.Mode, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if limit > 0 {
		cfg.PrintLimit = limit
	}

	sources, err := feed.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		return err
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	getter := fetch.New(cfg.RequestTimeout, cfg.RetryAttempts, cfg.RetryDelay)
	engine, cleanup, err := buildEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	seenStore, closeStore := buildSeenStore(cfg)
	defer closeStore()

	pipeline := app.New(cfg, sources, getter, engine, seenStore)
	if err := pipeline.Run(cmd.Context(), mode); err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	return nil
}

// buildEngine prefers Gemini when an API key is present, otherwise the
// registry-gated offline HTTP engine.
func buildEngine(cmd *cobra.Command, cfg *config.Config) (translate.Engine, func(), error) {
	if cfg.GeminiAPIKey != "" {
		engine, err := translate.NewGeminiEngine(cmd.Context(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using gemini translation engine")
		return engine, engine.Close, nil
	}

	registry := translate.LoadRegistry(cfg.ModelsFilePath)
	if registry.Empty() {
		logger.Warn("no translation models installed, output will be untranslated",
			"hint", "run: mnews install-models")
	}
	return translate.NewHTTPEngine(registry, cfg.RequestTimeout), func() {}, nil
}

// buildSeenStore uses Postgres when DATABASE_URL is set, degrading to
// the file store when the connection fails.
func buildSeenStore(cfg *config.Config) (store.SeenStore, func()) {
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err == nil {
			logger.Info("using postgres seen store")
			return pg, func() { pg.Close() }
		}
		logger.Warn("postgres unavailable, falling back to file seen store", "error", err)
	}
	return store.NewFileStore(cfg.SeenFilePath), func() {}
}

func newInstallModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install-models",
		Short: "Download the translation model index and register the needed language pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sources, err := feed.LoadSources(cfg.FeedsConfigPath)
			if err != nil {
				return err
			}

			langs := make([]string, 0, len(sources))
			for _, s := range sources {
				langs = append(langs, s.Lang)
			}
			need := translate.RequiredPairs(langs, cfg.TargetLang, cfg.PivotLangs)

			getter := fetch.New(cfg.RequestTimeout, cfg.RetryAttempts, cfg.RetryDelay)
			registry := translate.LoadRegistry(cfg.ModelsFilePath)
			return translate.InstallModels(cmd.Context(), getter, cfg.ModelIndexURL, registry, need)
		},
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server stopped", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
