package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/michaelzh/mnews/internal/fetch"
	"github.com/michaelzh/mnews/internal/logger"
)

// indexEntry is one model listing in the published package index.
type indexEntry struct {
	FromCode string `json:"from_code"`
	ToCode   string `json:"to_code"`
}

// InstallModels downloads the model index and records the needed pairs
// in the local registry. It is a one-time network step run separately
// from the pipeline; the pipeline only ever reads the registry file.
// Pairs missing from the index are reported but do not fail the rest.
func InstallModels(ctx context.Context, getter fetch.Getter, indexURL string, registry *Registry, need []Pair) error {
	body, err := getter.Get(ctx, indexURL)
	if err != nil {
		return fmt.Errorf("fetch model index: %w", err)
	}

	var index []indexEntry
	if err := json.Unmarshal([]byte(body), &index); err != nil {
		return fmt.Errorf("decode model index: %w", err)
	}

	available := make(map[string]struct{}, len(index))
	for _, entry := range index {
		available[Pair{From: entry.FromCode, To: entry.ToCode}.String()] = struct{}{}
	}

	var install []Pair
	for _, pair := range need {
		if _, ok := available[pair.String()]; !ok {
			logger.Warn("model not found in index", "pair", pair.String())
			continue
		}
		install = append(install, pair)
		logger.Info("model available, recording as installed", "pair", pair.String())
	}

	if len(install) == 0 {
		return fmt.Errorf("none of the requested models exist in the index")
	}
	if err := registry.Add(install); err != nil {
		return fmt.Errorf("update model registry: %w", err)
	}
	logger.Info("model installation finished", "installed", len(install))
	return nil
}

// RequiredPairs derives the model set the configured languages need:
// a direct model per source language, or the two pivot hops when an
// intermediate is registered for it.
func RequiredPairs(sourceLangs []string, target string, pivots map[string]string) []Pair {
	seen := make(map[string]struct{})
	var pairs []Pair
	add := func(p Pair) {
		if _, dup := seen[p.String()]; dup {
			return
		}
		seen[p.String()] = struct{}{}
		pairs = append(pairs, p)
	}

	for _, lang := range sourceLangs {
		if lang == target {
			continue
		}
		if pivot, ok := pivots[lang]; ok {
			add(Pair{From: lang, To: pivot})
			add(Pair{From: pivot, To: target})
			continue
		}
		add(Pair{From: lang, To: target})
	}
	return pairs
}
