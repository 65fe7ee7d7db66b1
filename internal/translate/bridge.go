package translate

import (
	"context"
	"strings"

	"github.com/michaelzh/mnews/internal/logger"
	"github.com/michaelzh/mnews/internal/metrics"
)

// Limiter gates engine calls; cache hits are always free. A nil limiter
// means unlimited.
type Limiter interface {
	Allow() bool
}

// availability lets engines report whether they can serve anything at
// all, so logs can tell "engine unavailable" apart from a per-pair miss.
type availability interface {
	Available() bool
}

// Bridge routes a text span into the target language, chaining through
// an intermediate language when no direct model exists, and memoizes
// every hop in the persistent cache.
type Bridge struct {
	engine  Engine
	cache   *Cache
	target  string
	pivots  map[string]string
	limiter Limiter
}

func NewBridge(engine Engine, cache *Cache, target string, pivots map[string]string) *Bridge {
	return &Bridge{
		engine: engine,
		cache:  cache,
		target: target,
		pivots: pivots,
	}
}

// SetLimiter installs a per-run engine-call budget.
func (b *Bridge) SetLimiter(l Limiter) {
	b.limiter = l
}

// hopState drives the chained-translation state machine. Modeling the
// hops explicitly keeps the failure semantics of each hop independently
// testable instead of buried in nested conditionals.
type hopState int

const (
	stateDirect hopState = iota
	statePivotForward
	statePivotBackward
	stateDone
	stateFailed
)

// ToTarget translates text from its source language into the bridge's
// target language. It always returns a usable string: failures and
// missing models degrade to "".
func (b *Bridge) ToTarget(ctx context.Context, text, from string) string {
	text = normalizeText(text)
	if text == "" {
		return ""
	}
	if from == b.target {
		return text
	}
	if b.engine == nil {
		logger.Debug("translation engine not configured", "from", from, "to", b.target)
		return ""
	}
	if avail, ok := b.engine.(availability); ok && !avail.Available() {
		logger.Warn("translation engine unavailable, emitting untranslated", "from", from, "to", b.target)
		metrics.Global.IncrementTranslationsEmpty()
		return ""
	}

	state := stateDirect
	if !b.engine.HasPair(from, b.target) {
		pivot, ok := b.pivots[from]
		if !ok || !b.engine.HasPair(from, pivot) || !b.engine.HasPair(pivot, b.target) {
			logger.Warn("no translation path", "from", from, "to", b.target)
			metrics.Global.IncrementTranslationsEmpty()
			return ""
		}
		state = statePivotForward
	}

	var (
		current = text
		lang    = from
		result  string
	)
	for {
		switch state {
		case stateDirect:
			result = b.hop(ctx, current, lang, b.target)
			state = stateDone

		case statePivotForward:
			pivot := b.pivots[lang]
			mid := b.hop(ctx, current, lang, pivot)
			if mid == "" {
				state = stateFailed
				break
			}
			current, lang = mid, pivot
			state = statePivotBackward

		case statePivotBackward:
			result = b.hop(ctx, current, lang, b.target)
			state = stateDone

		case stateDone:
			if result == "" {
				metrics.Global.IncrementTranslationsEmpty()
			} else {
				metrics.Global.IncrementTranslationsOK()
			}
			return result

		case stateFailed:
			metrics.Global.IncrementTranslationsEmpty()
			return ""
		}
	}
}

// hop performs one cached engine translation. Failures are cached as ""
// so a broken text is not retried on every run.
func (b *Bridge) hop(ctx context.Context, text, from, to string) string {
	key := CacheKey(from, to, text)
	if cached, ok := b.cache.Get(key); ok {
		return cached
	}

	if b.limiter != nil && !b.limiter.Allow() {
		logger.Warn("translation budget exhausted, emitting untranslated", "from", from, "to", to)
		return ""
	}

	translated, err := b.engine.Translate(ctx, text, from, to)
	if err != nil {
		logger.Warn("translation failed", "from", from, "to", to, "error", err)
		translated = ""
	}
	translated = normalizeText(translated)
	b.cache.Put(key, translated)
	return translated
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
