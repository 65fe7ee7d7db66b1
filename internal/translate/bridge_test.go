package translate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine translates by wrapping the text in "to(...)" and counts
// every engine invocation per pair.
type stubEngine struct {
	pairs map[string]bool
	calls map[string]int
	err   error
}

func newStubEngine(pairs ...string) *stubEngine {
	m := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		m[p] = true
	}
	return &stubEngine{pairs: m, calls: make(map[string]int)}
}

func (s *stubEngine) HasPair(from, to string) bool {
	return s.pairs[from+"->"+to]
}

func (s *stubEngine) Translate(_ context.Context, text, from, to string) (string, error) {
	s.calls[from+"->"+to]++
	if s.err != nil {
		return "", s.err
	}
	return to + "(" + text + ")", nil
}

func (s *stubEngine) totalCalls() int {
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func newTestBridge(t *testing.T, engine Engine) (*Bridge, *Cache) {
	t.Helper()
	cache := OpenCache(filepath.Join(t.TempDir(), "cache.json"), 100, 1000)
	return NewBridge(engine, cache, "zh", map[string]string{"ja": "en"}), cache
}

func TestBridge_DirectTranslation(t *testing.T) {
	engine := newStubEngine("en->zh")
	bridge, _ := newTestBridge(t, engine)

	got := bridge.ToTarget(context.Background(), "hello world", "en")
	assert.Equal(t, "zh(hello world)", got)
	assert.Equal(t, 1, engine.calls["en->zh"])
}

func TestBridge_CacheHitSkipsEngine(t *testing.T) {
	engine := newStubEngine("en->zh")
	bridge, _ := newTestBridge(t, engine)

	first := bridge.ToTarget(context.Background(), "hello", "en")
	second := bridge.ToTarget(context.Background(), "hello", "en")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.totalCalls(), "second call must be served from cache")
}

func TestBridge_ChainedTranslation(t *testing.T) {
	engine := newStubEngine("ja->en", "en->zh")
	bridge, cache := newTestBridge(t, engine)

	got := bridge.ToTarget(context.Background(), "こんにちは", "ja")
	assert.Equal(t, "zh(en(こんにちは))", got)
	assert.Equal(t, 1, engine.calls["ja->en"])
	assert.Equal(t, 1, engine.calls["en->zh"])

	// Both hops are cached under their own pair keys.
	mid, ok := cache.Get(CacheKey("ja", "en", "こんにちは"))
	require.True(t, ok)
	assert.Equal(t, "en(こんにちは)", mid)

	final, ok := cache.Get(CacheKey("en", "zh", mid))
	require.True(t, ok)
	assert.Equal(t, "zh(en(こんにちは))", final)
}

func TestBridge_ChainedHopReuse(t *testing.T) {
	engine := newStubEngine("ja->en", "en->zh")
	bridge, _ := newTestBridge(t, engine)

	bridge.ToTarget(context.Background(), "こんにちは", "ja")
	bridge.ToTarget(context.Background(), "こんにちは", "ja")

	assert.Equal(t, 1, engine.calls["ja->en"])
	assert.Equal(t, 1, engine.calls["en->zh"])
}

func TestBridge_EmptyTextShortCircuits(t *testing.T) {
	engine := newStubEngine("en->zh")
	bridge, cache := newTestBridge(t, engine)

	assert.Equal(t, "", bridge.ToTarget(context.Background(), "", "en"))
	assert.Equal(t, "", bridge.ToTarget(context.Background(), "   \n ", "en"))
	assert.Equal(t, 0, engine.totalCalls())
	assert.Equal(t, 0, cache.Len())
}

func TestBridge_FailureIsCachedAsEmpty(t *testing.T) {
	engine := newStubEngine("en->zh")
	engine.err = errors.New("engine exploded")
	bridge, cache := newTestBridge(t, engine)

	assert.Equal(t, "", bridge.ToTarget(context.Background(), "doomed", "en"))
	assert.Equal(t, 1, engine.totalCalls())

	cached, ok := cache.Get(CacheKey("en", "zh", "doomed"))
	require.True(t, ok)
	assert.Equal(t, "", cached)

	// A second attempt must not re-invoke the engine.
	assert.Equal(t, "", bridge.ToTarget(context.Background(), "doomed", "en"))
	assert.Equal(t, 1, engine.totalCalls())
}

func TestBridge_FailedPivotHopYieldsEmpty(t *testing.T) {
	engine := newStubEngine("ja->en", "en->zh")
	engine.err = errors.New("down")
	bridge, _ := newTestBridge(t, engine)

	assert.Equal(t, "", bridge.ToTarget(context.Background(), "こんにちは", "ja"))
	assert.Equal(t, 1, engine.calls["ja->en"], "forward hop attempted")
	assert.Equal(t, 0, engine.calls["en->zh"], "backward hop skipped after empty forward hop")
}

func TestBridge_NoTranslationPath(t *testing.T) {
	engine := newStubEngine() // no pairs at all
	bridge, cache := newTestBridge(t, engine)

	assert.Equal(t, "", bridge.ToTarget(context.Background(), "hello", "en"))
	assert.Equal(t, 0, engine.totalCalls())
	assert.Equal(t, 0, cache.Len(), "not-attempted must not be cached")
}

func TestBridge_TargetLanguagePassesThrough(t *testing.T) {
	engine := newStubEngine("en->zh")
	bridge, _ := newTestBridge(t, engine)

	assert.Equal(t, "已经是中文", bridge.ToTarget(context.Background(), "已经是中文", "zh"))
	assert.Equal(t, 0, engine.totalCalls())
}

type fixedLimiter struct{ allowed int }

func (l *fixedLimiter) Allow() bool {
	if l.allowed <= 0 {
		return false
	}
	l.allowed--
	return true
}

func TestBridge_LimiterStopsEngineCalls(t *testing.T) {
	engine := newStubEngine("en->zh")
	bridge, cache := newTestBridge(t, engine)
	bridge.SetLimiter(&fixedLimiter{allowed: 1})

	assert.Equal(t, "zh(one)", bridge.ToTarget(context.Background(), "one", "en"))
	assert.Equal(t, "", bridge.ToTarget(context.Background(), "two", "en"))
	assert.Equal(t, 1, engine.totalCalls())

	// Budget misses are not cached, so a later run may retry.
	_, ok := cache.Get(CacheKey("en", "zh", "two"))
	assert.False(t, ok)
}

type unavailableEngine struct{ stubEngine }

func (unavailableEngine) Available() bool { return false }

func TestBridge_UnavailableEngine(t *testing.T) {
	engine := &unavailableEngine{stubEngine: *newStubEngine("en->zh")}
	bridge, _ := newTestBridge(t, engine)

	assert.Equal(t, "", bridge.ToTarget(context.Background(), "hello", "en"))
	assert.Equal(t, 0, engine.totalCalls())
}
