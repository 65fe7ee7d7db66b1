package ratelimit

import (
	"sync"
	"time"

	"github.com/michaelzh/mnews/internal/logger"
)

// Pacer inserts a fixed delay between successive article fetches to
// avoid tripping anti-scraping defenses. It is a throughput cap, not a
// correctness mechanism.
type Pacer struct {
	delay time.Duration
	last  time.Time
}

func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Wait sleeps until at least the configured delay has passed since the
// previous Wait returned. The first call never sleeps.
func (p *Pacer) Wait() {
	if p.delay <= 0 {
		return
	}
	if !p.last.IsZero() {
		if remaining := p.delay - time.Since(p.last); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	p.last = time.Now()
}

// Budget caps engine requests per run. Zero max means unlimited.
type Budget struct {
	mu   sync.Mutex
	used int
	max  int
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Allow consumes one request slot; once the budget is exhausted every
// further call returns false for the rest of the run.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		logger.Debug("request budget exhausted", "used", b.used, "max", b.max)
		return false
	}
	b.used++
	return true
}

// Used reports how many slots were consumed.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
