package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultNumberPrefix is used when no prefix is configured
const DefaultNumberPrefix = "INV"

// NumberGenerator hands out invoice numbers of the form PREFIX-YYYYMMDD-NNNNNNNN,
// where the last part is the millisecond of the day. A generator never returns the
// same value twice: when the clock has not moved on, the previous value is bumped.
type NumberGenerator struct {
	mu     sync.Mutex
	prefix string
	now    func() time.Time
	day    string
	last   int64
}

// NewNumberGenerator creates a generator using the wall clock
func NewNumberGenerator(prefix string) *NumberGenerator {
	return NewNumberGeneratorWithClock(prefix, time.Now)
}

// NewNumberGeneratorWithClock creates a generator with an injected clock (useful for testing)
func NewNumberGeneratorWithClock(prefix string, now func() time.Time) *NumberGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &NumberGenerator{prefix: prefix, now: now, last: -1}
}

// SetPrefix changes the prefix used by later numbers
func (g *NumberGenerator) SetPrefix(prefix string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// Next returns a new invoice number
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now()
	day := t.Format("20060102")
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	ms := t.Sub(midnight).Milliseconds()

	if day == g.day && ms <= g.last {
		ms = g.last + 1
	} else if day < g.day {
		// clock went back past midnight; stay on the later day
		day = g.day
		ms = g.last + 1
	}

	g.day = day
	g.last = ms
	return fmt.Sprintf("%s-%s-%08d", g.prefix, day, ms)
}
