// Package ingest guards run triggering: it deduplicates redundant
// delivery events so one logical trigger starts at most one run.
package ingest

import (
	"sync"
	"time"

	"github.com/verityhq/verity/internal/clock"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Deduper remembers recently seen delivery keys for a fixed window.
// Platform webhooks redeliver on timeouts, so the same (entity, event)
// pair can arrive more than once.
type Deduper struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	clock  clock.Clock
}

// NewDeduper creates a deduper remembering keys for the given window.
func NewDeduper(window time.Duration, clk clock.Clock) *Deduper {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Deduper{
		window: window,
		seen:   make(map[string]time.Time),
		clock:  clk,
	}
}

// Check records a delivery and returns ErrDuplicateDelivery when the same
// entity/event pair was already seen inside the window.
func (d *Deduper) Check(entityID, eventID string) error {
	key := entityID + "\x00" + eventID
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.evictLocked(now)

	if at, ok := d.seen[key]; ok && now.Sub(at) < d.window {
		return verrors.Wrapf(verrors.ErrDuplicateDelivery, "event %s for %s already processed", eventID, entityID)
	}

	d.seen[key] = now
	return nil
}

// evictLocked drops expired entries. Caller holds the mutex.
func (d *Deduper) evictLocked(now time.Time) {
	for key, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, key)
		}
	}
}

// Len returns the number of remembered keys, expired entries included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
