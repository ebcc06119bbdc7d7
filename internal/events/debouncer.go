package events

import (
	"context"
	"sync"
	"time"
)

// DebounceConfig holds debouncer timings.
type DebounceConfig struct {
	// Interval is the quiet period after the last event before firing.
	Interval time.Duration
	// MaxWait caps how long a steady stream of events can delay firing.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns the timings used for cache and snapshot
// refreshes.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 500 * time.Millisecond,
		MaxWait:  5 * time.Second,
	}
}

// Debouncer coalesces bursts of events into a single call. The latest
// timer wins: every Push restarts the quiet period, and the call receives
// the latest event's kind with the ids of the whole burst.
type Debouncer struct {
	config  DebounceConfig
	fn      func(Event)
	mu      sync.Mutex
	pending *Event
	first   time.Time
	timer   *time.Timer
	gen     uint64
	wg      sync.WaitGroup
}

// NewDebouncer creates a debouncer that calls fn once per burst.
func NewDebouncer(config DebounceConfig, fn func(Event)) *Debouncer {
	if config.Interval <= 0 {
		config.Interval = DefaultDebounceConfig().Interval
	}
	if config.MaxWait < config.Interval {
		config.MaxWait = config.Interval
	}
	return &Debouncer{config: config, fn: fn}
}

// Push adds an event to the current burst.
func (d *Debouncer) Push(e Event) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		ev := e
		ev.IDs = append([]string(nil), e.IDs...)
		d.pending = &ev
		d.first = now
		d.gen++
		gen := d.gen
		d.timer = time.AfterFunc(d.config.Interval, func() { d.fire(gen) })
		return
	}

	d.pending.Kind = e.Kind
	d.pending.At = e.At
	d.pending.IDs = mergeIDs(d.pending.IDs, e.IDs)

	if now.Sub(d.first) >= d.config.MaxWait {
		d.fireLocked()
		return
	}
	d.timer.Reset(d.config.Interval)
}

// fire runs when the timer of burst gen expires. A timer that lost the
// race against a MaxWait flush finds a newer generation and does nothing.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	d.fireLocked()
}

// fireLocked hands the pending burst to fn. Must be called with mu held.
func (d *Debouncer) fireLocked() {
	if d.pending == nil {
		return
	}
	d.timer.Stop()
	ev := *d.pending
	d.pending = nil

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.fn(ev)
	}()
}

// Pending reports whether a burst is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush fires the pending burst immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fireLocked()
}

// Stop flushes and waits for in-flight calls to return.
func (d *Debouncer) Stop() {
	d.Flush()
	d.wg.Wait()
}

// Run feeds events from sub into the debouncer until ctx is done or sub is
// closed, then stops it.
func (d *Debouncer) Run(ctx context.Context, sub <-chan Event) {
	defer d.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			d.Push(e)
		}
	}
}

func mergeIDs(have, add []string) []string {
	seen := make(map[string]bool, len(have))
	for _, id := range have {
		seen[id] = true
	}
	for _, id := range add {
		if !seen[id] {
			seen[id] = true
			have = append(have, id)
		}
	}
	return have
}
