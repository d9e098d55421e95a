// Package asynchook moves hook delivery off the writer's goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{CommitEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := cocache.New[Slide](cocache.Options[Slide]{
//	    DisplayName: "slides",
//	    Hooks:       hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cocache"
)

// Hooks forwards events to inner through a bounded queue. When the queue is
// full the event is dropped and counted.
type Hooks struct {
	inner   cocache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ cocache.Hooks = (*Hooks)(nil)

func New(inner cocache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = cocache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns how many events were discarded on a full or closed queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Committed(c, op string, n int) { h.try(func() { h.inner.Committed(c, op, n) }) }
func (h *Hooks) RecordRejected(c, id string, err error) {
	h.try(func() { h.inner.RecordRejected(c, id, err) })
}
func (h *Hooks) OrphansSwept(c, col string, n int) { h.try(func() { h.inner.OrphansSwept(c, col, n) }) }
func (h *Hooks) RolledBack(c string, steps int, changed bool) {
	h.try(func() { h.inner.RolledBack(c, steps, changed) })
}
func (h *Hooks) TransactionAborted(c string, steps int, err error) {
	h.try(func() { h.inner.TransactionAborted(c, steps, err) })
}
