package anim

import (
	"sync"
	"time"
)

// Ticker is a real-time Scheduler that releases pending callbacks at
// a fixed frame rate. Callbacks run sequentially on the ticker's own
// goroutine, one frame at a time, so a slow frame delays the next
// rather than overlapping it.
type Ticker struct {
	mu      sync.Mutex
	pending []pendingCB
	next    Handle

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewTicker starts a frame ticker at the given frames per second.
// Non-positive rates fall back to 60. Close releases the goroutine.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	t := &Ticker{
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Ticker) run() {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			t.runPending()
		}
	}
}

func (t *Ticker) runPending() {
	t.mu.Lock()
	cbs := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, cb := range cbs {
		cb.fn()
	}
}

func (t *Ticker) Schedule(fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.pending = append(t.pending, pendingCB{h: t.next, fn: fn})
	return t.next
}

func (t *Ticker) Cancel(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cb := range t.pending {
		if cb.h == h {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// Close stops the frame goroutine. Callbacks still pending never run.
// Close is idempotent.
func (t *Ticker) Close() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
