// Package anim provides the cooperative frame-scheduling primitives
// that drive the render engine. A Scheduler runs each scheduled
// callback exactly once; a repeating animation reschedules itself
// from inside its own tick, so canceling the pending handle always
// stops the loop cleanly at the next frame boundary.
package anim

// Handle identifies one pending callback.
type Handle uint64

// Scheduler defers callbacks to the next frame opportunity. Schedule
// queues fn to run once; Cancel discards a still-pending callback.
// Canceling a handle that already ran, or was never issued, is a
// no-op.
type Scheduler interface {
	Schedule(fn func()) Handle
	Cancel(h Handle)
}

type pendingCB struct {
	h  Handle
	fn func()
}

// Manual is a Scheduler driven by explicit Step calls, used by tests
// and offline frame export. It is not safe for concurrent use.
type Manual struct {
	pending []pendingCB
	next    Handle
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Schedule(fn func()) Handle {
	m.next++
	m.pending = append(m.pending, pendingCB{h: m.next, fn: fn})
	return m.next
}

func (m *Manual) Cancel(h Handle) {
	for i, cb := range m.pending {
		if cb.h == h {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Step runs the callbacks pending at the moment of the call and
// returns how many ran. Callbacks scheduled during Step (an animation
// rescheduling itself) wait for the next Step.
func (m *Manual) Step() int {
	cbs := m.pending
	m.pending = nil
	for _, cb := range cbs {
		cb.fn()
	}
	return len(cbs)
}

// Pending reports how many callbacks await the next Step.
func (m *Manual) Pending() int {
	return len(m.pending)
}
