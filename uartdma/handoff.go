// uartdma/handoff.go

package uartdma

import "sync/atomic"

// rxHandoff passes a completed receive buffer from interrupt context to the
// foreground Poll loop. It is the only state both contexts touch.
//
// Invariants:
//   - buf is mutated only inside the critical section.
//   - ready is true only while buf is non-nil. The release-store in put and
//     the acquire-load in pending pair up so that a Poll that observes
//     ready==true also observes the buffer write that preceded it.
type rxHandoff struct {
	ready atomic.Bool
	cs    criticalSection
	buf   *RingBuffer
}

// put stores a completed buffer and raises the ready flag. Called from the
// interrupt handler. It returns false if the slot was still occupied, which
// means the foreground failed to drain before the next completion.
func (h *rxHandoff) put(b *RingBuffer) bool {
	h.cs.enter()
	occupied := h.buf != nil
	if !occupied {
		h.buf = b
	}
	h.cs.exit()
	if occupied {
		return false
	}
	h.ready.Store(true) // publish: pairs with the load in pending
	return true
}

// take removes and returns the buffer, leaving the slot empty. Called from
// the foreground only. Returns nil if the slot was empty.
func (h *rxHandoff) take() *RingBuffer {
	h.cs.enter()
	b := h.buf
	h.buf = nil
	h.cs.exit()
	return b
}

// pending reports whether a completed buffer awaits collection.
func (h *rxHandoff) pending() bool {
	return h.ready.Load()
}

// clearPending lowers the ready flag. Done before take so a completion that
// lands mid-drain raises the flag for its own Poll cycle.
func (h *rxHandoff) clearPending() {
	h.ready.Store(false)
}
