// uartdma/uartdma.go

// Package uartdma implements the receive path of a DMA-driven UART. The DMA
// engine moves incoming bytes into a ring buffer without per-byte CPU work;
// on completion an interrupt hands the filled buffer to the foreground
// through a single-slot handoff cell, and Poll drains it into a read window
// the application consumes at its own pace. Poll never blocks; call it every
// main-loop iteration. All hardware failures and protocol invariant
// violations halt rather than return errors — the normal API is infallible
// by contract.
package uartdma

// readWindowSize is the read window capacity. It is larger than the DMA
// buffer so bursts spanning several drain cycles fit before the application
// consumes.
const readWindowSize = 1024

// Driver is the application-facing receive driver. It owns the read window
// exclusively; the handoff slot is the only state shared with interrupt
// context.
type Driver struct {
	ctrl *controller
	slot rxHandoff

	// ring is the single static buffer instance cycled through the
	// armed → slot → drain ownership states.
	ring RingBuffer

	window [readWindowSize]byte
	cursor int

	notify chan struct{} // coalesced RX readiness notifications
	stats  Stats
}

// New constructs a driver over the given receive hardware and arms the
// first reception. Device builds wrap this in a singleton constructor; see
// NewUART0.
func New(hw receiver) *Driver {
	d := &Driver{
		ctrl:   newController(hw),
		notify: make(chan struct{}, 1),
	}
	d.ctrl.arm(&d.ring)
	return d
}

// Poll collects a completed receive buffer, if any, appends its bytes to the
// read window and re-arms the hardware. It returns immediately when nothing
// is ready.
func (d *Driver) Poll() {
	if !d.slot.pending() {
		return
	}
	// Lower the flag before taking the buffer: a completion landing mid-drain
	// must gate its own Poll cycle, not be mistaken for this one.
	d.slot.clearPending()

	buf := d.slot.take()
	if buf == nil {
		fatal("ready flag set but handoff slot empty")
	}

	n := 0
	for {
		b, ok := buf.Pop()
		if !ok {
			break
		}
		if d.cursor == len(d.window) {
			fatal("read window overflow")
		}
		d.window[d.cursor] = b
		d.cursor++
		n++
	}
	d.dbgDrain(n)

	d.ctrl.arm(buf)
}

// GetBuffer returns the valid, unconsumed bytes in arrival order. The slice
// is read-only and valid until the next call to Poll, Consume or Clear.
func (d *Driver) GetBuffer() []byte {
	return d.window[:d.cursor]
}

// Buffered returns the number of unconsumed bytes in the read window.
func (d *Driver) Buffered() int {
	return d.cursor
}

// Consume removes the first count bytes from the read window, clamped to
// what is available, shifting the remainder to the front. Consume(0) is a
// no-op.
func (d *Driver) Consume(count int) {
	if count <= 0 {
		return
	}
	if count > d.cursor {
		count = d.cursor
	}
	copy(d.window[:], d.window[count:d.cursor])
	d.cursor -= count
}

// Clear discards all buffered content. Higher layers use it to resynchronise
// after a protocol error.
func (d *Driver) Clear() {
	d.cursor = 0
}

// Readable returns a coalesced notification for RX completions. The
// interrupt handler sends on it after filling the handoff slot. It is
// level-coalesced; callers must still drive Poll.
func (d *Driver) Readable() <-chan struct{} {
	return d.notify
}

// handleInterrupt services a receive completion. It runs at interrupt
// priority and stays short: the byte copy is deferred to Poll.
func (d *Driver) handleInterrupt() {
	if !d.ctrl.hw.IsReceiveInterrupt() {
		// Another source on the shared line; its own handler will check.
		return
	}
	// Acknowledge before touching the slot, else the interrupt re-enters.
	d.ctrl.hw.ReceiveClearInterrupt()

	buf := d.ctrl.hw.ReceiveComplete()
	if !d.slot.put(buf) {
		// Re-arming only happens after draining, so an occupied slot cannot
		// occur through any legal interleaving.
		fatal("handoff slot occupied at completion")
	}
	d.dbgISR(buf.Used())

	select {
	case d.notify <- struct{}{}:
		d.dbgNotify(true)
	default:
		d.dbgNotify(false)
	}
}
