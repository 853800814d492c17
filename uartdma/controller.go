// uartdma/controller.go

package uartdma

// receiver is the contract the register-level DMA+UART layer provides.
// StartReceive, IsReceiveInterrupt and ReceiveClearInterrupt may be called
// from either context; ReceiveComplete only from interrupt context, and only
// after IsReceiveInterrupt confirmed the completion.
type receiver interface {
	// StartReceive arms the channel against buf. The hardware owns buf until
	// the next completion.
	StartReceive(buf *RingBuffer) error
	// ReceiveComplete surrenders the filled buffer back to software.
	ReceiveComplete() *RingBuffer
	// IsReceiveInterrupt reports whether the pending interrupt on the shared
	// line is this channel's receive completion.
	IsReceiveInterrupt() bool
	// ReceiveClearInterrupt acknowledges the completion at the hardware level.
	ReceiveClearInterrupt()
}

// controller owns the receive channel resource and is the only place that
// arms it. The handoff protocol guarantees no two arms are in flight: a
// buffer is re-armed only after it has been taken out of the slot and
// drained.
type controller struct {
	hw receiver
}

func newController(hw receiver) *controller {
	return &controller{hw: hw}
}

// arm reserves the DMA lookahead region on buf and restarts reception.
// A rejected start command means an ownership invariant was violated
// somewhere else, so it is unrecoverable.
func (c *controller) arm(buf *RingBuffer) {
	buf.Reserve(rxReserve)
	if err := c.hw.StartReceive(buf); err != nil {
		fatal("start receive: " + err.Error())
	}
}
