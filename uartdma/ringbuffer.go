// uartdma/ringbuffer.go

// The fixed-capacity circular buffer the DMA engine receives into. Unlike a
// conventional SPSC ring it is never shared: at any instant it is owned by
// exactly one of the DMA hardware (armed), the handoff slot (completed) or
// the drain loop inside Poll. Ownership moves with the pointer; no field
// here needs volatile or atomic access.

package uartdma

const (
	// rxBufferSize is the DMA receive buffer capacity in bytes.
	rxBufferSize = 64
	// rxReserve is the lookahead region the DMA engine requires for its
	// descriptor mechanics. Reserved slots never carry data.
	rxReserve = 1
)

// RingBuffer is a fixed-capacity byte buffer filled by the DMA engine and
// drained in FIFO order by Poll.
type RingBuffer struct {
	buf      [rxBufferSize]byte
	head     uint16 // next write slot, advanced by the hardware while armed
	tail     uint16 // next read slot, advanced by Pop during drain
	reserved uint16
}

// NewRingBuffer returns a new ring buffer.
func NewRingBuffer() *RingBuffer {
	return &RingBuffer{}
}

// Capacity returns the number of data slots available to the hardware,
// excluding the reserved lookahead region.
func (rb *RingBuffer) Capacity() int {
	return rxBufferSize - int(rb.reserved)
}

// Used returns how many received bytes are waiting to be popped.
func (rb *RingBuffer) Used() int {
	return int(rb.head - rb.tail)
}

// Reserve empties the buffer and sets aside n slots for the DMA engine's
// lookahead. It must be called before the buffer is armed and never while
// the hardware owns it.
func (rb *RingBuffer) Reserve(n int) {
	rb.head = 0
	rb.tail = 0
	rb.reserved = uint16(n)
}

// Pop removes the oldest byte. It returns (0, false) when the buffer is empty.
func (rb *RingBuffer) Pop() (byte, bool) {
	if rb.Used() == 0 {
		return 0, false
	}
	v := rb.buf[rb.slot(rb.tail)]
	rb.tail++
	return v, true
}

// slot maps a logical index onto the data region, which starts after the
// reserved lookahead slots and wraps within the remaining capacity.
func (rb *RingBuffer) slot(idx uint16) int {
	return int(rb.reserved) + int(idx)%rb.Capacity()
}

// Clear discards all buffered bytes and the reservation.
func (rb *RingBuffer) Clear() {
	rb.head = 0
	rb.tail = 0
	rb.reserved = 0
}

// push appends one received byte. It is the hardware-facing side of the
// buffer: the simulated DMA engine calls it per transferred byte. It returns
// false when the data region is full.
func (rb *RingBuffer) push(val byte) bool {
	if rb.Used() == rb.Capacity() {
		return false
	}
	rb.buf[rb.slot(rb.head)] = val
	rb.head++
	return true
}

// fill records that the hardware deposited n bytes directly into the
// underlying storage, as the real DMA engine does.
func (rb *RingBuffer) fill(n int) {
	rb.head = rb.tail + uint16(n)
}

// storage exposes the data region for the hardware to target. Only hardware
// implementations may touch it, and only while they own the buffer.
func (rb *RingBuffer) storage() []byte {
	return rb.buf[rb.reserved:]
}
