// uartdma/uartdma_host.go

//go:build !rp2040 && !rp2350

package uartdma

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

// Host shim: a simulated DMA+UART receive channel, so the handoff protocol
// runs under go test without hardware. Feed plays the role of the wire,
// CompleteReceive the role of the completion interrupt.

var (
	errSimChannelBusy = errors.New("simulated DMA channel busy")
	errSimStartFault  = errors.New("simulated start-receive fault")
)

// SimReceiver implements receiver in memory.
type SimReceiver struct {
	mu         sync.Mutex
	armed      *RingBuffer // owned by the "hardware" between StartReceive and ReceiveComplete
	irqPending bool
	failStart  bool
	dropped    int

	driver *Driver
}

// NewSim returns a driver wired to a simulated receive channel.
func NewSim() (*Driver, *SimReceiver) {
	hw := &SimReceiver{}
	d := New(hw)
	hw.driver = d
	return d, hw
}

// Feed deposits bytes into the armed buffer, as the DMA engine would. Bytes
// arriving while no buffer is armed, or beyond the buffer's capacity, are
// dropped and counted — matching what real hardware does with an unpaced
// line.
func (s *SimReceiver) Feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == nil {
		s.dropped += len(p)
		return
	}
	for _, b := range p {
		if !s.armed.push(b) {
			s.dropped++
		}
	}
	glog.V(1).Infof("sim: fed %d bytes", len(p))
}

// CompleteReceive raises the completion condition and runs the interrupt
// handler, as the DMA IRQ would on hardware. It is a no-op while no buffer
// is armed.
func (s *SimReceiver) CompleteReceive() {
	s.mu.Lock()
	if s.armed == nil {
		s.mu.Unlock()
		return
	}
	s.irqPending = true
	s.mu.Unlock()
	s.driver.handleInterrupt()
}

// FailNextStart makes the next StartReceive report a hardware fault.
func (s *SimReceiver) FailNextStart() {
	s.mu.Lock()
	s.failStart = true
	s.mu.Unlock()
}

// Armed reports whether the channel currently owns a buffer.
func (s *SimReceiver) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed != nil
}

// Dropped returns how many fed bytes found no room.
func (s *SimReceiver) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// --- receiver implementation ---

func (s *SimReceiver) StartReceive(buf *RingBuffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStart {
		s.failStart = false
		return errSimStartFault
	}
	if s.armed != nil {
		return errSimChannelBusy
	}
	s.armed = buf
	return nil
}

func (s *SimReceiver) ReceiveComplete() *RingBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.armed
	s.armed = nil
	return buf
}

func (s *SimReceiver) IsReceiveInterrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.irqPending
}

func (s *SimReceiver) ReceiveClearInterrupt() {
	s.mu.Lock()
	s.irqPending = false
	s.mu.Unlock()
}
