// uartdma/critical_rp2.go

//go:build rp2040 || rp2350

package uartdma

import "runtime/interrupt"

// criticalSection excludes the receive ISR while the foreground is mid-update
// (and vice versa). The foreground is cooperative and never preempts itself,
// so masking interrupts is the whole job.
type criticalSection struct {
	state interrupt.State
}

func (cs *criticalSection) enter() {
	cs.state = interrupt.Disable()
}

func (cs *criticalSection) exit() {
	interrupt.Restore(cs.state)
}
