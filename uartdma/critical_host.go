// uartdma/critical_host.go

//go:build !rp2040 && !rp2350

package uartdma

import "sync"

// Host shim: the simulated interrupt handler runs on an ordinary goroutine,
// so a mutex stands in for interrupt masking.
type criticalSection struct {
	mu sync.Mutex
}

func (cs *criticalSection) enter() {
	cs.mu.Lock()
}

func (cs *criticalSection) exit() {
	cs.mu.Unlock()
}
