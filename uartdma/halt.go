// uartdma/halt.go

package uartdma

import "sync/atomic"

// spinWord exists only to give the halt loop an observable memory operation.
var spinWord uint32

// spinForever never returns. The atomic load each iteration acts as a
// memory-ordering fence: pending writes (the failure log) stay flushed and
// the loop cannot be collapsed into nothing.
func spinForever() {
	for {
		atomic.LoadUint32(&spinWord)
	}
}
