//go:build uartdmadebug

package uartdma

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	// ISR-level
	ISRCount      uint32 // completions serviced
	ISRBytes      uint32 // bytes handed over by completions
	NotifySent    uint32 // notify channel sends that succeeded
	NotifyDropped uint32 // notify channel sends that were dropped (coalesced)

	// Drain path
	Drains         uint32 // Poll calls that collected a buffer
	DrainBytes     uint32 // bytes moved into the read window
	WindowMaxUsed  uint32 // high-water mark of read window occupancy
	DrainMaxSingle uint32 // max bytes moved by a single Poll
}

func (d *Driver) dbgISR(bytes int) {
	atomic.AddUint32(&d.stats.ISRCount, 1)
	atomic.AddUint32(&d.stats.ISRBytes, uint32(bytes))
}

func (d *Driver) dbgDrain(bytes int) {
	if bytes == 0 {
		return
	}
	atomic.AddUint32(&d.stats.Drains, 1)
	atomic.AddUint32(&d.stats.DrainBytes, uint32(bytes))
	for {
		max := atomic.LoadUint32(&d.stats.DrainMaxSingle)
		if uint32(bytes) <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&d.stats.DrainMaxSingle, max, uint32(bytes)) {
			break
		}
	}
	used := uint32(d.cursor)
	for {
		max := atomic.LoadUint32(&d.stats.WindowMaxUsed)
		if used <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&d.stats.WindowMaxUsed, max, used) {
			break
		}
	}
}

func (d *Driver) dbgNotify(sent bool) {
	if sent {
		atomic.AddUint32(&d.stats.NotifySent, 1)
	} else {
		atomic.AddUint32(&d.stats.NotifyDropped, 1)
	}
}

func (d *Driver) DebugReset() {
	d.stats = Stats{}
}

func (d *Driver) DebugStats() Stats {
	return Stats{
		ISRCount:      atomic.LoadUint32(&d.stats.ISRCount),
		ISRBytes:      atomic.LoadUint32(&d.stats.ISRBytes),
		NotifySent:    atomic.LoadUint32(&d.stats.NotifySent),
		NotifyDropped: atomic.LoadUint32(&d.stats.NotifyDropped),

		Drains:         atomic.LoadUint32(&d.stats.Drains),
		DrainBytes:     atomic.LoadUint32(&d.stats.DrainBytes),
		WindowMaxUsed:  atomic.LoadUint32(&d.stats.WindowMaxUsed),
		DrainMaxSingle: atomic.LoadUint32(&d.stats.DrainMaxSingle),
	}
}
