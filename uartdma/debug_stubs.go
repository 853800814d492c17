//go:build !uartdmadebug

package uartdma

type Stats struct{}

func (d *Driver) dbgISR(int)     {}
func (d *Driver) dbgDrain(int)   {}
func (d *Driver) dbgNotify(bool) {}

func (d *Driver) DebugReset()       {}
func (d *Driver) DebugStats() Stats { return Stats{} }
