// uartdma/halt_rp2.go

//go:build rp2040 || rp2350

package uartdma

// fatal records the failure reason and halts forever. A DMA receive channel
// in an inconsistent state cannot be resumed without risking silent data
// corruption, so there is no recovery path; the device must be reset
// externally.
func fatal(msg string) {
	println("uartdma: fatal:", msg)
	spinForever()
}
