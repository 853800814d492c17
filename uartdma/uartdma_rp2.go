// uartdma/uartdma_rp2.go

//go:build rp2040 || rp2350

// DMA-paced receive channel for the RP2 PL011. The DMA engine moves bytes
// from UARTDR into the ring buffer's storage, paced by the UART's RX DREQ;
// the channel's completion interrupt drives the handoff protocol. The UART
// is brought up fixed 8N1 RX-only — line format is structural here, not an
// option.
package uartdma

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// rxDMAChannel is the DMA channel statically reserved for the UART0 receive
// path. Static assignment is good enough: this driver is the channel's only
// user.
const rxDMAChannel = 7

// RX DREQ index for UART0 (RP2 datasheet, DREQ table).
const dreqUART0RX = 0x15

var (
	errChannelBusy    = errors.New("DMA channel busy")
	errChannelClaimed = errors.New("DMA channel already claimed")
)

// Single DMA channel register block. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	_           [12]volatile.Register32 // aliases
}

var dmaChannels = (*[12]dmaChannelHW)(unsafe.Pointer(rp.DMA))

// claimedChannels tracks the bitset of claimed DMA channels.
var claimedChannels uint16

// rp2Receiver implements receiver over UART0 plus its reserved DMA channel.
type rp2Receiver struct {
	bus   *rp.UART0_Type
	ch    *dmaChannelHW
	armed *RingBuffer // owned by the hardware between StartReceive and ReceiveComplete
	count uint32      // transfer count programmed at arm time
}

var (
	rx0hw = rp2Receiver{bus: rp.UART0, ch: &dmaChannels[rxDMAChannel]}
	rx0   *Driver
)

// NewUART0 claims the reserved DMA channel, brings up UART0 for DMA-paced
// reception, unmasks the completion interrupt and returns the armed driver.
// The channel is a singleton resource: a second claim is a programming
// error and halts.
func NewUART0() *Driver {
	if claimedChannels&(1<<rxDMAChannel) != 0 {
		fatal("claim DMA channel: " + errChannelClaimed.Error())
	}
	claimedChannels |= 1 << rxDMAChannel

	rx0hw.configureUART()

	// Completion interrupt: route our channel to DMA_IRQ_0 and unmask.
	rp.DMA.INTE0.SetBits(1 << rxDMAChannel)
	intr := interrupt.New(rp.IRQ_DMA_IRQ_0, dmaRxISR)
	intr.SetPriority(0x80)
	intr.Enable()

	rx0 = New(&rx0hw)
	return rx0
}

func dmaRxISR(interrupt.Interrupt) {
	if rx0 != nil {
		rx0.handleInterrupt()
	}
}

// configureUART resets the PL011 and enables fixed 8N1 reception with the
// RX DMA handshake. The transmit path is never brought up.
func (r *rp2Receiver) configureUART() {
	rp.RESETS.RESET.SetBits(rp.RESETS_RESET_UART0)
	rp.RESETS.RESET.ClearBits(rp.RESETS_RESET_UART0)
	for !rp.RESETS.RESET_DONE.HasBits(rp.RESETS_RESET_UART0) {
	}

	machine.UART_RX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})

	// Fixed 115200 baud.
	div := 8 * machine.CPUFrequency() / 115200
	ibrd := div >> 7
	var fbrd uint32
	switch {
	case ibrd == 0:
		ibrd, fbrd = 1, 0
	case ibrd >= 65535:
		ibrd, fbrd = 65535, 0
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}
	r.bus.UARTIBRD.Set(ibrd)
	r.bus.UARTFBRD.Set(fbrd)

	// 8 data bits, FIFOs enabled. This LCR_H write also latches the divisors
	// (PL011 quirk).
	r.bus.UARTLCR_H.Set(uint32(3)<<rp.UART0_UARTLCR_H_WLEN_Pos | rp.UART0_UARTLCR_H_FEN)

	// Purge stale RX bytes and sticky errors.
	for !r.bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE) {
		_ = r.bus.UARTDR.Get()
	}
	r.bus.UARTRSR.Set(0)

	// RX DMA handshake: the channel paces itself on the UART's DREQ.
	r.bus.UARTDMACR.SetBits(rp.UART0_UARTDMACR_RXDMAE)

	r.bus.UARTCR.Set(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE)
}

// StartReceive points the channel at buf's data region and triggers it.
func (r *rp2Receiver) StartReceive(buf *RingBuffer) error {
	if r.armed != nil || r.ch.CTRL_TRIG.HasBits(rp.DMA_CH0_CTRL_TRIG_BUSY) {
		return errChannelBusy
	}

	dst := buf.storage()
	r.count = uint32(len(dst))
	r.ch.READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&r.bus.UARTDR))))
	r.ch.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&dst[0]))))
	r.ch.TRANS_COUNT.Set(r.count)

	// Byte transfers, write-increment only, DREQ-paced, chain to self (off).
	ctrl := uint32(dreqUART0RX)<<rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos |
		uint32(rxDMAChannel)<<rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos |
		1<<rp.DMA_CH0_CTRL_TRIG_INCR_WRITE_Pos |
		1<<rp.DMA_CH0_CTRL_TRIG_EN_Pos

	r.armed = buf
	r.ch.CTRL_TRIG.Set(ctrl) // trigger
	return nil
}

// ReceiveComplete surrenders the filled buffer. Interrupt context only.
func (r *rp2Receiver) ReceiveComplete() *RingBuffer {
	buf := r.armed
	r.armed = nil
	// TRANS_COUNT counts down; the remainder was not transferred.
	buf.fill(int(r.count - r.ch.TRANS_COUNT.Get()))
	return buf
}

func (r *rp2Receiver) IsReceiveInterrupt() bool {
	return rp.DMA.INTS0.HasBits(1 << rxDMAChannel)
}

func (r *rp2Receiver) ReceiveClearInterrupt() {
	rp.DMA.INTS0.Set(1 << rxDMAChannel) // write-1-to-clear
}
