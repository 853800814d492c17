//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartdma/uartdma"
)

// On-device sanity runner. Connect a sender to the UART0 RX pin to exercise
// the forwarding phase; the API checks need no external wiring.

func ledBlink(times int, on time.Duration) {
	for i := 0; i < times; i++ {
		machine.LED.High()
		time.Sleep(on)
		machine.LED.Low()
		time.Sleep(on)
	}
}

func main() {
	// Give the monitor time to attach.
	time.Sleep(3 * time.Second)

	println("uartdma self-test starting")
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	u := uartdma.NewUART0()

	pass, fail := 0, 0
	run := func(name string, f func() string) {
		println("")
		println("[Test]", name)
		if msg := f(); msg == "" {
			println("  PASS")
			pass++
		} else {
			println("  FAIL:", msg)
			fail++
		}
	}

	run("poll: idle channel returns immediately", func() string {
		start := time.Now()
		u.Poll()
		if time.Since(start) > 10*time.Millisecond {
			return "poll blocked"
		}
		if u.Buffered() != 0 {
			return "unexpected data"
		}
		return ""
	})

	run("consume: clamp on empty window", func() string {
		u.Consume(100)
		if u.Buffered() != 0 {
			return "cursor went negative"
		}
		return ""
	})

	run("clear: resets window", func() string {
		u.Clear()
		if len(u.GetBuffer()) != 0 {
			return "window not empty"
		}
		return ""
	})

	// Forwarding phase: for 30 seconds, relay anything received to USB-CDC.
	println("")
	println("forwarding RX to serial for 30s; send data to the RX pin now")
	total := 0
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		u.Poll()
		if n := u.Buffered(); n > 0 {
			_, _ = machine.Serial.Write(u.GetBuffer())
			u.Consume(n)
			total += n
		}
		time.Sleep(time.Millisecond)
	}
	println("forwarded bytes:", total)

	println("")
	println("Summary")
	println("  passed =", pass)
	println("  failed =", fail)
	if fail == 0 {
		ledBlink(3, 120*time.Millisecond)
	} else {
		for {
			ledBlink(1, 600*time.Millisecond)
			time.Sleep(800 * time.Millisecond)
		}
	}
}
