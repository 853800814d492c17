//go:build !rp2040 && !rp2350

// Replays traffic from a real serial port through the simulated DMA receive
// channel: each captured chunk is fed as one DMA delivery and drained by
// Poll. Handy for soak-testing the drain path with live line data instead of
// synthetic payloads:
//
//	go run ./cmd/uartdma_replay -port /dev/ttyUSB0 -baud 115200 -logtostderr
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/jangala-dev/tinygo-uartdma/uartdma"
)

var (
	port = flag.String("port", "/dev/ttyUSB0", "serial port to capture from")
	baud = flag.Int("baud", 115200, "line baud rate")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	p, err := serial.Open(*port, &serial.Mode{BaudRate: *baud})
	if err != nil {
		glog.Exitf("open %s: %v", *port, err)
	}
	defer p.Close()

	drv, hw := uartdma.NewSim()

	buf := make([]byte, 64)
	total := 0
	for {
		n, err := p.Read(buf)
		if err != nil {
			glog.Exitf("read %s: %v", *port, err)
		}
		if n == 0 {
			continue
		}
		hw.Feed(buf[:n])
		hw.CompleteReceive()
		drv.Poll()

		total += drv.Buffered()
		_, _ = os.Stdout.Write(drv.GetBuffer())
		drv.Consume(drv.Buffered())
		glog.V(1).Infof("replayed %d bytes (total %d, dropped %d)", n, total, hw.Dropped())
	}
}
