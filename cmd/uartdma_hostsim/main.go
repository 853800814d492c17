//go:build !rp2040 && !rp2350

// Host-side demonstration of the receive driver against the simulated DMA
// channel. Useful for eyeballing the drain cadence without hardware:
//
//	go run ./cmd/uartdma_hostsim -cycles 5 -logtostderr -v 1
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/jangala-dev/tinygo-uartdma/uartdma"
)

var (
	message = flag.String("message", "hello, uartdma", "payload delivered each cycle")
	cycles  = flag.Int("cycles", 3, "number of delivery/drain cycles")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	drv, hw := uartdma.NewSim()

	for i := 0; i < *cycles; i++ {
		payload := fmt.Sprintf("%s #%d\r\n", *message, i)
		hw.Feed([]byte(payload))
		hw.CompleteReceive()

		select {
		case <-drv.Readable():
		case <-time.After(time.Second):
			glog.Exit("no completion notification")
		}
		drv.Poll()
		glog.Infof("cycle %d: window %q", i, drv.GetBuffer())
		drv.Consume(drv.Buffered())
	}

	if n := hw.Dropped(); n > 0 {
		glog.Warningf("%d bytes dropped", n)
	}
	glog.Info("done")
}
