// uartdma/halt_host.go

//go:build !rp2040 && !rp2350

package uartdma

import "github.com/golang/glog"

// testHalt, when non-nil, intercepts fatal halts so unit tests can observe
// them instead of hanging the test binary.
var testHalt func(msg string)

// fatal records the failure reason and halts forever. See halt_rp2.go for
// the rationale; on the host the log goes through glog.
func fatal(msg string) {
	glog.Error("uartdma: fatal: ", msg)
	glog.Flush()
	if testHalt != nil {
		testHalt(msg)
	}
	spinForever()
}
