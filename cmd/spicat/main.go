// Command spicat performs full-duplex SPI transactions through a Linux
// spidev device.
//
//	$ echo -n 'Hello there!' | spicat /dev/spidev1.0 --speed 10000000
//	48 65 6c 6c 6f 20 74 68 65 72 65 21
//
// The payload is read from standard input (or --in) and sent over SPI; the
// bytes clocked back in are written to standard output (or --out). Output to
// a terminal is hex by default and raw bytes otherwise; input typed at a
// terminal is read as hex by default. Use --format and --input-format to
// override either side.
//
// --repeat runs the same transaction several times to stress-test a bus or
// device, writing one record per exchange as it completes. --pre-delay asks
// the kernel to wait after asserting chip select before clocking; the actual
// delay may be a few microseconds longer than requested.
package main

import (
	"os"

	"github.com/bitmark-inc/exitwithstatus"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	app := newApp(defaultEnvironment())
	if err := runApp(app, os.Args); err != nil {
		exitwithstatus.Message("Error: %s\n", err)
	}
}
