// Package loopback provides an in-memory [bus.Handle].
//
// By default every exchange echoes the outbound bytes back, the way a spidev
// in SPI_LOOP mode (or a wire from MOSI to MISO) behaves. A custom
// [Responder] can model a specific peripheral, and [WithFailure] injects a
// device error at a chosen exchange. Exchanges are always counted; with
// [WithRecording] each one is also kept for inspection.
//
// The handle backs the CLI's --dry-run flag and the driver tests.
//
// # Usage
//
//	h := loopback.New(loopback.WithFailure(2, syscall.EIO))
//	defer h.Close()
//
//	rx, err := h.Exchange([]byte("ping"), 1000000, 0)
package loopback
