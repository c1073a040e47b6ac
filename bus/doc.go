//go:generate mockgen -destination=mocks/handle.go -package=mocks github.com/ardnew/spicat/bus Handle

// Package bus defines the bus handle abstraction used by the transaction
// driver.
//
// A [Handle] is the only capability the core needs from a device: exchange N
// bytes for N bytes, optionally preceded by a delay after chip-select is
// asserted. Everything device specific (clock mode, chip-select polarity,
// word size, bit order, maximum speed) is fixed once by [Config] when the
// handle is opened and never varied per exchange.
//
// # Implementations
//
//   - [github.com/ardnew/spicat/bus/spidev]: Linux spidev character devices
//   - [github.com/ardnew/spicat/bus/loopback]: in-memory echo, for dry runs and tests
//
// # Example
//
//	cfg := bus.DefaultConfig()
//	cfg.Mode = bus.Mode3
//
//	h, err := spidev.Open("/dev/spidev0.0", cfg)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	rx, err := h.Exchange([]byte{0x9f, 0, 0, 0}, cfg.MaxSpeed, 0)
package bus
