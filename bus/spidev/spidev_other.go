//go:build !linux || !(386 || amd64 || arm || arm64 || riscv64 || loong64 || s390x)

package spidev

import (
	"time"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/pkg"
)

// Device is unavailable on this platform.
type Device struct {
	path string
}

var _ bus.Handle = (*Device)(nil)

// Open always fails with pkg.ErrNotSupported on this platform.
func Open(path string, cfg bus.Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return nil, &pkg.DeviceError{Path: path, Op: "failed to open spidev", Err: pkg.ErrNotSupported}
}

// Path returns the device node path.
func (d *Device) Path() string {
	return d.path
}

// Exchange always fails with pkg.ErrNotSupported on this platform.
func (d *Device) Exchange(_ []byte, _ uint32, _ time.Duration) ([]byte, error) {
	return nil, &pkg.DeviceError{Path: d.path, Op: "SPI transfer", Err: pkg.ErrNotSupported}
}

// Close is a no-op on this platform.
func (d *Device) Close() error {
	return nil
}
