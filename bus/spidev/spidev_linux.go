//go:build linux && (386 || amd64 || arm || arm64 || riscv64 || loong64 || s390x)

package spidev

import (
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/pkg"
)

// Device is a bus.Handle backed by a Linux spidev character device.
// It has a single owner and is not safe for concurrent use.
type Device struct {
	fd   int
	path string
	cfg  bus.Config

	// Chained transfers reused by every exchange.
	xfers [maxTransfers]transfer
}

var _ bus.Handle = (*Device)(nil)

// Open opens the spidev node at path and applies cfg. On any failure the
// descriptor is closed and a *pkg.DeviceError naming the failed step is
// returned.
func Open(path string, cfg bus.Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &pkg.DeviceError{Path: path, Op: "failed to open spidev", Err: err}
	}

	d := &Device{fd: fd, path: path, cfg: cfg}
	if err := d.configure(); err != nil {
		unix.Close(fd)
		return nil, err
	}

	pkg.LogDebug(pkg.ComponentSPIDev, "device opened",
		"path", path,
		"mode", cfg.Mode.String(),
		"chip_select", cfg.ChipSelect.String(),
		"bits_per_word", cfg.BitsPerWord,
		"lsb_first", cfg.LSBFirst,
		"max_speed_hz", cfg.MaxSpeed)
	return d, nil
}

// configure writes every setting in cfg to the device.
func (d *Device) configure() error {
	mode := modeFlags(d.cfg)
	if err := writeU8(d.fd, ioctlWrMode, mode); err != nil {
		return &pkg.DeviceError{Path: d.path, Op: "failed to set SPI mode", Err: err}
	}
	if got, err := readU8(d.fd, ioctlRdMode); err == nil && got&^FlagReady != mode {
		pkg.LogWarn(pkg.ComponentSPIDev, "driver adjusted mode flags",
			"path", d.path, "requested", mode, "applied", got)
	}

	if err := writeU8(d.fd, ioctlWrBitsPerWord, d.cfg.BitsPerWord); err != nil {
		return &pkg.DeviceError{Path: d.path, Op: "failed to set bits per word", Err: err}
	}

	var lsb uint8
	if d.cfg.LSBFirst {
		lsb = 1
	}
	if err := writeU8(d.fd, ioctlWrLSBFirst, lsb); err != nil {
		return &pkg.DeviceError{Path: d.path, Op: "failed to set bit order", Err: err}
	}

	if err := writeU32(d.fd, ioctlWrMaxSpeedHz, d.cfg.MaxSpeed); err != nil {
		return &pkg.DeviceError{Path: d.path, Op: "failed to set max speed", Err: err}
	}
	return nil
}

// Path returns the device node path.
func (d *Device) Path() string {
	return d.path
}

// Exchange performs one full-duplex transfer. With a nonzero preDelay a
// zero-length transfer carrying the delay is chained in front of the data
// transfer inside the same message, so chip-select stays asserted across the
// delay; the kernel enforces it with some positive jitter.
func (d *Device) Exchange(tx []byte, speed uint32, preDelay time.Duration) ([]byte, error) {
	if d.fd < 0 {
		return nil, &pkg.DeviceError{Path: d.path, Op: "SPI transfer", Err: pkg.ErrClosed}
	}
	delay, err := delayMicros(preDelay)
	if err != nil {
		return nil, err
	}

	rx := make([]byte, len(tx))
	data := transfer{
		length:      uint32(len(tx)),
		speedHz:     speed,
		bitsPerWord: d.cfg.BitsPerWord,
	}
	if len(tx) > 0 {
		data.txBuf = uint64(uintptr(unsafe.Pointer(&tx[0])))
		data.rxBuf = uint64(uintptr(unsafe.Pointer(&rx[0])))
	}

	n := 1
	if delay > 0 {
		d.xfers[0] = transfer{
			speedHz:     speed,
			bitsPerWord: d.cfg.BitsPerWord,
			delayUsecs:  delay,
		}
		d.xfers[1] = data
		n = 2
	} else {
		d.xfers[0] = data
	}

	_, err = ioctlPtr(d.fd, ioctlMessage(n), unsafe.Pointer(&d.xfers[0]))
	runtime.KeepAlive(tx)
	runtime.KeepAlive(rx)
	if err != nil {
		return nil, &pkg.DeviceError{Path: d.path, Op: "SPI transfer", Err: err}
	}
	return rx, nil
}

// Close releases the device. Closing twice is a no-op.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return &pkg.DeviceError{Path: d.path, Op: "close", Err: err}
	}
	pkg.LogDebug(pkg.ComponentSPIDev, "device closed", "path", d.path)
	return nil
}
