package spidev

import (
	"time"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/pkg"
)

// =============================================================================
// System Paths
// =============================================================================

// SysfsClassPath is the sysfs directory listing spidev character devices.
const SysfsClassPath = "/sys/class/spidev"

// DevfsPath is the directory holding spidev device nodes.
const DevfsPath = "/dev"

// =============================================================================
// Mode Flags
// =============================================================================

// Mode byte flags written with SPI_IOC_WR_MODE (include/uapi/linux/spi/spi.h).
const (
	FlagCPHA     = 0x01 // Sample on trailing edge
	FlagCPOL     = 0x02 // Clock idles high
	FlagCSHigh   = 0x04 // Chip select active high
	FlagLSBFirst = 0x08 // Least significant bit first
	Flag3Wire    = 0x10 // Shared SI/SO signal
	FlagLoop     = 0x20 // Loopback mode
	FlagNoCS     = 0x40 // No chip select
	FlagReady    = 0x80 // Slave pulls low to pause
)

// modeFlags combines the clock mode and chip-select policy into the single
// mode byte. Both must be written together: a later SPI_IOC_WR_MODE
// overwrites the whole byte.
func modeFlags(cfg bus.Config) uint8 {
	flags := uint8(cfg.Mode) & (FlagCPHA | FlagCPOL)
	switch cfg.ChipSelect {
	case bus.ChipSelectActiveHigh:
		flags |= FlagCSHigh
	case bus.ChipSelectDisabled:
		flags |= FlagNoCS
	}
	if cfg.LSBFirst {
		flags |= FlagLSBFirst
	}
	return flags
}

// =============================================================================
// Transfer Limits
// =============================================================================

// sizeofTransfer is the size of struct spi_ioc_transfer. The layout is fixed
// across architectures.
const sizeofTransfer = 32

// maxTransfers is the number of chained transfers an exchange can submit: an
// optional zero-length delay transfer followed by the data transfer.
const maxTransfers = 2

// delayMicros converts a pre-delay to the driver's 16-bit microsecond field,
// rounding up so the requested delay is never shortened.
func delayMicros(d time.Duration) (uint16, error) {
	if d < 0 || d > bus.MaxPreDelay {
		return 0, &pkg.ConfigError{Option: "pre-delay", Value: d, Err: pkg.ErrInvalidDelay}
	}
	return uint16((d + time.Microsecond - 1) / time.Microsecond), nil
}
