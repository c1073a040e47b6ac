package bus

import (
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/spicat/pkg"
)

// Handle is an opened, configured bus endpoint.
//
// Exchange clocks tx out while clocking a response of identical length in,
// at speed Hz. A nonzero preDelay is requested between chip-select assertion
// and the first clock edge; the implementation decides how (and how
// precisely) it is enforced. Chip-select is released when Exchange returns.
type Handle interface {
	Exchange(tx []byte, speed uint32, preDelay time.Duration) ([]byte, error)
	Close() error
}

// Mode is the SPI clock mode (CPOL/CPHA pair).
type Mode uint8

// SPI clock modes.
const (
	Mode0 Mode = iota // CPOL=0 CPHA=0
	Mode1             // CPOL=0 CPHA=1
	Mode2             // CPOL=1 CPHA=0
	Mode3             // CPOL=1 CPHA=1
)

// CPHA reports whether data is sampled on the trailing clock edge.
func (m Mode) CPHA() bool { return m&0x01 != 0 }

// CPOL reports whether the clock idles high.
func (m Mode) CPOL() bool { return m&0x02 != 0 }

// String returns the mode number.
func (m Mode) String() string {
	return strconv.Itoa(int(m))
}

// ParseMode parses an SPI mode number "0".."3".
func ParseMode(s string) (Mode, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil || n > uint64(Mode3) {
		return 0, &pkg.ConfigError{Option: "mode", Value: s, Err: pkg.ErrInvalidMode}
	}
	return Mode(n), nil
}

// ChipSelect selects how the chip-select line behaves during an exchange.
type ChipSelect uint8

// Chip-select policies.
const (
	ChipSelectActiveLow  ChipSelect = iota // Asserted low (default)
	ChipSelectActiveHigh                   // Asserted high
	ChipSelectDisabled                     // Not driven
)

// String returns the command-line spelling of the policy.
func (c ChipSelect) String() string {
	switch c {
	case ChipSelectActiveLow:
		return "active-low"
	case ChipSelectActiveHigh:
		return "active-high"
	case ChipSelectDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ParseChipSelect parses "active-low", "active-high" or "disabled".
func ParseChipSelect(s string) (ChipSelect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active-low", "low":
		return ChipSelectActiveLow, nil
	case "active-high", "high":
		return ChipSelectActiveHigh, nil
	case "disabled", "none":
		return ChipSelectDisabled, nil
	}
	return 0, &pkg.ConfigError{Option: "chip select", Value: s, Err: pkg.ErrInvalidChipSelect}
}

// Default device settings.
const (
	DefaultSpeed       = 1000000 // 1 MHz
	DefaultBitsPerWord = 8
	MaxBitsPerWord     = 32
)

// MaxPreDelay is the longest pre-delay a handle accepts. The Linux driver
// carries the delay in a 16-bit microsecond field.
const MaxPreDelay = 65535 * time.Microsecond

// Config holds the device settings applied once when a handle is opened.
// They do not change between exchanges.
type Config struct {
	Mode        Mode
	ChipSelect  ChipSelect
	BitsPerWord uint8
	LSBFirst    bool
	MaxSpeed    uint32 // Hz
}

// DefaultConfig returns mode 0, active-low chip select, 8 bits per word, MSB
// first at 1 MHz.
func DefaultConfig() Config {
	return Config{
		Mode:        Mode0,
		ChipSelect:  ChipSelectActiveLow,
		BitsPerWord: DefaultBitsPerWord,
		MaxSpeed:    DefaultSpeed,
	}
}

// Validate checks every field and returns the first [pkg.ConfigError].
func (c Config) Validate() error {
	if c.Mode > Mode3 {
		return &pkg.ConfigError{Option: "mode", Value: c.Mode, Err: pkg.ErrInvalidMode}
	}
	if c.ChipSelect > ChipSelectDisabled {
		return &pkg.ConfigError{Option: "chip select", Value: c.ChipSelect, Err: pkg.ErrInvalidChipSelect}
	}
	if c.BitsPerWord == 0 || c.BitsPerWord > MaxBitsPerWord {
		return &pkg.ConfigError{Option: "bits per word", Value: c.BitsPerWord, Err: pkg.ErrInvalidBitsPerWord}
	}
	if c.MaxSpeed == 0 {
		return &pkg.ConfigError{Option: "speed", Value: c.MaxSpeed, Err: pkg.ErrInvalidSpeed}
	}
	return nil
}
