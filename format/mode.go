package format

import (
	"strings"

	"github.com/ardnew/spicat/pkg"
)

// Mode is the encoding of a byte stream.
type Mode uint8

// Encoding modes. Auto means no explicit override.
const (
	Auto    Mode = iota // Decide from the stream's terminal-ness
	Raw                 // Verbatim octets
	Hex                 // Whitespace-separated two-digit hex pairs
	Decimal             // Whitespace-separated decimal byte values
)

// String returns the canonical command-line spelling of m.
func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Raw:
		return "raw"
	case Hex:
		return "hex"
	case Decimal:
		return "dec"
	default:
		return "unknown"
	}
}

// ParseMode parses a format name. Accepted spellings are auto, raw,
// hex/hexadecimal and dec/decimal, in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "raw":
		return Raw, nil
	case "hex", "hexadecimal":
		return Hex, nil
	case "dec", "decimal":
		return Decimal, nil
	}
	return Auto, &pkg.ConfigError{Option: "format", Value: s, Err: pkg.ErrInvalidFormat}
}

// Resolve picks the mode for one stream. An explicit override wins;
// otherwise a terminal gets Hex and anything else gets Raw. Input and output
// are resolved separately, each from its own stream.
func Resolve(override Mode, terminal bool) Mode {
	if override != Auto {
		return override
	}
	if terminal {
		return Hex
	}
	return Raw
}
