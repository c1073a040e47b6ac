package format

import (
	"io"

	"github.com/ardnew/spicat/pkg"
)

// Collect reads r to EOF and decodes it as mode. The whole payload is read
// before returning because every exchange sends the same fixed-length
// buffer. An empty source yields an empty, non-nil buffer.
func Collect(r io.Reader, mode Mode) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &pkg.InputError{Err: err}
	}

	var payload []byte
	switch mode {
	case Raw:
		payload = data
	case Hex:
		payload, err = DecodeHex(data)
	case Decimal:
		payload, err = DecodeDecimal(data)
	default:
		return nil, &pkg.ConfigError{Option: "input format", Value: mode, Err: pkg.ErrInvalidFormat}
	}
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []byte{}
	}

	pkg.LogDebug(pkg.ComponentFormat, "input collected",
		"mode", mode.String(),
		"read", len(data),
		"payload", len(payload))
	return payload, nil
}
