package format

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/ardnew/spicat/pkg"
)

// AppendHex appends b as lowercase two-digit hex pairs separated by single
// spaces. No trailing separator is written.
func AppendHex(dst, b []byte) []byte {
	for i, v := range b {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = hex.AppendEncode(dst, []byte{v})
	}
	return dst
}

// AppendDecimal appends b as decimal values separated by single spaces.
func AppendDecimal(dst, b []byte) []byte {
	for i, v := range b {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = strconv.AppendUint(dst, uint64(v), 10)
	}
	return dst
}

// DecodeHex decodes whitespace-separated two-digit hex tokens. Each token
// must be exactly two hex digits; anything else fails with a
// *pkg.InputError wrapping pkg.ErrMalformedHex.
func DecodeHex(text []byte) ([]byte, error) {
	fields := bytes.Fields(text)
	out := make([]byte, len(fields))
	for i, tok := range fields {
		if len(tok) != 2 {
			return nil, &pkg.InputError{Token: i + 1, Text: string(tok), Err: pkg.ErrMalformedHex}
		}
		if _, err := hex.Decode(out[i:i+1], tok); err != nil {
			return nil, &pkg.InputError{Token: i + 1, Text: string(tok), Err: pkg.ErrMalformedHex}
		}
	}
	return out, nil
}

// DecodeDecimal decodes whitespace-separated decimal tokens in 0..255.
func DecodeDecimal(text []byte) ([]byte, error) {
	fields := bytes.Fields(text)
	out := make([]byte, len(fields))
	for i, tok := range fields {
		v, err := strconv.ParseUint(string(tok), 10, 8)
		if err != nil {
			return nil, &pkg.InputError{Token: i + 1, Text: string(tok), Err: pkg.ErrMalformedDecimal}
		}
		out[i] = byte(v)
	}
	return out, nil
}
