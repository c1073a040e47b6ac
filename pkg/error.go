package pkg

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these (or an OS error) so
// callers can match with errors.Is.
var (
	// ErrMalformedHex indicates an input token that is not exactly two hex digits.
	ErrMalformedHex = errors.New("malformed hex")

	// ErrMalformedDecimal indicates an input token that is not a decimal byte value.
	ErrMalformedDecimal = errors.New("malformed decimal")

	// ErrInvalidRepeat indicates a repeat count of zero.
	ErrInvalidRepeat = errors.New("repeat count must be at least 1")

	// ErrInvalidSpeed indicates a clock speed of zero.
	ErrInvalidSpeed = errors.New("speed must be greater than 0 Hz")

	// ErrInvalidDelay indicates a pre-delay that does not fit the driver field.
	ErrInvalidDelay = errors.New("pre-delay out of range")

	// ErrInvalidMode indicates an SPI mode outside 0-3.
	ErrInvalidMode = errors.New("invalid SPI mode")

	// ErrInvalidChipSelect indicates an unknown chip-select policy.
	ErrInvalidChipSelect = errors.New("invalid chip select")

	// ErrInvalidBitsPerWord indicates an unsupported word size.
	ErrInvalidBitsPerWord = errors.New("invalid bits per word")

	// ErrInvalidFormat indicates an unknown or unusable encoding mode.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrLengthMismatch indicates a response whose length differs from the request.
	ErrLengthMismatch = errors.New("response length mismatch")

	// ErrClosed indicates use of a handle after Close.
	ErrClosed = errors.New("handle closed")

	// ErrNoDevice indicates that no device path was given.
	ErrNoDevice = errors.New("no spidev given")

	// ErrExtraArguments indicates positional arguments beyond the device path.
	ErrExtraArguments = errors.New("unexpected arguments")

	// ErrNotSupported indicates an unsupported operation or platform.
	ErrNotSupported = errors.New("not supported")
)

// InputError reports malformed encoded input or a failure reading it.
// Token is the 1-based index of the offending token, or 0 when the error is
// not tied to a token.
type InputError struct {
	Token int
	Text  string
	Err   error
}

func (e *InputError) Error() string {
	if e.Token > 0 {
		return fmt.Sprintf("input token %d %q: %v", e.Token, e.Text, e.Err)
	}
	return fmt.Sprintf("failed to read input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ConfigError reports an invalid option value.
type ConfigError struct {
	Option string
	Value  any
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("invalid %s %v: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeviceError reports a failure opening, configuring or driving a bus device.
type DeviceError struct {
	Path string
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// TransactionError reports a failed exchange. Exchange is 1-based.
type TransactionError struct {
	Exchange int
	Err      error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("SPI transaction %d failed: %v", e.Exchange, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// OutputError reports a failure writing or flushing rendered output.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write to output stream: %v", e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
