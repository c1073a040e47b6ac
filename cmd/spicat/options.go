package main

import (
	"math"
	"time"

	"github.com/urfave/cli"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/format"
	"github.com/ardnew/spicat/pkg"
	"github.com/ardnew/spicat/transaction"
)

// options is the validated command line.
type options struct {
	device      string
	in          string
	out         string
	params      transaction.Parameters
	config      bus.Config
	format      format.Mode
	inputFormat format.Mode
	dryRun      bool
	list        bool
	verbose     bool
	logJSON     bool
	cpuProfile  string
	memProfile  string
}

func parseOptions(c *cli.Context) (options, error) {
	opts := options{
		device:     c.Args().First(),
		in:         c.String(flagIn),
		out:        c.String(flagOut),
		dryRun:     c.Bool(flagDryRun),
		list:       c.Bool(flagList),
		verbose:    c.Bool(flagVerbose),
		logJSON:    c.Bool(flagLogJSON),
		cpuProfile: c.String(flagCPUProfile),
		memProfile: c.String(flagMemProfile),
	}

	if c.NArg() > 1 {
		return opts, &pkg.ConfigError{Option: "arguments", Value: []string(c.Args().Tail()), Err: pkg.ErrExtraArguments}
	}

	speed := c.Uint(flagSpeed)
	if speed == 0 || speed > math.MaxUint32 {
		return opts, &pkg.ConfigError{Option: "speed", Value: speed, Err: pkg.ErrInvalidSpeed}
	}

	delay := c.Uint(flagPreDelay)
	if delay > math.MaxUint16 {
		return opts, &pkg.ConfigError{Option: "pre-delay", Value: delay, Err: pkg.ErrInvalidDelay}
	}

	bits := c.Uint(flagBits)
	if bits == 0 || bits > bus.MaxBitsPerWord {
		return opts, &pkg.ConfigError{Option: "bits per word", Value: bits, Err: pkg.ErrInvalidBitsPerWord}
	}

	opts.params = transaction.Parameters{
		Speed:    uint32(speed),
		PreDelay: time.Duration(delay) * time.Microsecond,
		Repeat:   c.Uint(flagRepeat),
	}

	mode, err := bus.ParseMode(c.String(flagMode))
	if err != nil {
		return opts, err
	}
	cs, err := bus.ParseChipSelect(c.String(flagChipSelect))
	if err != nil {
		return opts, err
	}
	opts.config = bus.Config{
		Mode:        mode,
		ChipSelect:  cs,
		BitsPerWord: uint8(bits),
		LSBFirst:    c.Bool(flagLSBFirst),
		MaxSpeed:    uint32(speed),
	}

	if opts.format, err = format.ParseMode(c.String(flagFormat)); err != nil {
		return opts, err
	}
	if opts.inputFormat, err = format.ParseMode(c.String(flagInputFormat)); err != nil {
		return opts, err
	}

	if opts.device == "" && !opts.dryRun && !opts.list {
		return opts, &pkg.ConfigError{Option: "device", Err: pkg.ErrNoDevice}
	}

	return opts, nil
}

// validate checks everything that must hold before any stream or device is
// touched.
func (o options) validate() error {
	if err := o.params.Validate(); err != nil {
		return err
	}
	return o.config.Validate()
}
