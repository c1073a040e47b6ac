package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/bus/loopback"
	"github.com/ardnew/spicat/bus/spidev"
	"github.com/ardnew/spicat/format"
	"github.com/ardnew/spicat/pkg"
	"github.com/ardnew/spicat/pkg/prof"
	"github.com/ardnew/spicat/transaction"
)

// stdio is the path naming the standard input or output stream.
const stdio = "-"

// environment is everything run touches outside its options.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	isTerminal func(fd uintptr) bool
	open       func(path string, cfg bus.Config) (bus.Handle, error)
	scan       func() ([]spidev.Info, error)
}

func defaultEnvironment() environment {
	return environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func(fd uintptr) bool {
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		open: func(path string, cfg bus.Config) (bus.Handle, error) {
			return spidev.Open(path, cfg)
		},
		scan: spidev.Scan,
	}
}

// terminal reports whether stream is attached to a terminal. Streams without
// a file descriptor never are.
func (env environment) terminal(stream any) bool {
	f, ok := stream.(interface{ Fd() uintptr })
	if !ok || env.isTerminal == nil {
		return false
	}
	return env.isTerminal(f.Fd())
}

func configureLogging(opts options, env environment) {
	pkg.SetLogOutput(env.stderr)
	if opts.logJSON {
		pkg.SetLogFormat(pkg.LogFormatJSON)
	} else {
		pkg.SetLogFormat(pkg.LogFormatText)
	}
	if opts.verbose {
		pkg.SetLogLevel(slog.LevelDebug)
	} else {
		pkg.SetLogLevel(slog.LevelWarn)
	}
}

func run(ctx context.Context, opts options, env environment) (err error) {
	configureLogging(opts, env)

	if opts.list {
		return list(env)
	}

	if err := opts.validate(); err != nil {
		return err
	}

	payload, err := collect(opts, env)
	if err != nil {
		return err
	}

	h, err := openHandle(opts, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			pkg.LogWarn(pkg.ComponentCLI, "failed to close device", "error", cerr)
		}
	}()

	// the output file is only created once the device is open
	out, closeOut, err := openOutput(opts.out, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = &pkg.OutputError{Err: cerr}
		}
	}()

	outMode := format.Resolve(opts.format, env.terminal(out))
	w := bufio.NewWriter(out)
	renderer := format.NewRenderer(w, outMode)

	if stop := startProfiling(opts); stop != nil {
		defer stop()
	}

	pkg.LogInfo(pkg.ComponentCLI, "starting transactions",
		"device", opts.device,
		"speed", opts.params.Speed,
		"repeat", opts.params.Repeat,
		"pre_delay", opts.params.PreDelay,
		"length", len(payload),
		"output", outMode.String())

	n, err := transaction.Each(ctx, h, payload, opts.params, renderer.Render)
	pkg.LogInfo(pkg.ComponentCLI, "transactions finished", "completed", n)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return &pkg.OutputError{Err: err}
	}
	return nil
}

// collect reads and decodes the whole input before the device is opened, so
// malformed input never reaches the bus.
func collect(opts options, env environment) ([]byte, error) {
	var in io.Reader = env.stdin
	if opts.in != stdio {
		f, err := os.Open(opts.in)
		if err != nil {
			return nil, &pkg.InputError{Err: err}
		}
		defer f.Close()
		in = f
	}
	mode := format.Resolve(opts.inputFormat, env.terminal(in))
	return format.Collect(in, mode)
}

func openOutput(path string, env environment) (io.Writer, func() error, error) {
	if path == stdio {
		return env.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &pkg.OutputError{Err: err}
	}
	return f, f.Close, nil
}

func openHandle(opts options, env environment) (bus.Handle, error) {
	if opts.dryRun {
		pkg.LogDebug(pkg.ComponentCLI, "using loopback handle")
		return loopback.New(), nil
	}
	return env.open(opts.device, opts.config)
}

// startProfiling starts any profiles requested and returns the function that
// finishes them, or nil.
func startProfiling(opts options) func() {
	if opts.cpuProfile == "" && opts.memProfile == "" {
		return nil
	}
	if !prof.Enabled {
		pkg.LogWarn(pkg.ComponentCLI, "profiling requested but not compiled in; rebuild with -tags profile")
		return nil
	}
	if opts.cpuProfile != "" {
		if err := prof.StartCPU(opts.cpuProfile); err != nil {
			pkg.LogWarn(pkg.ComponentCLI, "failed to start CPU profile", "path", opts.cpuProfile, "error", err)
		}
	}
	return func() {
		prof.StopCPU()
		if opts.memProfile != "" {
			if err := prof.Write(prof.ProfileHeap, opts.memProfile); err != nil {
				pkg.LogWarn(pkg.ComponentCLI, "failed to write heap profile", "path", opts.memProfile, "error", err)
			}
		}
	}
}

func list(env environment) error {
	devices, err := env.scan()
	if errors.Is(err, os.ErrNotExist) {
		pkg.LogDebug(pkg.ComponentCLI, "no spidev class in sysfs")
		return nil
	}
	if err != nil {
		return &pkg.DeviceError{Path: spidev.SysfsClassPath, Op: "failed to list devices", Err: err}
	}

	tw := tabwriter.NewWriter(env.stdout, 0, 8, 2, ' ', 0)
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\tbus %d\tcs %d\t%s\t%s\n", d.Path, d.Bus, d.ChipSelect, d.Driver, d.Modalias)
	}
	if err := tw.Flush(); err != nil {
		return &pkg.OutputError{Err: err}
	}
	return nil
}
