package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ardnew/spicat/bus"
)

// flag names
const (
	flagIn          = "in"
	flagOut         = "out"
	flagSpeed       = "speed"
	flagRepeat      = "repeat"
	flagFormat      = "format"
	flagInputFormat = "input-format"
	flagMode        = "mode"
	flagChipSelect  = "chip-select"
	flagBits        = "bits"
	flagLSBFirst    = "lsb-first"
	flagPreDelay    = "pre-delay"
	flagDryRun      = "dry-run"
	flagList        = "list"
	flagVerbose     = "verbose"
	flagLogJSON     = "log-json"
	flagCPUProfile  = "cpu-profile"
	flagMemProfile  = "mem-profile"
)

func newApp(env environment) *cli.App {
	// -v is taken by --verbose
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}

	app := cli.NewApp()
	app.Name = "spicat"
	app.Usage = "perform full-duplex SPI transactions"
	app.UsageText = "spicat [options] SPIDEV"
	app.Version = version
	app.Writer = env.stdout
	app.ErrWriter = env.stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  flagIn + ", i",
			Value: "-",
			Usage: "read input from `PATH`, or - for standard input",
		},
		cli.StringFlag{
			Name:  flagOut + ", o",
			Value: "-",
			Usage: "write output to `PATH`, or - for standard output",
		},
		cli.UintFlag{
			Name:   flagSpeed + ", s",
			Value:  bus.DefaultSpeed,
			Usage:  "clock speed in `HZ`",
			EnvVar: "SPICAT_SPEED",
		},
		cli.UintFlag{
			Name:   flagRepeat + ", r",
			Value:  1,
			Usage:  "repeat the transaction `COUNT` times",
			EnvVar: "SPICAT_REPEAT",
		},
		cli.StringFlag{
			Name:   flagFormat + ", f",
			Value:  "auto",
			Usage:  "output `FORMAT`: raw, hex[adecimal], dec[imal] or auto (hex on a terminal, raw otherwise)",
			EnvVar: "SPICAT_FORMAT",
		},
		cli.StringFlag{
			Name:   flagInputFormat,
			Value:  "auto",
			Usage:  "input `FORMAT`: raw, hex[adecimal], dec[imal] or auto (hex from a terminal, raw otherwise)",
			EnvVar: "SPICAT_INPUT_FORMAT",
		},
		cli.StringFlag{
			Name:   flagMode,
			Value:  "0",
			Usage:  "SPI `MODE`: 0, 1, 2 or 3",
			EnvVar: "SPICAT_MODE",
		},
		cli.StringFlag{
			Name:  flagChipSelect,
			Value: bus.ChipSelectActiveLow.String(),
			Usage: "chip select `POLICY`: active-low, active-high or disabled",
		},
		cli.UintFlag{
			Name:  flagBits,
			Value: bus.DefaultBitsPerWord,
			Usage: "bits per word `N`",
		},
		cli.BoolFlag{
			Name:  flagLSBFirst,
			Usage: "send the least significant bit first",
		},
		cli.UintFlag{
			Name:  flagPreDelay,
			Usage: "delay in `MICROSECONDS` after asserting chip select, before sending data",
		},
		cli.BoolFlag{
			Name:  flagDryRun,
			Usage: "exchange with an in-memory loopback instead of SPIDEV",
		},
		cli.BoolFlag{
			Name:  flagList,
			Usage: "list spidev devices and exit",
		},
		cli.BoolFlag{
			Name:  flagVerbose + ", v",
			Usage: "log debug diagnostics to standard error",
		},
		cli.BoolFlag{
			Name:  flagLogJSON,
			Usage: "log diagnostics as JSON",
		},
		cli.StringFlag{
			Name:   flagCPUProfile,
			Usage:  "write a CPU profile to `PATH` (needs -tags profile)",
			Hidden: true,
		},
		cli.StringFlag{
			Name:   flagMemProfile,
			Usage:  "write a heap profile to `PATH` (needs -tags profile)",
			Hidden: true,
		},
	}

	app.Action = func(c *cli.Context) error {
		opts, err := parseOptions(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, opts, env)
	}

	return app
}

// runApp runs app with options allowed on either side of the device path.
func runApp(app *cli.App, args []string) error {
	return app.Run(permuteArgs(app.Flags, args))
}

// permuteArgs moves every option in args[1:], with its value, ahead of the
// positional arguments, since cli stops parsing options at the first
// positional. Everything after "--" stays positional.
func permuteArgs(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		value := true
		switch f.(type) {
		case cli.BoolFlag, cli.BoolTFlag:
			value = false
		}
		for _, name := range strings.Split(f.GetName(), ",") {
			takesValue[strings.TrimSpace(name)] = value
		}
	}

	opts := []string{args[0]}
	var positional, rest []string
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = args[i+1:]
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		opts = append(opts, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue[name] && i+1 < len(args) {
			i++
			opts = append(opts, args[i])
		}
	}
	if rest != nil {
		opts = append(opts, "--")
	}
	opts = append(opts, positional...)
	return append(opts, rest...)
}
