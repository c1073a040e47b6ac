package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/bus/loopback"
	"github.com/ardnew/spicat/bus/mocks"
	"github.com/ardnew/spicat/bus/spidev"
	"github.com/ardnew/spicat/pkg"
	"github.com/ardnew/spicat/transaction"
)

// testEnv is an environment backed by in-memory streams. Every open is
// recorded and served by handle.
type testEnv struct {
	stdin  *bytes.Buffer
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	handle bus.Handle
	opened []string
	config bus.Config
}

func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	t.Cleanup(func() {
		pkg.SetLogLevel(slog.LevelWarn)
		pkg.SetLogFormat(pkg.LogFormatText)
		pkg.SetLogOutput(os.Stderr)
	})
	return &testEnv{
		stdin:  bytes.NewBufferString(input),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		handle: loopback.New(loopback.WithRecording()),
	}
}

func (e *testEnv) environment() environment {
	return environment{
		stdin:      e.stdin,
		stdout:     e.stdout,
		stderr:     e.stderr,
		isTerminal: func(uintptr) bool { return false },
		open: func(path string, cfg bus.Config) (bus.Handle, error) {
			e.opened = append(e.opened, path)
			e.config = cfg
			return e.handle, nil
		},
		scan: func() ([]spidev.Info, error) { return nil, nil },
	}
}

func (e *testEnv) run(args ...string) error {
	app := newApp(e.environment())
	return runApp(app, append([]string{"spicat"}, args...))
}

// ttyStream is a stream that claims a file descriptor.
type ttyStream struct {
	bytes.Buffer
}

func (*ttyStream) Fd() uintptr { return 42 }

func TestHelloThereAsHex(t *testing.T) {
	env := newTestEnv(t, "Hello there!")

	err := env.run("--speed", "10000000", "--format", "hex", "/dev/spidev1.0")
	require.NoError(t, err)

	assert.Equal(t, "48 65 6c 6c 6f 20 74 68 65 72 65 21\n", env.stdout.String())
	assert.Equal(t, []string{"/dev/spidev1.0"}, env.opened)
	assert.Equal(t, uint32(10000000), env.config.MaxSpeed)

	recs := env.handle.(*loopback.Handle).Exchanges()
	require.Len(t, recs, 1)
	assert.Equal(t, []byte("Hello there!"), recs[0].Tx)
	assert.Equal(t, uint32(10000000), recs[0].Speed)
	assert.True(t, env.handle.(*loopback.Handle).Closed())
}

func TestOptionsAfterDevice(t *testing.T) {
	env := newTestEnv(t, "Hello")

	err := env.run("/dev/spidev1.0", "--speed", "10000000", "--format", "hex", "-r", "3")
	require.NoError(t, err)

	assert.Equal(t, "48 65 6c 6c 6f\n48 65 6c 6c 6f\n48 65 6c 6c 6f\n", env.stdout.String())
	assert.Equal(t, []string{"/dev/spidev1.0"}, env.opened)
	assert.Equal(t, uint32(10000000), env.config.MaxSpeed)

	recs := env.handle.(*loopback.Handle).Exchanges()
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, uint32(10000000), rec.Speed)
	}
}

func TestOptionsAroundDevice(t *testing.T) {
	env := newTestEnv(t, "\x01")

	require.NoError(t, env.run("-f", "hex", "/dev/spidev1.0", "--lsb-first", "--mode=2"))
	assert.Equal(t, "01\n", env.stdout.String())
	assert.True(t, env.config.LSBFirst)
	assert.Equal(t, bus.Mode2, env.config.Mode)
}

func TestExtraArgumentsRejected(t *testing.T) {
	env := newTestEnv(t, "\x01")

	err := env.run("/dev/spidev1.0", "/dev/spidev1.1", "-f", "hex")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrExtraArguments)
	assert.Contains(t, err.Error(), "/dev/spidev1.1")

	var cfgErr *pkg.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, env.opened)
	assert.Empty(t, env.stdout.String())
}

func TestPermuteArgs(t *testing.T) {
	flags := newApp(environment{}).Flags

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "already ordered",
			args: []string{"spicat", "-s", "10", "/dev/spidev0.0"},
			want: []string{"spicat", "-s", "10", "/dev/spidev0.0"},
		},
		{
			name: "value options after device",
			args: []string{"spicat", "/dev/spidev0.0", "--speed", "10", "-r", "3"},
			want: []string{"spicat", "--speed", "10", "-r", "3", "/dev/spidev0.0"},
		},
		{
			name: "bool options take no value",
			args: []string{"spicat", "/dev/spidev0.0", "--lsb-first", "-v", "x"},
			want: []string{"spicat", "--lsb-first", "-v", "/dev/spidev0.0", "x"},
		},
		{
			name: "inline value",
			args: []string{"spicat", "/dev/spidev0.0", "--format=hex"},
			want: []string{"spicat", "--format=hex", "/dev/spidev0.0"},
		},
		{
			name: "stdio value is not positional",
			args: []string{"spicat", "/dev/spidev0.0", "-i", "-"},
			want: []string{"spicat", "-i", "-", "/dev/spidev0.0"},
		},
		{
			name: "terminator",
			args: []string{"spicat", "/dev/spidev0.0", "--", "-r"},
			want: []string{"spicat", "--", "/dev/spidev0.0", "-r"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permuteArgs(flags, tt.args))
		})
	}
}

func TestRawPassthroughWhenNotTerminal(t *testing.T) {
	env := newTestEnv(t, "\x00\xff\x10")

	require.NoError(t, env.run("--repeat", "2", "/dev/spidev0.0"))
	assert.Equal(t, "\x00\xff\x10\x00\xff\x10", env.stdout.String())
}

func TestTerminalDefaultsToHex(t *testing.T) {
	env := newTestEnv(t, "")
	in := &ttyStream{}
	in.WriteString("de ad be ef\n")
	out := &ttyStream{}

	e := env.environment()
	e.stdin = in
	e.stdout = out
	e.isTerminal = func(fd uintptr) bool { return fd == 42 }

	app := newApp(e)
	require.NoError(t, runApp(app, []string{"spicat", "/dev/spidev0.0"}))

	assert.Equal(t, "de ad be ef\n", out.String())
	recs := env.handle.(*loopback.Handle).Exchanges()
	require.Len(t, recs, 1)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, recs[0].Tx)
}

func TestDecimalFormats(t *testing.T) {
	env := newTestEnv(t, "1 2 255")

	require.NoError(t, env.run("--input-format", "dec", "--format", "decimal", "/dev/spidev0.0"))
	assert.Equal(t, "1 2 255\n", env.stdout.String())
}

func TestMalformedInputNeverOpensDevice(t *testing.T) {
	env := newTestEnv(t, "4g 65")

	err := env.run("--input-format", "hex", "/dev/spidev0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrMalformedHex)

	var inErr *pkg.InputError
	require.ErrorAs(t, err, &inErr)
	assert.Equal(t, 1, inErr.Token)

	assert.Empty(t, env.opened)
	assert.Empty(t, env.stdout.String())
}

func TestEmptyInput(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"hex", "hex", "\n\n"},
		{"raw", "raw", ""},
		{"decimal", "dec", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			require.NoError(t, env.run("-r", "2", "-f", tt.format, "/dev/spidev0.0"))
			assert.Equal(t, tt.want, env.stdout.String())
			assert.Len(t, env.handle.(*loopback.Handle).Exchanges(), 2)
		})
	}
}

func TestFailureStopsRepeats(t *testing.T) {
	env := newTestEnv(t, "\x01\x02")
	boom := errors.New("boom")
	env.handle = loopback.New(loopback.WithRecording(), loopback.WithFailure(2, boom))

	err := env.run("-r", "3", "-f", "hex", "/dev/spidev0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var txErr *pkg.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, 2, txErr.Exchange)

	assert.Equal(t, "01 02\n", env.stdout.String())
	assert.Len(t, env.handle.(*loopback.Handle).Exchanges(), 2)
	assert.True(t, env.handle.(*loopback.Handle).Closed())
}

func TestInvalidOptionsTouchNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"zero repeat", []string{"-r", "0", "/dev/spidev0.0"}, pkg.ErrInvalidRepeat},
		{"zero speed", []string{"-s", "0", "/dev/spidev0.0"}, pkg.ErrInvalidSpeed},
		{"long delay", []string{"--pre-delay", "65536", "/dev/spidev0.0"}, pkg.ErrInvalidDelay},
		{"bad mode", []string{"--mode", "4", "/dev/spidev0.0"}, pkg.ErrInvalidMode},
		{"bad chip select", []string{"--chip-select", "sideways", "/dev/spidev0.0"}, pkg.ErrInvalidChipSelect},
		{"zero bits", []string{"--bits", "0", "/dev/spidev0.0"}, pkg.ErrInvalidBitsPerWord},
		{"bad format", []string{"-f", "octal", "/dev/spidev0.0"}, pkg.ErrInvalidFormat},
		{"bad input format", []string{"--input-format", "base64", "/dev/spidev0.0"}, pkg.ErrInvalidFormat},
		{"no device", nil, pkg.ErrNoDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "\x01")
			err := env.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var cfgErr *pkg.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
			assert.Empty(t, env.opened)
			assert.Empty(t, env.stdout.String())
			assert.Equal(t, 1, env.stdin.Len(), "input must not be read")
		})
	}
}

func TestDeviceSettingsReachOpen(t *testing.T) {
	env := newTestEnv(t, "\x01")

	require.NoError(t, env.run(
		"--mode", "3",
		"--chip-select", "high",
		"--bits", "16",
		"--lsb-first",
		"-s", "250000",
		"/dev/spidev2.1"))

	assert.Equal(t, bus.Config{
		Mode:        bus.Mode3,
		ChipSelect:  bus.ChipSelectActiveHigh,
		BitsPerWord: 16,
		LSBFirst:    true,
		MaxSpeed:    250000,
	}, env.config)
}

func TestParametersReachHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := mocks.NewMockHandle(ctrl)

	gomock.InOrder(
		h.EXPECT().Exchange([]byte{0xca, 0xfe}, uint32(500000), 10*time.Microsecond).
			Return([]byte{0x12, 0x34}, nil).Times(2),
		h.EXPECT().Close().Return(nil),
	)

	env := newTestEnv(t, "\xca\xfe")
	env.handle = h

	require.NoError(t, env.run("-s", "500000", "--pre-delay", "10", "-r", "2", "-f", "hex", "/dev/spidev0.0"))
	assert.Equal(t, "12 34\n12 34\n", env.stdout.String())
}

func TestDryRunNeedsNoDevice(t *testing.T) {
	env := newTestEnv(t, "\x05")

	require.NoError(t, env.run("--dry-run", "-f", "hex"))
	assert.Equal(t, "05\n", env.stdout.String())
	assert.Empty(t, env.opened)
}

func TestFileStreams(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(in, []byte("0a 0b\n"), 0o600))

	env := newTestEnv(t, "")
	require.NoError(t, env.run("-i", in, "--input-format", "hex", "-o", out, "/dev/spidev0.0"))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b}, got)
	assert.Empty(t, env.stdout.String())
}

func TestMissingInputFile(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("-i", filepath.Join(t.TempDir(), "absent"), "/dev/spidev0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var inErr *pkg.InputError
	assert.ErrorAs(t, err, &inErr)
	assert.Empty(t, env.opened)
}

func TestOpenFailure(t *testing.T) {
	env := newTestEnv(t, "\x01")
	e := env.environment()
	e.open = func(path string, _ bus.Config) (bus.Handle, error) {
		return nil, &pkg.DeviceError{Path: path, Op: "failed to open", Err: os.ErrNotExist}
	}

	err := runApp(newApp(e), []string{"spicat", "/dev/spidev9.9"})
	require.Error(t, err)
	assert.EqualError(t, err, "failed to open /dev/spidev9.9: file does not exist")
}

func TestOpenFailureKeepsOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "capture.bin")
	require.NoError(t, os.WriteFile(out, []byte("previous capture"), 0o600))

	env := newTestEnv(t, "\x01")
	e := env.environment()
	e.open = func(path string, _ bus.Config) (bus.Handle, error) {
		return nil, &pkg.DeviceError{Path: path, Op: "failed to open", Err: os.ErrPermission}
	}

	err := runApp(newApp(e), []string{"spicat", "-o", out, "/dev/spidev0.0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous capture", string(got))
}

func TestCancelledBeforeFirstExchange(t *testing.T) {
	env := newTestEnv(t, "\x01")
	opts := options{
		device: "/dev/spidev0.0",
		in:     stdio,
		out:    stdio,
		params: transaction.DefaultParameters(),
		config: bus.DefaultConfig(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, opts, env.environment())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, env.handle.(*loopback.Handle).Exchanges())
	assert.True(t, env.handle.(*loopback.Handle).Closed())
}

func TestList(t *testing.T) {
	env := newTestEnv(t, "")
	e := env.environment()
	e.scan = func() ([]spidev.Info, error) {
		return []spidev.Info{
			{Name: "spidev0.0", Path: "/dev/spidev0.0", Bus: 0, ChipSelect: 0, Driver: "spidev", Modalias: "spi:spidev"},
			{Name: "spidev1.2", Path: "/dev/spidev1.2", Bus: 1, ChipSelect: 2},
		}, nil
	}

	require.NoError(t, runApp(newApp(e), []string{"spicat", "--list"}))
	out := env.stdout.String()
	assert.Contains(t, out, "/dev/spidev0.0")
	assert.Contains(t, out, "spi:spidev")
	assert.Contains(t, out, "/dev/spidev1.2")
	assert.Empty(t, env.opened)
}

func TestListWithoutSpidevClass(t *testing.T) {
	env := newTestEnv(t, "")
	e := env.environment()
	e.scan = func() ([]spidev.Info, error) {
		return nil, &os.PathError{Op: "open", Path: spidev.SysfsClassPath, Err: os.ErrNotExist}
	}

	require.NoError(t, runApp(newApp(e), []string{"spicat", "--list"}))
	assert.Empty(t, env.stdout.String())
}

func TestVerboseLogsToStderr(t *testing.T) {
	env := newTestEnv(t, "\x01")

	require.NoError(t, env.run("-v", "--log-json", "--dry-run"))
	assert.Contains(t, env.stderr.String(), `"component":"cli"`)
}

