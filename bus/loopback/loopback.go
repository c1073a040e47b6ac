package loopback

import (
	"time"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/pkg"
)

// Responder computes the MISO bytes for one exchange. The returned slice
// must have the same length as tx.
type Responder func(tx []byte) []byte

// Echo returns a copy of tx, as if MOSI were wired to MISO.
func Echo(tx []byte) []byte {
	rx := make([]byte, len(tx))
	copy(rx, tx)
	return rx
}

// Record describes one exchange seen by a Handle.
type Record struct {
	Tx       []byte
	Speed    uint32
	PreDelay time.Duration
}

// Handle is an in-memory bus.Handle. It is not safe for concurrent use.
type Handle struct {
	responder Responder
	failAt    int
	failErr   error
	record    bool
	records   []Record
	count     int
	closed    bool
}

var _ bus.Handle = (*Handle)(nil)

// Option configures a Handle.
type Option func(*Handle)

// WithResponder replaces the default Echo responder.
func WithResponder(r Responder) Option {
	return func(h *Handle) {
		h.responder = r
	}
}

// WithRecording keeps a Record of every exchange for [Handle.Exchanges].
// Memory grows with each exchange.
func WithRecording() Option {
	return func(h *Handle) {
		h.record = true
	}
}

// WithFailure makes the n-th exchange (1-based) fail with err. The failed
// exchange is still counted and recorded.
func WithFailure(n int, err error) Option {
	return func(h *Handle) {
		h.failAt = n
		h.failErr = err
	}
}

// New creates a loopback handle.
func New(opts ...Option) *Handle {
	h := &Handle{responder: Echo}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Exchange returns the responder's output, recording the request if
// recording is enabled.
func (h *Handle) Exchange(tx []byte, speed uint32, preDelay time.Duration) ([]byte, error) {
	if h.closed {
		return nil, &pkg.DeviceError{Op: "loopback exchange", Err: pkg.ErrClosed}
	}
	if preDelay < 0 || preDelay > bus.MaxPreDelay {
		return nil, &pkg.ConfigError{Option: "pre-delay", Value: preDelay, Err: pkg.ErrInvalidDelay}
	}

	h.count++
	if h.record {
		rec := Record{Tx: make([]byte, len(tx)), Speed: speed, PreDelay: preDelay}
		copy(rec.Tx, tx)
		h.records = append(h.records, rec)
	}

	n := h.count
	if n == h.failAt {
		pkg.LogDebug(pkg.ComponentLoopback, "injected failure", "exchange", n)
		return nil, &pkg.DeviceError{Op: "loopback exchange", Err: h.failErr}
	}

	rx := h.responder(tx)
	pkg.LogDebug(pkg.ComponentLoopback, "exchange",
		"exchange", n,
		"length", len(tx),
		"speed_hz", speed,
		"pre_delay", preDelay)
	return rx, nil
}

// Exchanges returns the exchanges recorded so far, in order. It is empty
// unless the handle was created with [WithRecording].
func (h *Handle) Exchanges() []Record {
	return h.records
}

// Count returns the number of exchanges attempted so far, including a
// failed one.
func (h *Handle) Count() int {
	return h.count
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	return h.closed
}

// Close marks the handle closed. Later exchanges fail with pkg.ErrClosed.
func (h *Handle) Close() error {
	h.closed = true
	return nil
}
