package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/ardnew/spicat/bus"
	"github.com/ardnew/spicat/pkg"
)

// Parameters are fixed for a whole run and passed to every exchange.
type Parameters struct {
	Speed    uint32        // Clock speed in Hz
	PreDelay time.Duration // Delay between chip-select and first clock; may be zero
	Repeat   uint          // Number of exchanges, at least 1
}

// DefaultParameters returns one exchange at bus.DefaultSpeed with no delay.
func DefaultParameters() Parameters {
	return Parameters{
		Speed:  bus.DefaultSpeed,
		Repeat: 1,
	}
}

// Validate returns a *pkg.ConfigError for a zero repeat count, a zero speed
// or a pre-delay the driver cannot carry.
func (p Parameters) Validate() error {
	if p.Repeat == 0 {
		return &pkg.ConfigError{Option: "repeat", Value: p.Repeat, Err: pkg.ErrInvalidRepeat}
	}
	if p.Speed == 0 {
		return &pkg.ConfigError{Option: "speed", Value: p.Speed, Err: pkg.ErrInvalidSpeed}
	}
	if p.PreDelay < 0 || p.PreDelay > bus.MaxPreDelay {
		return &pkg.ConfigError{Option: "pre-delay", Value: p.PreDelay, Err: pkg.ErrInvalidDelay}
	}
	return nil
}

// Sequence is the lazy, forward-only series of responses of one run. It is
// used like bufio.Scanner:
//
//	for seq.Next() {
//	    render(seq.Response())
//	}
//	if err := seq.Err(); err != nil {
//	    ...
//	}
//
// Each call to Next performs exactly one blocking exchange. Once Next has
// returned false the sequence is finished and cannot be restarted.
type Sequence struct {
	ctx     context.Context
	handle  bus.Handle
	payload []byte
	params  Parameters

	index    int
	response []byte
	err      error
	done     bool
}

// Run validates p and prepares a sequence of p.Repeat exchanges of payload
// against h. No exchange happens until the first call to Next, and none at
// all if validation fails.
func Run(ctx context.Context, h bus.Handle, payload []byte, p Parameters) (*Sequence, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []byte{}
	}
	return &Sequence{
		ctx:     ctx,
		handle:  h,
		payload: payload,
		params:  p,
	}, nil
}

// Next performs the next exchange. It returns false when all exchanges are
// complete or one has failed; Err distinguishes the two. The context is
// checked before each exchange, so cancellation never interrupts one midway.
func (s *Sequence) Next() bool {
	if s.done {
		return false
	}
	s.response = nil
	if uint(s.index) >= s.params.Repeat {
		s.done = true
		return false
	}

	n := s.index + 1
	if err := s.ctx.Err(); err != nil {
		return s.fail(n, err)
	}

	start := time.Now()
	rx, err := s.handle.Exchange(s.payload, s.params.Speed, s.params.PreDelay)
	if err != nil {
		return s.fail(n, err)
	}
	if len(rx) != len(s.payload) {
		return s.fail(n, fmt.Errorf("%w: sent %d bytes, received %d",
			pkg.ErrLengthMismatch, len(s.payload), len(rx)))
	}

	pkg.LogDebug(pkg.ComponentTransaction, "exchange complete",
		"exchange", n,
		"of", s.params.Repeat,
		"length", len(rx),
		"elapsed", time.Since(start))

	s.index = n
	s.response = rx
	return true
}

func (s *Sequence) fail(n int, err error) bool {
	pkg.LogDebug(pkg.ComponentTransaction, "exchange failed",
		"exchange", n,
		"of", s.params.Repeat,
		"error", err)
	s.err = &pkg.TransactionError{Exchange: n, Err: err}
	s.done = true
	return false
}

// Response returns the inbound buffer of the most recent successful
// exchange. The caller owns it. It is nil once the sequence has finished.
func (s *Sequence) Response() []byte {
	return s.response
}

// Index returns the 1-based number of the most recent successful exchange,
// which is also the count of completed exchanges.
func (s *Sequence) Index() int {
	return s.index
}

// Err returns the *pkg.TransactionError that stopped the sequence, or nil if
// every exchange completed.
func (s *Sequence) Err() error {
	return s.err
}

// Each runs every exchange and passes each response to yield before the
// next exchange starts. It stops at the first exchange or yield error and
// returns the number of responses yielded.
func Each(ctx context.Context, h bus.Handle, payload []byte, p Parameters, yield func([]byte) error) (int, error) {
	seq, err := Run(ctx, h, payload, p)
	if err != nil {
		return 0, err
	}

	yielded := 0
	for seq.Next() {
		if err := yield(seq.Response()); err != nil {
			return yielded, err
		}
		yielded++
	}
	return yielded, seq.Err()
}
