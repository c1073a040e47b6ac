package format

import (
	"io"

	"github.com/ardnew/spicat/pkg"
)

// Flusher is implemented by sinks that buffer internally, such as
// *bufio.Writer.
type Flusher interface {
	Flush() error
}

// Renderer writes exchange responses to a sink in a fixed mode.
type Renderer struct {
	w    io.Writer
	mode Mode
	buf  []byte
}

// NewRenderer returns a renderer writing to w. mode must already be resolved.
func NewRenderer(w io.Writer, mode Mode) *Renderer {
	return &Renderer{w: w, mode: mode}
}

// Mode returns the rendering mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Render writes one response record and flushes the sink if it buffers, so
// each exchange becomes visible as soon as it completes. Raw records are the
// bytes alone; Hex and Decimal records are one line each.
func (r *Renderer) Render(b []byte) error {
	r.buf = r.buf[:0]
	switch r.mode {
	case Raw:
		r.buf = append(r.buf, b...)
	case Hex:
		r.buf = append(AppendHex(r.buf, b), '\n')
	case Decimal:
		r.buf = append(AppendDecimal(r.buf, b), '\n')
	default:
		return &pkg.ConfigError{Option: "output format", Value: r.mode, Err: pkg.ErrInvalidFormat}
	}

	if _, err := r.w.Write(r.buf); err != nil {
		return &pkg.OutputError{Err: err}
	}
	if f, ok := r.w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return &pkg.OutputError{Err: err}
		}
	}
	return nil
}
