package serial

import (
	"io"
	"log/slog"
)

// LogSink is the far end of the SCC68070 UART transmit line. It buffers the
// printable bytes the BIOS sends and logs them a line at a time, optionally
// echoing each byte to a writer as it arrives.
type LogSink struct {
	logger *slog.Logger
	echo   io.Writer

	// total bytes accepted since the last reset
	count int

	// line buffer for readable output
	line []byte
}

type LogSinkOption func(*LogSink)

// WithEcho copies every printable transmitted byte to w as it arrives.
func WithEcho(w io.Writer) LogSinkOption { return func(s *LogSink) { s.echo = w } }

// WithLogger overrides the logger used for completed lines.
func WithLogger(l *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates a new logging serial sink.
func NewLogSink(opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Transmit accepts one byte from the UART transmit holding register.
// Control bytes terminate the current line; other non-printable bytes are dropped.
func (s *LogSink) Transmit(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		s.Flush()
		return
	}
	if !Printable(b) {
		return
	}
	s.count++
	s.line = append(s.line, b)
	if s.echo != nil {
		s.echo.Write([]byte{b})
	}
}

// Flush logs any partially received line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("uart", "line", string(s.line))
	s.line = s.line[:0]
}

// Count returns the number of printable bytes received since reset.
func (s *LogSink) Count() int {
	return s.count
}

// Pending returns the bytes of the line not yet flushed.
func (s *LogSink) Pending() string {
	return string(s.line)
}

func (s *LogSink) Reset() {
	s.count = 0
	s.line = s.line[:0]
}

// Printable reports whether b is in the printable ASCII range.
func Printable(b byte) bool {
	return b >= 0x20 && b < 0x7F
}
