// Package sink provides line-oriented output collaborators. A Sink accepts a
// piece of text together with an indentation count and the number of line
// breaks to emit before it. Sinks are observational: nothing written to a
// sink ever influences a search.
package sink

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Sink receives formatted output.
type Sink interface {
	// Line writes breaks line breaks, then indent units of indentation, then
	// text. No trailing line break is written.
	Line(text string, indent, breaks int)
}

// Func adapts a function to a Sink.
type Func func(text string, indent, breaks int)

// Line implements Sink.
func (f Func) Line(text string, indent, breaks int) {
	f(text, indent, breaks)
}

// Discard is a Sink that drops everything.
var Discard Sink = Func(func(string, int, int) {})

// Writer writes lines to an io.Writer. Write errors are ignored, like a
// display that has gone away.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	unit   string
	wroteN int
}

// NewWriter returns a Writer that indents with one space per unit.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, unit: " "}
}

// WithIndentUnit sets the string written once per indentation unit.
func (w *Writer) WithIndentUnit(unit string) *Writer {
	w.unit = unit
	return w
}

// Line implements Sink.
func (w *Writer) Line(text string, indent, breaks int) {
	var b strings.Builder
	for range max(breaks, 0) {
		b.WriteByte('\n')
	}
	for range max(indent, 0) {
		b.WriteString(w.unit)
	}
	b.WriteString(text)

	w.mu.Lock()
	defer w.mu.Unlock()
	n, _ := io.WriteString(w.w, b.String())
	w.wroteN += n
}

// Close terminates the last line, if anything was written.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wroteN == 0 {
		return nil
	}
	_, err := io.WriteString(w.w, "\n")
	return err
}

// Slog forwards lines to a structured logger, one record per line.
type Slog struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Line implements Sink.
func (s Slog) Line(text string, indent, breaks int) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), s.Level, text, "indent", indent, "breaks", breaks)
}

// Multi fans each line out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return Func(func(text string, indent, breaks int) {
		for _, s := range sinks {
			s.Line(text, indent, breaks)
		}
	})
}
