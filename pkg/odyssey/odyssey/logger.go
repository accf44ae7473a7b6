package odyssey

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/odyssey/pkg/odyssey/evaluator"
)

// Logger receives print() output.
type Logger = evaluator.Logger

// StdoutLogger returns the logger the CLI and REPL use.
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Log(values ...any) {
	fmt.Fprint(l.w, joinLogValues(values))
}

func (l *writerLogger) LogLine(values ...any) {
	fmt.Fprintln(l.w, joinLogValues(values))
}

// WriterLogger returns a logger that writes to w.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// BufferedLogger keeps print() output in memory. It is safe for concurrent
// use, although an Interpreter is not.
type BufferedLogger struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
}

// NewBufferedLogger creates an empty buffered logger.
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinLogValues(values))
}

// LogLine completes the pending partial line, if any.
func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.pending.String()+joinLogValues(values))
	l.pending.Reset()
}

// Lines returns a copy of the completed lines.
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// String returns every line followed by a newline, then any partial line.
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Reset discards everything captured so far.
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.pending.Reset()
}

type nullLogger struct{}

func (nullLogger) Log(values ...any)     {}
func (nullLogger) LogLine(values ...any) {}

// NullLogger returns a logger that discards everything.
func NullLogger() Logger {
	return nullLogger{}
}

func joinLogValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
