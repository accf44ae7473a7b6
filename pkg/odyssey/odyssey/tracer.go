package odyssey

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
	"github.com/sambeau/odyssey/pkg/odyssey/evaluator"
)

// Trace formats.
const (
	TraceText = "text"
	TraceJSON = "json"
)

// TraceEntry describes one evaluated top-level statement.
type TraceEntry struct {
	Timestamp  string `json:"timestamp"`
	Statement  string `json:"statement"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorClass string `json:"error_class,omitempty"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`

	// ErrorDetail is the structured error (code, class, position, hints).
	ErrorDetail json.RawMessage `json:"error_detail,omitempty"`
}

// Tracer writes a TraceEntry per statement, as text or one JSON object per
// line.
type Tracer struct {
	mu     sync.Mutex
	output io.Writer
	format string
}

// NewTracer creates a tracer. An empty format means text.
func NewTracer(output io.Writer, format string) *Tracer {
	if format == "" {
		format = TraceText
	}
	return &Tracer{output: output, format: format}
}

// Trace records a statement, its value or error, and how long it took.
func (t *Tracer) Trace(stmt ast.Expression, result evaluator.Object, err error, start time.Time, duration time.Duration) {
	entry := TraceEntry{
		Timestamp:  start.Format(time.RFC3339),
		Statement:  stmt.String(),
		Duration:   duration.String(),
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
		if class, ok := oerrors.ClassOf(err); ok {
			entry.ErrorClass = string(class)
		}
		var oerr *oerrors.OdysseyError
		if errors.As(err, &oerr) {
			if detail, jerr := oerr.ToJSON(); jerr == nil {
				entry.ErrorDetail = detail
			}
		}
	} else if result != nil {
		entry.Result = result.Inspect()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == TraceJSON {
		t.writeJSON(entry)
	} else {
		t.writeText(entry)
	}
}

func (t *Tracer) writeJSON(entry TraceEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintf(t.output, "%s\n", data)
}

func (t *Tracer) writeText(entry TraceEntry) {
	outcome := "=> " + entry.Result
	if entry.Error != "" {
		outcome = "!! " + entry.Error
		if entry.ErrorClass != "" {
			outcome = "!! [" + entry.ErrorClass + "] " + entry.Error
		}
	}
	fmt.Fprintf(t.output, "%s %s %s %s\n",
		entry.Timestamp,
		entry.Statement,
		outcome,
		entry.Duration,
	)
}
