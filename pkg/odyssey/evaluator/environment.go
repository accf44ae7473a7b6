package evaluator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
)

// Logger interface for print() output
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	fmt.Print(joinValues(values))
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	fmt.Println(joinValues(values))
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Environment is a stack of frames. Lookups and writes only ever touch the
// top frame; there is no chain to enclosing frames. The bottom (global)
// frame is created with the environment and is never popped.
type Environment struct {
	frames []map[string]Object
	Logger Logger // receives print() output
}

// NewEnvironment creates an environment holding one empty global frame.
func NewEnvironment() *Environment {
	return &Environment{
		frames: []map[string]Object{make(map[string]Object)},
		Logger: DefaultLogger,
	}
}

func (e *Environment) top() map[string]Object {
	return e.frames[len(e.frames)-1]
}

// Put binds name in the top frame and returns the value.
func (e *Environment) Put(name string, val Object) Object {
	e.top()[name] = val
	return val
}

// Retrieve looks name up in the top frame. Presence is decided by map
// membership alone, so every bound value is found whatever it holds.
func (e *Environment) Retrieve(name string) (Object, error) {
	if val, ok := e.top()[name]; ok {
		return val, nil
	}
	return nil, oerrors.NewUndefinedIdentifier(name, e.Names())
}

// Push makes a shallow copy of base the new top frame.
func (e *Environment) Push(base map[string]Object) {
	frame := make(map[string]Object, len(base))
	maps.Copy(frame, base)
	e.frames = append(e.frames, frame)
}

// Pop discards the top frame. Popping the global frame is a programming
// error and panics.
func (e *Environment) Pop() {
	if len(e.frames) == 1 {
		panic("evaluator: pop of global frame")
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
}

// Snapshot returns a shallow copy of the top frame. Collections and hashes
// in the copy are the same values as in the frame.
func (e *Environment) Snapshot() map[string]Object {
	return maps.Clone(e.top())
}

// Depth is the number of frames, 1 when no call is in progress.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Names returns the names bound in the top frame, sorted.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.top()))
}
