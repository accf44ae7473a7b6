package evaluator

import (
	"reflect"
	"testing"

	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
)

func TestEnvironmentPutRetrieve(t *testing.T) {
	env := NewEnvironment()

	if got := env.Put("a", &Integer{Value: 3}); got.Inspect() != "3" {
		t.Errorf("Put returned %s, want 3", got.Inspect())
	}

	val, err := env.Retrieve("a")
	if err != nil {
		t.Fatalf("Retrieve(a): %v", err)
	}
	if val.Inspect() != "3" {
		t.Errorf("Retrieve(a) = %s, want 3", val.Inspect())
	}

	env.Put("a", &Integer{Value: 4})
	val, _ = env.Retrieve("a")
	if val.Inspect() != "4" {
		t.Errorf("last write should win, got %s", val.Inspect())
	}
}

func TestEnvironmentRetrieveMissing(t *testing.T) {
	env := NewEnvironment()

	_, err := env.Retrieve("missing")
	if !oerrors.IsClass(err, oerrors.ClassUndefined) {
		t.Errorf("error = %v, want undefined class", err)
	}
}

func TestEnvironmentTopFrameOnly(t *testing.T) {
	env := NewEnvironment()
	env.Put("global", &Integer{Value: 1})

	env.Push(map[string]Object{"local": &Integer{Value: 2}})
	if _, err := env.Retrieve("global"); err == nil {
		t.Errorf("global binding visible from a frame that did not copy it")
	}
	if _, err := env.Retrieve("local"); err != nil {
		t.Errorf("Retrieve(local): %v", err)
	}

	env.Pop()
	if _, err := env.Retrieve("local"); err == nil {
		t.Errorf("local binding survived Pop")
	}
}

func TestEnvironmentPushCopiesBase(t *testing.T) {
	env := NewEnvironment()
	base := map[string]Object{"x": &Integer{Value: 1}}

	env.Push(base)
	env.Put("x", &Integer{Value: 2})
	env.Put("y", &Integer{Value: 3})

	if base["x"].Inspect() != "1" {
		t.Errorf("Push did not copy base: x = %s", base["x"].Inspect())
	}
	if _, ok := base["y"]; ok {
		t.Errorf("Push did not copy base: y leaked into it")
	}
}

func TestEnvironmentSnapshot(t *testing.T) {
	env := NewEnvironment()
	coll := &Collection{Elements: []Object{&Integer{Value: 1}}}
	env.Put("a", coll)
	env.Put("n", &Integer{Value: 1})

	snap := env.Snapshot()
	env.Put("n", &Integer{Value: 2})
	env.Put("later", TRUE)

	if snap["n"].Inspect() != "1" {
		t.Errorf("snapshot changed with frame: n = %s", snap["n"].Inspect())
	}
	if _, ok := snap["later"]; ok {
		t.Errorf("snapshot picked up a later binding")
	}

	// collections are shared, not copied
	coll.Put(&Integer{Value: 9}, 0)
	if snap["a"].Inspect() != "[9]" {
		t.Errorf("snapshot collection = %s, want [9]", snap["a"].Inspect())
	}
}

func TestEnvironmentDepthAndNames(t *testing.T) {
	env := NewEnvironment()
	env.Put("b", TRUE)
	env.Put("a", FALSE)

	if env.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", env.Depth())
	}
	if !reflect.DeepEqual(env.Names(), []string{"a", "b"}) {
		t.Errorf("Names() = %v, want [a b]", env.Names())
	}

	env.Push(env.Snapshot())
	if env.Depth() != 2 {
		t.Errorf("Depth() = %d after Push, want 2", env.Depth())
	}
	env.Pop()
	if env.Depth() != 1 {
		t.Errorf("Depth() = %d after Pop, want 1", env.Depth())
	}
}

func TestEnvironmentPopGlobalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Pop of the global frame did not panic")
		}
	}()
	NewEnvironment().Pop()
}

func TestJoinValues(t *testing.T) {
	tests := []struct {
		values   []any
		expected string
	}{
		{nil, ""},
		{[]any{"a"}, "a"},
		{[]any{"a", 1, true}, "a 1 true"},
	}
	for _, tt := range tests {
		if got := joinValues(tt.values); got != tt.expected {
			t.Errorf("joinValues(%v) = %q, want %q", tt.values, got, tt.expected)
		}
	}
}
