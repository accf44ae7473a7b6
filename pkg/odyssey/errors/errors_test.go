package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestOdysseyError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *OdysseyError
		expected string
	}{
		{
			name:     "message only",
			err:      &OdysseyError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &OdysseyError{Message: "unexpected '+'", Line: 2, Column: 7},
			expected: "line 2, column 7: unexpected '+'",
		},
		{
			name:     "with file",
			err:      &OdysseyError{Message: "unterminated string", File: "fib.ody", Line: 3, Column: 1},
			expected: "fib.ody: line 3, column 1: unterminated string",
		},
		{
			name: "with hints",
			err: &OdysseyError{
				Message: "identifier not found: fob",
				Hints:   []string{"Did you mean `fib`?"},
			},
			expected: "identifier not found: fob\n  Did you mean `fib`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOdysseyError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *OdysseyError
		contains []string
	}{
		{
			name:     "parser error",
			err:      &OdysseyError{Class: ClassParse, Message: "unexpected ')'", Line: 1, Column: 4},
			contains: []string{"Parser error", "line 1, column 4", "unexpected ')'"},
		},
		{
			name:     "runtime error with file",
			err:      &OdysseyError{Class: ClassType, Message: "cannot negate string", File: "x.ody", Line: 2, Column: 1},
			contains: []string{"Runtime error", "in: x.ody", "at: line 2, column 1", "cannot negate string"},
		},
		{
			name:     "runtime error without position",
			err:      &OdysseyError{Class: ClassEmpty, Message: "nothing to evaluate"},
			contains: []string{"Runtime error:\n  nothing to evaluate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		code    string
		data    map[string]any
		class   ErrorClass
		message string
	}{
		{"PARSE-0001", map[string]any{"Expected": "')'", "Got": "]"}, ClassParse, "expected ')', got ']'"},
		{"UNDEF-0001", map[string]any{"Name": "a"}, ClassUndefined, "identifier not found: a"},
		{"TYPE-0001", map[string]any{"Operator": "<", "Left": "function", "Right": "integer"}, ClassType, "unsupported operand kinds for '<': function and integer"},
		{"INDEX-0001", map[string]any{"Kind": "string"}, ClassIndex, "index must be an integer, got string"},
		{"ARITY-0001", map[string]any{"Name": "f", "Want": 1, "Got": 2}, ClassArity, "'f' takes 1 argument, got 2"},
		{"ARITY-0001", map[string]any{"Name": "f", "Want": 2, "Got": 0}, ClassArity, "'f' takes 2 arguments, got 0"},
		{"EMPTY-0001", map[string]any{"What": "program"}, ClassEmpty, "nothing to evaluate: program has no statements"},
		{"OP-0001", nil, ClassOperator, "division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.class {
				t.Errorf("Class = %q, want %q", err.Class, tt.class)
			}
			if err.Message != tt.message {
				t.Errorf("Message = %q, want %q", err.Message, tt.message)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom"})
	if err.Message != "custom" {
		t.Errorf("Message = %q, want %q", err.Message, "custom")
	}
}

func TestWithPositionCopies(t *testing.T) {
	orig := New("OP-0001", nil)
	moved := orig.WithPosition(4, 2).WithFile("a.ody")

	if orig.Line != 0 || orig.File != "" {
		t.Fatalf("original was modified: %+v", orig)
	}
	if moved.Line != 4 || moved.Column != 2 || moved.File != "a.ody" {
		t.Errorf("unexpected position: %+v", moved)
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("UNDEF-0001", 1, 1, map[string]any{"Name": "x"})
	b, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(b, &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["class"] != "undefined" || decoded["code"] != "UNDEF-0001" {
		t.Errorf("unexpected JSON: %s", b)
	}
}

func TestIsClass(t *testing.T) {
	err := New("TYPE-0006", map[string]any{"Kind": "string"})
	wrapped := fmt.Errorf("running script: %w", err)

	if !IsClass(wrapped, ClassType) {
		t.Errorf("IsClass(wrapped, type) = false, want true")
	}
	if IsClass(wrapped, ClassParse) {
		t.Errorf("IsClass(wrapped, parse) = true, want false")
	}
	if _, ok := ClassOf(fmt.Errorf("plain")); ok {
		t.Errorf("ClassOf(plain error) reported ok")
	}
	if !err.IsRuntimeError() || err.IsParseError() {
		t.Errorf("type error should be a runtime error")
	}
}

func TestFindClosestMatch(t *testing.T) {
	tests := []struct {
		input      string
		candidates []string
		expected   string
	}{
		{"fob", []string{"fib", "greeting"}, "fib"},
		{"greting", []string{"fib", "greeting"}, "greeting"},
		{"zzz", []string{"fib", "greeting"}, ""},
		{"fib", []string{"fib"}, ""},
		{"", []string{"fib"}, ""},
	}

	for _, tt := range tests {
		if got := FindClosestMatch(tt.input, tt.candidates); got != tt.expected {
			t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewUndefinedIdentifierHint(t *testing.T) {
	err := NewUndefinedIdentifier("plsu", []string{"plus", "inc"})
	if len(err.Hints) != 1 || err.Hints[0] != "Did you mean `plus`?" {
		t.Errorf("Hints = %v", err.Hints)
	}
}
