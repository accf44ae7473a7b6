package repl

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1 + 2", false},
		{"f = (x) => {", true},
		{"f = (x) => {\n  x + 1\n}", false},
		{"a = [1,", true},
		{"print(", true},
		{`s = "("`, false},
		{`s = '[' + "{"`, false},
		{`s = "\"("`, false},
		{"x = 1 // (", false},
		{"{a: [1, 2]}", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func run(lines ...string) (string, bool) {
	var out bytes.Buffer
	s := newSession(&out, Options{})
	quit := false
	for _, l := range lines {
		if _, q := s.handleLine(l); q {
			quit = true
			break
		}
	}
	return out.String(), quit
}

func TestSessionEvaluates(t *testing.T) {
	out, _ := run("x = 20", "x + 22")
	if out != "20\n42\n" {
		t.Errorf("output = %q", out)
	}
}

func TestSessionMultiLine(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out, Options{Prompt: "> "})

	s.handleLine("add = (a, b) => {")
	if s.prompt() != CONTINUATION_PROMPT {
		t.Errorf("prompt = %q while input is open", s.prompt())
	}
	s.handleLine("  a + b")
	complete, _ := s.handleLine("}")
	if complete != "add = (a, b) => {\n  a + b\n}" {
		t.Errorf("complete input = %q", complete)
	}
	if s.prompt() != "> " {
		t.Errorf("prompt = %q after input closed", s.prompt())
	}

	out.Reset()
	s.handleLine("add(1, 2)")
	if out.String() != "3\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSessionPrint(t *testing.T) {
	out, _ := run(`print("hi", 1)`)
	if out != "\"hi\" 1\nTrue\n" {
		t.Errorf("output = %q", out)
	}
}

func TestSessionErrors(t *testing.T) {
	out, _ := run("y = nope")
	if !strings.HasPrefix(out, "Runtime error: line 1, column 5") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "    y = nope\n        ^") {
		t.Errorf("missing caret context: %q", out)
	}

	out, _ = run("1 +")
	if !strings.HasPrefix(out, "Parser error") {
		t.Errorf("output = %q", out)
	}
}

func TestSessionCommands(t *testing.T) {
	out, _ := run("b = [1]", "a = 2", ":env")
	if !strings.Contains(out, "  a: integer = 2\n  b: collection = [1]\n") {
		t.Errorf(":env output = %q", out)
	}

	out, _ = run("a = 2", ":clear", ":env")
	if !strings.Contains(out, "Environment cleared\n(no variables)\n") {
		t.Errorf(":clear output = %q", out)
	}

	out, _ = run(":tree", "1")
	if !strings.Contains(out, "Tree display ON\n- value: 1\n1\n") {
		t.Errorf(":tree output = %q", out)
	}

	out, _ = run(":nope")
	if !strings.Contains(out, "Unknown command: :nope") {
		t.Errorf("unknown command output = %q", out)
	}

	out, _ = run(":help")
	if !strings.Contains(out, ":tree") {
		t.Errorf(":help output = %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"short", "short"},
		{strings.Repeat("a", 60), strings.Repeat("a", 60)},
		{strings.Repeat("a", 61), strings.Repeat("a", 57) + "..."},
		{strings.Repeat("é", 61), strings.Repeat("é", 57) + "..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, 60); got != tt.expected {
			t.Errorf("truncate(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	// a cut inside multi-byte text still prints valid UTF-8
	out, _ := run(`s = "` + strings.Repeat("日本", 40) + `"`, ":env")
	if !utf8.ValidString(out) || !strings.Contains(out, "...\n") {
		t.Errorf(":env output = %q", out)
	}
}

func TestSessionQuit(t *testing.T) {
	for _, word := range []string{"exit", "quit", "  exit  "} {
		out, quit := run(word, "1")
		if !quit || out != "Goodbye!\n" {
			t.Errorf("%q: quit = %v, output = %q", word, quit, out)
		}
	}
}

func TestComplete(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out, Options{})
	s.handleLine("price = 10")
	s.handleLine("pretty = 1")

	got := s.complete("x + pri")
	want := []string{"x + print", "x + price"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("complete = %q, want %q", got, want)
	}

	if got := s.complete(":e"); !reflect.DeepEqual(got, []string{":env"}) {
		t.Errorf("complete(:e) = %q", got)
	}
	if got := s.complete("x + "); got != nil {
		t.Errorf("complete after space = %q, want nil", got)
	}
}

func TestBanner(t *testing.T) {
	var out bytes.Buffer
	newSession(&out, Options{Logo: true, Version: "1.0"}).banner()

	if !strings.HasPrefix(out.String(), LOGO) {
		t.Error("banner does not start with the logo")
	}
	if !strings.Contains(out.String(), "Interactive Odyssey v1.0") {
		t.Errorf("banner = %q", out.String())
	}
}
