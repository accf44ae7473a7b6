// Package repl implements the interactive Odyssey prompt.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/odyssey/pkg/odyssey/evaluator"
	"github.com/sambeau/odyssey/pkg/odyssey/odyssey"
)

const CONTINUATION_PROMPT = ".. "

const LOGO = `
              __
  ____   ____/ /__  __ _____ _____ ___   __  __
 / __ \ / __  // / / // ___// ___// _ \ / / / /
/ /_/ // /_/ // /_/ /(__  )(__  )/  __// /_/ /
\____/ \__,_/ \__, //____//____/ \___/ \__, /
             /____/                   /____/
`

// Words offered by tab completion besides the names bound in the session.
var completionWords = []string{
	evaluator.PrintBuiltin,
	"exit", "quit",
	":help", ":env", ":clear", ":tree",
}

// Options configures a REPL session.
type Options struct {
	Prompt      string
	HistoryFile string // empty disables history
	Logo        bool
	Version     string
	Interpreter *odyssey.Interpreter // nil creates one printing to out
}

// Start starts the REPL with line editing, history, and tab completion.
// It returns when the user exits or input ends.
func Start(out io.Writer, opts Options) {
	s := newSession(out, opts)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	s.banner()

	for {
		input, err := line.Prompt(s.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C clears buffered input and returns to the main prompt
				if s.buffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.buffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		complete, quit := s.handleLine(input)
		if complete != "" {
			line.AppendHistory(complete)
		}
		if quit {
			return
		}
	}
}

// session is the state of one REPL run, separate from the terminal so it
// can be driven line by line.
type session struct {
	interp   *odyssey.Interpreter
	out      io.Writer
	opts     Options
	buffer   strings.Builder
	showTree bool
}

func newSession(out io.Writer, opts Options) *session {
	if opts.Prompt == "" {
		opts.Prompt = "odyssey> "
	}
	interp := opts.Interpreter
	if interp == nil {
		interp = odyssey.New(odyssey.WithLogger(odyssey.WriterLogger(out)))
	}
	return &session{interp: interp, out: out, opts: opts}
}

func (s *session) banner() {
	if s.opts.Logo {
		fmt.Fprint(s.out, LOGO)
	}
	if s.opts.Version != "" {
		fmt.Fprintln(s.out, "Interactive Odyssey v"+s.opts.Version)
	} else {
		fmt.Fprintln(s.out, "Interactive Odyssey!")
	}
	fmt.Fprintln(s.out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")
	fmt.Fprintln(s.out, "")
}

func (s *session) prompt() string {
	if s.buffer.Len() > 0 {
		return CONTINUATION_PROMPT
	}
	return s.opts.Prompt
}

// handleLine processes one line of input. It returns the complete input
// when one was evaluated, for the history, and whether to quit.
func (s *session) handleLine(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)

	if s.buffer.Len() == 0 {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.handleCommand(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	if s.buffer.Len() > 0 {
		s.buffer.WriteString("\n")
	}
	s.buffer.WriteString(input)

	source := s.buffer.String()
	if needsMoreInput(source) {
		return "", false
	}
	s.buffer.Reset()

	s.evaluate(source)
	return source, false
}

func (s *session) evaluate(source string) {
	program, err := s.interp.Parse(source)
	if err != nil {
		fmt.Fprintln(s.out, odyssey.FormatError(err, source))
		return
	}

	if s.showTree {
		if tree, err := odyssey.TreeYAML(program); err == nil {
			fmt.Fprint(s.out, tree)
		}
	}

	res, err := s.interp.Run(program)
	if err != nil {
		fmt.Fprintln(s.out, odyssey.FormatError(err, source))
		return
	}
	fmt.Fprintln(s.out, res.Text)
}

// handleCommand handles REPL meta-commands that start with ':'
func (s *session) handleCommand(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show variables in scope")
		fmt.Fprintln(s.out, "  :clear          Clear all variables")
		fmt.Fprintln(s.out, "  :tree           Toggle printing the syntax tree of each input")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")

	case ":env":
		printEnvironment(s.interp.Environment(), s.out)

	case ":clear":
		s.interp.Reset()
		fmt.Fprintln(s.out, "Environment cleared")

	case ":tree":
		s.showTree = !s.showTree
		if s.showTree {
			fmt.Fprintln(s.out, "Tree display ON")
		} else {
			fmt.Fprintln(s.out, "Tree display OFF")
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment lists the bindings of the global frame.
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	names := env.Names()
	if len(names) == 0 {
		fmt.Fprintln(out, "(no variables)")
		return
	}

	for _, name := range names {
		obj, err := env.Retrieve(name)
		if err != nil {
			continue
		}
		value := truncate(obj.Inspect(), 60)
		fmt.Fprintf(out, "  %s: %s = %s\n", name, evaluator.KindOf(obj), value)
	}
}

// truncate shortens s to at most limit runes, ending it with "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// complete returns full-line candidates that finish the identifier at the
// end of line.
func (s *session) complete(line string) []string {
	start := len(line)
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	word := line[start:]
	if word == "" {
		return nil
	}
	head := line[:start]

	candidates := append([]string(nil), completionWords...)
	candidates = append(candidates, s.interp.Environment().Names()...)

	var matches []string
	seen := map[string]bool{}
	for _, c := range candidates {
		if strings.HasPrefix(c, word) && c != word && !seen[c] {
			seen[c] = true
			matches = append(matches, head+c)
		}
	}
	return matches
}

func isWordByte(ch byte) bool {
	return ch == '_' || ch == ':' || ch >= 0x80 ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}

// needsMoreInput reports whether input has unclosed parentheses, brackets or
// braces outside strings and comments.
func needsMoreInput(input string) bool {
	depth := 0
	var quote byte

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote, '\n':
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}

	return depth > 0
}
