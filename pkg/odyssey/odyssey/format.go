package odyssey

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
)

// FormatError renders err for a terminal. Odyssey errors get their pretty
// form followed by the offending source line and a caret under the column.
func FormatError(err error, source string) string {
	oe, ok := err.(*oerrors.OdysseyError)
	if !ok {
		return "Error: " + err.Error()
	}

	var sb strings.Builder
	sb.WriteString(oe.PrettyString())
	if context := sourceContext(source, oe.Line, oe.Column); context != "" {
		sb.WriteString("\n\n")
		sb.WriteString(context)
	}
	return sb.String()
}

// sourceContext returns the given line of source with a caret under column.
// Tabs before the column are kept so the caret lines up.
func sourceContext(source string, line, column int) string {
	if line < 1 || column < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")

	var pad strings.Builder
	for i, r := range []rune(text) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	return "    " + text + "\n    " + pad.String() + "^"
}

// TreeYAML renders the program's tree view as YAML.
func TreeYAML(program *ast.Program) (string, error) {
	data, err := yaml.Marshal(ast.Tree(program))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
