// Package errors provides structured error types for the Odyssey language.
//
// OdysseyError is the single error type returned by the parser and the
// evaluator. It carries a class, a catalog code, a rendered message, hints and
// a source position, and it can be printed for humans or marshalled to JSON.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Malformed source
	ClassUndefined ErrorClass = "undefined" // Name not bound in the current frame
	ClassType      ErrorClass = "type"      // Operand kind does not support the operation
	ClassIndex     ErrorClass = "index"     // Bad index kind or position
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassEmpty     ErrorClass = "empty"     // Statement sequence with no statements
	ClassOperator  ErrorClass = "operator"  // Arithmetic faults
)

// OdysseyError represents any error from parsing or evaluation.
type OdysseyError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *OdysseyError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *OdysseyError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *OdysseyError) PrettyString() string {
	var sb strings.Builder

	if e.IsRuntimeError() {
		sb.WriteString("Runtime error")
	} else {
		sb.WriteString("Parser error")
	}

	switch {
	case e.File != "":
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	case e.Line > 0:
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	default:
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *OdysseyError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *OdysseyError) WithFile(file string) *OdysseyError {
	c := *e
	c.File = file
	return &c
}

// WithPosition returns a copy of the error with line and column set.
func (e *OdysseyError) WithPosition(line, column int) *OdysseyError {
	c := *e
	c.Line = line
	c.Column = column
	return &c
}

// IsParseError returns true if this is a parser error.
func (e *OdysseyError) IsParseError() bool {
	return e.Class == ClassParse
}

// IsRuntimeError returns true if this is an evaluation error.
func (e *OdysseyError) IsRuntimeError() bool {
	return e.Class != ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string",
		Hints:    []string{"strings end with the quote they start with, on the same line"},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "could not parse '{{.Literal}}' as integer",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "cannot assign to {{.Target}}",
		Hints:    []string{"assign to a name (x = 1), an element (a[0] = 1) or a field (h.x = 1)"},
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "invalid hash key '{{.Key}}'",
		Hints:    []string{"hash keys are names or strings: {a: 1, \"b\": 2}"},
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "illegal character '{{.Char}}'",
	},
	"PARSE-0008": {
		Class:    ClassParse,
		Template: "cannot call {{.Callee}}",
		Hints:    []string{"bind the function to a name first: f = (x)=>x; f(1)"},
	},

	// Undefined
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
	},

	// Type errors
	"TYPE-0001": {
		Class:    ClassType,
		Template: "unsupported operand kinds for '{{.Operator}}': {{.Left}} and {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "cannot index {{.Kind}}, only collections can be indexed",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "cannot access field '{{.Field}}' of {{.Kind}}, only hashes have fields",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot call '{{.Name}}': {{.Kind}} is not a function",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "condition must be a bool, got {{.Kind}}",
		Hints:    []string{"compare values to get a bool: x > 0 ? a : b"},
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "cannot negate {{.Kind}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "cannot append {{.Kind}} to a string",
	},

	// Index errors
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index must be an integer, got {{.Kind}}",
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "cannot write to negative index {{.Index}}",
	},
	"INDEX-0003": {
		Class:    ClassIndex,
		Template: "index {{.Index}} is too far past the end of a collection of length {{.Len}}",
		Hints:    []string{"a write may land at most {{.Max}} places past the end"},
	},

	// Arity
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "'{{.Name}}' takes {{.Want}} argument{{if ne .Want 1}}s{{end}}, got {{.Got}}",
	},

	// Empty
	"EMPTY-0001": {
		Class:    ClassEmpty,
		Template: "nothing to evaluate: {{.What}} has no statements",
	},

	// Operator faults
	"OP-0001": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "negative exponent {{.Exponent}} has no integer result",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "unknown operator '{{.Operator}}'",
	},
}

// New creates an OdysseyError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *OdysseyError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &OdysseyError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	var hints []string
	for _, h := range def.Hints {
		if rendered := renderTemplate(h, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &OdysseyError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an OdysseyError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *OdysseyError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *OdysseyError {
	return &OdysseyError{
		Class:   class,
		Message: message,
	}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ClassOf returns the class of err if it is (or wraps) an OdysseyError.
func ClassOf(err error) (ErrorClass, bool) {
	var oe *OdysseyError
	if stderrors.As(err, &oe) {
		return oe.Class, true
	}
	return "", false
}

// IsClass reports whether err is (or wraps) an OdysseyError of the given class.
func IsClass(err error, class ErrorClass) bool {
	c, ok := ClassOf(err)
	return ok && c == class
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}

// FindClosestMatch finds the closest match to input from candidates.
// Returns "" when nothing is close enough. The allowed distance grows with
// the length of the input: 1 edit up to 3 characters, 2 up to 6, then 3.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)
	best := ""
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			best = candidate
		}
	}

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}
	return best
}

// NewUndefinedIdentifier creates an undefined identifier error with a
// "Did you mean" hint when one of the bound names is close.
func NewUndefinedIdentifier(name string, available []string) *OdysseyError {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
