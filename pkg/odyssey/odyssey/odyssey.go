// Package odyssey provides a public API for embedding the Odyssey interpreter.
//
// An Interpreter owns one environment. Successive calls to Interpret share
// it, so a name bound by one call is visible to the next:
//
//	in := odyssey.New()
//	in.Interpret("double = (x) => x * 2")
//	text, err := in.Evaluate("double(21)") // "42"
//
// An Interpreter is not safe for concurrent use.
package odyssey

import (
	"time"

	"github.com/sambeau/odyssey/pkg/odyssey/ast"
	oerrors "github.com/sambeau/odyssey/pkg/odyssey/errors"
	"github.com/sambeau/odyssey/pkg/odyssey/evaluator"
	"github.com/sambeau/odyssey/pkg/odyssey/lexer"
	"github.com/sambeau/odyssey/pkg/odyssey/parser"
)

// Version is reported by the command line front end.
const Version = "0.3.0"

// Parser turns source text into a program. Failures should be
// *errors.OdysseyError values of class parse.
type Parser interface {
	Parse(source string) (*ast.Program, error)
}

type defaultParser struct{}

func (defaultParser) Parse(source string) (*ast.Program, error) {
	p := parser.New(lexer.New(source))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return program, nil
}

// DefaultParser returns the built-in lexer and parser.
func DefaultParser() Parser {
	return defaultParser{}
}

// Result holds everything one call to Interpret produced.
type Result struct {
	Canonical string           // canonical source text of the program
	Tree      []ast.Expression // the parsed statements
	Value     evaluator.Object // value of the last statement
	Text      string           // display form of Value
}

// Interpreter evaluates programs against a persistent environment.
type Interpreter struct {
	env    *evaluator.Environment
	parser Parser
	logger Logger
	tracer *Tracer
	file   string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sends print() output to logger.
func WithLogger(logger Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithParser replaces the built-in parser.
func WithParser(p Parser) Option {
	return func(in *Interpreter) {
		in.parser = p
	}
}

// WithTracer records every top-level statement the interpreter evaluates.
func WithTracer(t *Tracer) Option {
	return func(in *Interpreter) {
		in.tracer = t
	}
}

// WithFilename names the source in error messages.
func WithFilename(name string) Option {
	return func(in *Interpreter) {
		in.file = name
	}
}

// New creates an interpreter with an empty environment.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		parser: DefaultParser(),
		logger: StdoutLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.Reset()
	return in
}

// Reset discards every binding.
func (in *Interpreter) Reset() {
	in.env = evaluator.NewEnvironment()
	in.env.Logger = in.logger
}

// Environment exposes the interpreter's environment.
func (in *Interpreter) Environment() *evaluator.Environment {
	return in.env
}

// Parse parses source without evaluating it.
func (in *Interpreter) Parse(source string) (*ast.Program, error) {
	program, err := in.parser.Parse(source)
	if err != nil {
		return nil, in.annotate(err)
	}
	return program, nil
}

// Interpret parses and evaluates source. Statements run in order and the
// first failure stops the program; bindings made before it are kept.
func (in *Interpreter) Interpret(source string) (*Result, error) {
	program, err := in.Parse(source)
	if err != nil {
		return nil, err
	}
	return in.Run(program)
}

// Run evaluates a program that has already been parsed.
func (in *Interpreter) Run(program *ast.Program) (*Result, error) {
	val, err := in.run(program)
	if err != nil {
		return nil, in.annotate(err)
	}

	return &Result{
		Canonical: program.String(),
		Tree:      program.Statements,
		Value:     val,
		Text:      val.Inspect(),
	}, nil
}

// Evaluate interprets source and returns the display form of its value.
func (in *Interpreter) Evaluate(source string) (string, error) {
	res, err := in.Interpret(source)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (in *Interpreter) run(program *ast.Program) (evaluator.Object, error) {
	if len(program.Statements) == 0 {
		// reported by the evaluator as an empty program
		return evaluator.Eval(program, in.env)
	}

	var result evaluator.Object
	for _, stmt := range program.Statements {
		start := time.Now()
		val, err := evaluator.Eval(stmt, in.env)
		if in.tracer != nil {
			in.tracer.Trace(stmt, val, err, start, time.Since(start))
		}
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (in *Interpreter) annotate(err error) error {
	if in.file == "" {
		return err
	}
	if oe, ok := err.(*oerrors.OdysseyError); ok {
		return oe.WithFile(in.file)
	}
	return err
}
