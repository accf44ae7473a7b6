package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/odyssey/config"
	"github.com/sambeau/odyssey/pkg/odyssey/odyssey"
	"github.com/sambeau/odyssey/pkg/odyssey/repl"
)

// Version is set at build time via -ldflags
var Version = odyssey.Version

// errReported means the failure has already been printed to stderr.
var errReported = errors.New("errors reported")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("odyssey", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }

	var (
		configPath  = flags.String("config", "", "Path to config file")
		evalShort   = flags.String("e", "", "Evaluate code string")
		evalLong    = flags.String("eval", "", "Evaluate code string")
		checkOnly   = flags.Bool("check", false, "Check syntax without executing")
		showTree    = flags.Bool("tree", false, "Print the syntax tree as YAML before the result")
		watch       = flags.Bool("watch", false, "Re-run the script whenever it is saved")
		trace       = flags.Bool("trace", false, "Trace every top-level statement")
		traceFormat = flags.String("trace-format", "", "Trace format: text or json")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "odyssey version %s\n", Version)
		return nil
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *trace {
		cfg.Trace.Enabled = true
	}
	if *traceFormat != "" {
		cfg.Trace.Format = *traceFormat
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	code := *evalShort
	if code == "" {
		code = *evalLong
	}
	files := flags.Args()

	switch {
	case *checkOnly:
		if len(files) == 0 {
			return errors.New("--check requires at least one file")
		}
		return checkFiles(files, stderr)

	case code != "":
		return runSource(cfg, "<eval>", code, *showTree, stdout, stderr)

	case *watch:
		if len(files) == 0 {
			return errors.New("--watch requires a file")
		}
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return watchFile(ctx, cfg, files[0], *showTree, stdout, stderr)

	case len(files) > 0:
		return runFile(cfg, files[0], *showTree, stdout, stderr)

	default:
		in, closeOutputs, err := newInterpreter(cfg, "", stdout, stderr)
		if err != nil {
			return err
		}
		defer closeOutputs()
		repl.Start(stdout, repl.Options{
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.HistoryFile,
			Logo:        cfg.REPL.Logo,
			Version:     Version,
			Interpreter: in,
		})
		return nil
	}
}

// newInterpreter builds an interpreter whose print and trace output go where
// cfg says. The returned func closes any files that were opened.
func newInterpreter(cfg *config.Config, filename string, stdout, stderr io.Writer) (*odyssey.Interpreter, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	printOut, c, err := openOutput(cfg.Output.Print, stdout, stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("opening print output: %w", err)
	}
	if c != nil {
		closers = append(closers, c)
	}

	opts := []odyssey.Option{
		odyssey.WithLogger(odyssey.WriterLogger(printOut)),
		odyssey.WithFilename(filename),
	}

	if cfg.Trace.Enabled {
		traceOut, c, err := openOutput(cfg.Trace.Output, stdout, stderr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening trace output: %w", err)
		}
		if c != nil {
			closers = append(closers, c)
		}
		opts = append(opts, odyssey.WithTracer(odyssey.NewTracer(traceOut, cfg.Trace.Format)))
	}

	return odyssey.New(opts...), closeAll, nil
}

// openOutput resolves an output setting: stdout, stderr, or a file opened
// for appending. The closer is nil for the standard streams.
func openOutput(name string, stdout, stderr io.Writer) (io.Writer, io.Closer, error) {
	switch name {
	case "stdout":
		return stdout, nil, nil
	case "stderr":
		return stderr, nil, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// runSource parses and evaluates source, printing the tree if asked and
// then the value.
func runSource(cfg *config.Config, filename, source string, showTree bool, stdout, stderr io.Writer) error {
	in, closeOutputs, err := newInterpreter(cfg, filename, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeOutputs()

	program, err := in.Parse(source)
	if err != nil {
		fmt.Fprintln(stderr, odyssey.FormatError(err, source))
		return errReported
	}

	if showTree {
		tree, err := odyssey.TreeYAML(program)
		if err != nil {
			return fmt.Errorf("rendering tree: %w", err)
		}
		fmt.Fprint(stdout, tree)
	}

	res, err := in.Run(program)
	if err != nil {
		fmt.Fprintln(stderr, odyssey.FormatError(err, source))
		return errReported
	}

	fmt.Fprintln(stdout, res.Text)
	return nil
}

// runFile reads and executes a script
func runFile(cfg *config.Config, filename string, showTree bool, stdout, stderr io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	return runSource(cfg, filename, string(content), showTree, stdout, stderr)
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string, stderr io.Writer) error {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}

		in := odyssey.New(odyssey.WithFilename(filename), odyssey.WithLogger(odyssey.NullLogger()))
		if _, err := in.Parse(string(content)); err != nil {
			fmt.Fprintln(stderr, odyssey.FormatError(err, string(content)))
			hasErrors = true
		}
	}

	if hasErrors {
		return errReported
	}
	return nil
}

// watchFile runs filename now and again after every save, each time in a
// fresh environment. Script errors are printed and watching continues.
func watchFile(ctx context.Context, cfg *config.Config, filename string, showTree bool, stdout, stderr io.Writer) error {
	rerun := func() {
		err := runFile(cfg, filename, showTree, stdout, stderr)
		if err != nil && !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "[WATCH ERROR] %v\n", err)
		}
	}

	w, err := newScriptWatcher(filename, cfg.Watch.Debounce, rerun, stdout, stderr)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	rerun()
	return w.Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `odyssey - the Odyssey language interpreter

Usage:
  odyssey [options]                 Start the interactive REPL
  odyssey [options] FILE            Run a script
  odyssey [options] -e CODE         Evaluate a code string
  odyssey --check FILE...           Check syntax without executing
  odyssey --watch FILE              Run a script again whenever it is saved

Options:
  -e, --eval CODE        Evaluate code string
  --check                Check syntax only (exit 1 on errors)
  --tree                 Print the syntax tree as YAML before the result
  --watch                Re-run the script on every save
  --trace                Trace every top-level statement
  --trace-format FORMAT  Trace format: text or json
  --config PATH          Path to config file (default: auto-detect)
  --version              Show version
  --help                 Show this help

Config Resolution:
  1. --config flag
  2. ODYSSEY_CONFIG environment variable
  3. ./odyssey.yaml
  4. ~/.config/odyssey/odyssey.yaml

Examples:
  odyssey -e '1 + 2 * 3'
  odyssey --tree -e 'f = (x) => x * 2'
  odyssey --trace --trace-format json script.ody

`)
}
