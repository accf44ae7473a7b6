// Package config loads odyssey.yaml, the settings shared by the REPL, the
// script runner and the watcher.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete Odyssey configuration
type Config struct {
	BaseDir string       `yaml:"-"` // Directory containing config file, for resolving relative paths
	REPL    REPLConfig   `yaml:"repl"`
	Output  OutputConfig `yaml:"output"`
	Trace   TraceConfig  `yaml:"trace"`
	Watch   WatchConfig  `yaml:"watch"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"` // default: $TMPDIR/.odyssey_history
	Logo        bool   `yaml:"logo"`         // print the banner on start
}

// OutputConfig holds where print() output goes
type OutputConfig struct {
	Print string `yaml:"print"` // stdout, stderr, or file path
}

// TraceConfig holds statement tracing settings
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // text or json
	Output  string `yaml:"output"` // stderr, stdout, or file path
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // quiet period before a re-run
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      "odyssey> ",
			HistoryFile: filepath.Join(os.TempDir(), ".odyssey_history"),
			Logo:        true,
		},
		Output: OutputConfig{
			Print: "stdout",
		},
		Trace: TraceConfig{
			Enabled: false,
			Format:  "text",
			Output:  "stderr",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}

// IsStream reports whether an output setting names a standard stream rather
// than a file.
func IsStream(output string) bool {
	return output == "stdout" || output == "stderr"
}
