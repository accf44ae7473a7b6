package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "odyssey.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, `
repl:
  prompt: "> "
  history_file: history.txt
  logo: false
output:
  print: stderr
trace:
  enabled: true
  format: json
  output: logs/trace.log
watch:
  debounce: 250ms
`)

	cfg, path, err := LoadWithPath(configPath, noenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if path != configPath {
		t.Errorf("resolved path %q, want %q", path, configPath)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir %q, want %q", cfg.BaseDir, dir)
	}
	if cfg.REPL.Prompt != "> " || cfg.REPL.Logo {
		t.Errorf("unexpected repl config %+v", cfg.REPL)
	}
	if cfg.REPL.HistoryFile != filepath.Join(dir, "history.txt") {
		t.Errorf("history file not resolved: %q", cfg.REPL.HistoryFile)
	}
	if cfg.Output.Print != "stderr" {
		t.Errorf("streams must not be resolved as paths: %q", cfg.Output.Print)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Format != "json" {
		t.Errorf("unexpected trace config %+v", cfg.Trace)
	}
	if cfg.Trace.Output != filepath.Join(dir, "logs", "trace.log") {
		t.Errorf("trace output not resolved: %q", cfg.Trace.Output)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %s, want 250ms", cfg.Watch.Debounce)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "trace:\n  enabled: true\n")

	cfg, err := Load(configPath, noenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Trace.Enabled {
		t.Error("trace.enabled not read")
	}
	if cfg.Trace.Format != "text" || cfg.REPL.Prompt != "odyssey> " {
		t.Errorf("defaults lost: %+v %+v", cfg.Trace, cfg.REPL)
	}
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
repl:
  prompt: "${ODY_PROMPT:-odyssey> }"
trace:
  format: ${ODY_TRACE_FORMAT}
`)

	getenv := func(key string) string {
		if key == "ODY_TRACE_FORMAT" {
			return "json"
		}
		return ""
	}

	cfg, err := Load(configPath, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trace.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Trace.Format)
	}
	if cfg.REPL.Prompt != "odyssey> " {
		t.Errorf("prompt = %q, want default from interpolation", cfg.REPL.Prompt)
	}
}

func TestLoadValidationError(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "trace:\n  format: xml\n")

	_, err := Load(configPath, noenv)
	if err == nil || !strings.Contains(err.Error(), "invalid trace format") {
		t.Errorf("expected trace format error, got %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "repl: [unclosed\n")

	_, err := Load(configPath, noenv)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noenv)
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoadFromEnvVariable(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "repl:\n  prompt: \"env> \"\n")

	getenv := func(key string) string {
		if key == "ODYSSEY_CONFIG" {
			return configPath
		}
		return ""
	}

	cfg, err := Load("", getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.REPL.Prompt != "env> " {
		t.Errorf("prompt = %q, want 'env> '", cfg.REPL.Prompt)
	}

	missing := func(key string) string {
		if key == "ODYSSEY_CONFIG" {
			return "/no/such/odyssey.yaml"
		}
		return ""
	}
	if _, err := Load("", missing); err == nil {
		t.Error("expected error for missing ODYSSEY_CONFIG file")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadWithPath("", noenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.REPL.Prompt != Defaults().REPL.Prompt {
		t.Errorf("expected defaults, got %+v", cfg.REPL)
	}
}
