package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults when none exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when the defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative file outputs against the config file's directory
	cfg.REPL.HistoryFile = resolvePath(baseDir, cfg.REPL.HistoryFile)
	if !IsStream(cfg.Output.Print) {
		cfg.Output.Print = resolvePath(baseDir, cfg.Output.Print)
	}
	if !IsStream(cfg.Trace.Output) {
		cfg.Trace.Output = resolvePath(baseDir, cfg.Trace.Output)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// Validate checks a configuration for errors. Call it again after applying
// CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.REPL.Prompt == "" {
		errs = append(errs, "repl.prompt must not be empty")
	}
	if cfg.Output.Print == "" {
		errs = append(errs, "output.print must be stdout, stderr, or a file path")
	}
	if cfg.Trace.Format != "text" && cfg.Trace.Format != "json" {
		errs = append(errs, fmt.Sprintf("invalid trace format: %s (must be json or text)", cfg.Trace.Format))
	}
	if cfg.Trace.Output == "" {
		errs = append(errs, "trace.output must be stdout, stderr, or a file path")
	}
	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Sprintf("invalid watch.debounce: %s (must be positive)", cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > ODYSSEY_CONFIG env > ./odyssey.yaml > ~/.config/odyssey/odyssey.yaml
// An empty result with no error means no file was found.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("ODYSSEY_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("ODYSSEY_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("odyssey.yaml"); err == nil {
		return "odyssey.yaml", nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "odyssey", "odyssey.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
