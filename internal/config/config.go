// Package config resolves which external import-sorting tool runs and how.
// Provider selection is a strategy choice made once, before the diff-to-edit
// core is ever invoked: a small enumerated provider picks the command
// template, and an optional JSON file plus environment variables override
// the built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Provider identifies the external tool used to sort imports.
type Provider string

const (
	ProviderIsort Provider = "isort"
	ProviderRuff  Provider = "ruff"
	ProviderBlack Provider = "black"
)

// OutputKind describes what the tool prints on stdout.
type OutputKind string

const (
	// OutputDiff means stdout is a unified diff of the proposed changes.
	OutputDiff OutputKind = "diff"
	// OutputFull means stdout is the complete reformatted document; the
	// orchestrator derives hunks by diffing it against the original.
	OutputFull OutputKind = "full"
)

// FilePlaceholder in a template's args is replaced with the path of the
// temporary copy of the document the tool should read.
const FilePlaceholder = "{file}"

// DefaultConfigFile is looked up in the working directory when no explicit
// config path is given.
const DefaultConfigFile = "sortpatch.json"

// CommandTemplate describes how to invoke one provider and how to read its
// exit status.
type CommandTemplate struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	// OKExitCodes lists exit codes that still mean "here is your diff".
	// Several tools exit non-zero when changes are needed (ruff exits 1
	// whenever fixes exist), so zero-only is the wrong default for them.
	OKExitCodes []int      `json:"okExitCodes"`
	Output      OutputKind `json:"output"`
}

// ExitOK reports whether the template treats the exit code as success.
func (t CommandTemplate) ExitOK(code int) bool {
	for _, ok := range t.OKExitCodes {
		if ok == code {
			return true
		}
	}
	return false
}

// Config is the resolved tool configuration for one CLI invocation.
type Config struct {
	Provider   Provider                     `json:"provider"`
	TimeoutSec int                          `json:"timeoutSec"`
	Commands   map[Provider]CommandTemplate `json:"commands"`
}

// Timeout returns the subprocess timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Template returns the command template for the configured provider.
func (c Config) Template() (CommandTemplate, error) {
	tmpl, ok := c.Commands[c.Provider]
	if !ok {
		return CommandTemplate{}, fmt.Errorf("config: no command template for provider %q", c.Provider)
	}
	return tmpl, nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:   ProviderIsort,
		TimeoutSec: 30,
		Commands: map[Provider]CommandTemplate{
			ProviderIsort: {
				Command:     "isort",
				Args:        []string{"--diff", FilePlaceholder},
				OKExitCodes: []int{0},
				Output:      OutputDiff,
			},
			ProviderRuff: {
				Command:     "ruff",
				Args:        []string{"check", "--select", "I", "--diff", FilePlaceholder},
				OKExitCodes: []int{0, 1},
				Output:      OutputDiff,
			},
			ProviderBlack: {
				Command:     "black",
				Args:        []string{"--diff", "--quiet", FilePlaceholder},
				OKExitCodes: []int{0},
				Output:      OutputDiff,
			},
		},
	}
}

// fileConfig mirrors the JSON file shape; absent fields keep defaults.
type fileConfig struct {
	Provider   string                     `json:"provider"`
	TimeoutSec int                        `json:"timeoutSec"`
	Commands   map[string]CommandTemplate `json:"commands"`
}

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderOnce sync.Once
)

// ValidationError reports schema violations found in a configuration file.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("config: %s failed schema validation", e.Path)
	}
	return fmt.Sprintf("config: %s: %s", e.Path, strings.Join(e.Issues, "; "))
}

// Load builds the configuration from defaults, an optional JSON file, and
// SORTPATCH_* environment variables, in that precedence order. An empty
// path means "use sortpatch.json if present"; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFile(&cfg, path, raw); err != nil {
			return Config{}, err
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is the common case.
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if _, ok := cfg.Commands[cfg.Provider]; !ok {
		return Config{}, fmt.Errorf("config: unknown provider %q", cfg.Provider)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string, raw []byte) error {
	schemaLoaderOnce.Do(func() {
		schemaLoader = gojsonschema.NewGoLoader(FileSchema())
	})
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("config: validate %s: %w", path, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return &ValidationError{Path: path, Issues: issues}
	}

	var file fileConfig
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if file.Provider != "" {
		cfg.Provider = Provider(file.Provider)
	}
	if file.TimeoutSec > 0 {
		cfg.TimeoutSec = file.TimeoutSec
	}
	for name, tmpl := range file.Commands {
		merged := cfg.Commands[Provider(name)]
		merged.Command = tmpl.Command
		if tmpl.Args != nil {
			merged.Args = tmpl.Args
		}
		if tmpl.OKExitCodes != nil {
			merged.OKExitCodes = tmpl.OKExitCodes
		}
		if tmpl.Output != "" {
			merged.Output = tmpl.Output
		}
		if merged.OKExitCodes == nil {
			merged.OKExitCodes = []int{0}
		}
		if merged.Output == "" {
			merged.Output = OutputDiff
		}
		cfg.Commands[Provider(name)] = merged
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if provider := strings.TrimSpace(os.Getenv("SORTPATCH_PROVIDER")); provider != "" {
		cfg.Provider = Provider(provider)
	}
	if timeout := strings.TrimSpace(os.Getenv("SORTPATCH_TIMEOUT_SEC")); timeout != "" {
		seconds, err := strconv.Atoi(timeout)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("config: invalid SORTPATCH_TIMEOUT_SEC %q", timeout)
		}
		cfg.TimeoutSec = seconds
	}
	return nil
}
