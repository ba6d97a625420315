// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Access
	SessionFile string `json:"session_file,omitempty"` // Path to the persisted session blob
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Email       string `json:"email,omitempty"`        // Account email for automated login
	Password    string `json:"password,omitempty"`     // Account password for automated login

	// Limits
	WorkerCap         int     `json:"worker_cap,omitempty"`          // Max parallel workers (0 = hardware parallelism)
	ScrollCycles      int     `json:"scroll_cycles,omitempty"`       // Browser scroll-and-wait passes
	AttemptTimeoutSec int     `json:"attempt_timeout_sec,omitempty"` // Per-strategy attempt timeout
	PromptTimeoutSec  int     `json:"prompt_timeout_sec,omitempty"`  // Interactive credential wait
	RequestsPerMinute float64 `json:"requests_per_minute,omitempty"` // Per-account rate discipline

	// Behavior
	Headless bool `json:"headless,omitempty"` // Run the browser headless
	Verbose  bool `json:"verbose,omitempty"`  // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.WorkerCap < 0 {
		return fmt.Errorf("config error: 'worker_cap' must be non-negative")
	}
	if c.ScrollCycles < 0 {
		return fmt.Errorf("config error: 'scroll_cycles' must be non-negative")
	}
	if c.AttemptTimeoutSec < 0 {
		return fmt.Errorf("config error: 'attempt_timeout_sec' must be non-negative")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'requests_per_minute' must be non-negative")
	}
	if c.SessionFile != "" {
		if _, err := os.Stat(filepath.Dir(c.SessionFile)); os.IsNotExist(err) {
			return fmt.Errorf("config error: session file directory not found: %s", filepath.Dir(c.SessionFile))
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SessionFile == "" {
		result.SessionFile = defaults.SessionFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Email == "" {
		result.Email = defaults.Email
	}
	if result.Password == "" {
		result.Password = defaults.Password
	}

	// Numeric fields: use default if zero
	if result.WorkerCap == 0 {
		result.WorkerCap = defaults.WorkerCap
	}
	if result.ScrollCycles == 0 {
		result.ScrollCycles = defaults.ScrollCycles
	}
	if result.AttemptTimeoutSec == 0 {
		result.AttemptTimeoutSec = defaults.AttemptTimeoutSec
	}
	if result.PromptTimeoutSec == 0 {
		result.PromptTimeoutSec = defaults.PromptTimeoutSec
	}
	if result.RequestsPerMinute == 0 {
		if defaults.RequestsPerMinute > 0 {
			result.RequestsPerMinute = defaults.RequestsPerMinute
		} else {
			result.RequestsPerMinute = 10 // conservative default for an authenticated account
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
