// Package config provides configuration data structures for looker-deployer.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete deployer configuration loaded from
// .lookerdeployer/config.yaml. Everything has a sensible default; the file
// is optional.
type Config struct {
	Ini     string        `yaml:"ini"     json:"ini"`
	Gzr     GzrConfig     `yaml:"gzr"     json:"gzr"`
	Deploy  DeployConfig  `yaml:"deploy"  json:"deploy"`
	Retry   RetryConfig   `yaml:"retry"   json:"retry"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// GzrConfig configures the gzr subprocess wrapper.
type GzrConfig struct {
	// Binary is the gzr executable name or path (default: "gzr").
	Binary string `yaml:"binary" json:"binary"`
	// Timeout is the maximum time for a single gzr invocation (default: 5m).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DeployConfig configures content deployment behavior.
type DeployConfig struct {
	// Concurrency is the number of parallel content imports per folder (default: 3).
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// RetryConfig configures Looker API retry behavior.
type RetryConfig struct {
	// Attempts is the maximum number of tries per API call (default: 3).
	Attempts uint `yaml:"attempts" json:"attempts"`
	// Delay is the base delay between attempts (default: 500ms).
	Delay time.Duration `yaml:"delay" json:"delay"`
}

// LogFormat defines the log output format.
type LogFormat string

const (
	// LogFormatJSON emits one JSON object per log record.
	LogFormatJSON LogFormat = "json"
	// LogFormatText emits human-readable key=value records.
	LogFormatText LogFormat = "text"
)

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	// Dir is the directory for log files (default: ".lookerdeployer/logs").
	Dir string `yaml:"dir" json:"dir"`
	// Format is "json" or "text" (default: json).
	Format LogFormat `yaml:"format" json:"format"`
	// MaxFiles is the maximum number of log files to keep (default: 10).
	MaxFiles int `yaml:"max_files" json:"max_files"`
	// MaxAge is the maximum age of log files before cleanup (default: 168h).
	MaxAge time.Duration `yaml:"max_age" json:"max_age"`
}

// Default values.
const (
	DefaultIni         = "looker.ini"
	DefaultGzrBinary   = "gzr"
	DefaultGzrTimeout  = 5 * time.Minute
	DefaultConcurrency = 3
	DefaultAttempts    = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultLogDir      = ".lookerdeployer/logs"
	DefaultMaxLogFiles = 10
	DefaultMaxLogAge   = 7 * 24 * time.Hour
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Ini: DefaultIni,
		Gzr: GzrConfig{
			Binary:  DefaultGzrBinary,
			Timeout: DefaultGzrTimeout,
		},
		Deploy: DeployConfig{
			Concurrency: DefaultConcurrency,
		},
		Retry: RetryConfig{
			Attempts: DefaultAttempts,
			Delay:    DefaultRetryDelay,
		},
		Logging: LoggingConfig{
			Dir:      DefaultLogDir,
			Format:   LogFormatJSON,
			MaxFiles: DefaultMaxLogFiles,
			MaxAge:   DefaultMaxLogAge,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
// This is used after loading config from file to fill in missing values.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.Ini == "" {
		c.Ini = defaults.Ini
	}
	if c.Gzr.Binary == "" {
		c.Gzr.Binary = defaults.Gzr.Binary
	}
	if c.Gzr.Timeout == 0 {
		c.Gzr.Timeout = defaults.Gzr.Timeout
	}
	if c.Deploy.Concurrency == 0 {
		c.Deploy.Concurrency = defaults.Deploy.Concurrency
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = defaults.Retry.Attempts
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = defaults.Retry.Delay
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaults.Logging.Dir
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = defaults.Logging.MaxAge
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Gzr.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "gzr.timeout", Message: "must be non-negative"})
	}
	if c.Deploy.Concurrency < 1 {
		errs = append(errs, &ValidationError{Field: "deploy.concurrency", Message: "must be at least 1"})
	}
	if c.Deploy.Concurrency > 32 {
		errs = append(errs, &ValidationError{
			Field:   "deploy.concurrency",
			Message: fmt.Sprintf("%d is too high; the Looker API will throttle well before that", c.Deploy.Concurrency),
		})
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, &ValidationError{Field: "retry.delay", Message: "must be non-negative"})
	}

	if c.Logging.Format != "" {
		switch c.Logging.Format {
		case LogFormatJSON, LogFormatText:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "logging.format",
				Message: "must be 'json' or 'text'",
			})
		}
	}
	if c.Logging.MaxFiles < 0 {
		errs = append(errs, &ValidationError{Field: "logging.max_files", Message: "must be non-negative"})
	}
	if c.Logging.MaxAge < 0 {
		errs = append(errs, &ValidationError{Field: "logging.max_age", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
