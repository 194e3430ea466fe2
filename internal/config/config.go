// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/okian/studybuddy/internal/domain/matching"
)

// Sentinel error kinds returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the profile store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// StoreMetrics toggles store latency and profile count metrics.
	StoreMetrics bool `koanf:"store_metrics"`

	// DefaultLimit is used when a request does not name a limit.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps the limit a request may ask for.
	MaxLimit int `koanf:"max_limit"`

	// BatchConcurrency bounds parallel requesters in a batch request.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// ExcludeRequester makes the matcher drop candidates with the requester's id.
	ExcludeRequester bool `koanf:"exclude_requester"`

	// Signal weights.
	WeightDepartment     float64 `koanf:"weight_department"`
	WeightYear           float64 `koanf:"weight_year"`
	WeightSharedClass    float64 `koanf:"weight_shared_class"`
	WeightSharedInterest float64 `koanf:"weight_shared_interest"`
	WeightMentor         float64 `koanf:"weight_mentor"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StoreDriver:          "memory",
		SQLitePath:           "studybuddy.db",
		StoreMetrics:         true,
		DefaultLimit:         matching.DefaultLimit,
		MaxLimit:             50,
		BatchConcurrency:     runtime.NumCPU(),
		ExcludeRequester:     true,
		WeightDepartment:     matching.DefaultDepartmentWeight,
		WeightYear:           matching.DefaultYearWeight,
		WeightSharedClass:    matching.DefaultSharedClassWeight,
		WeightSharedInterest: matching.DefaultSharedInterestWeight,
		WeightMentor:         matching.DefaultMentorWeight,
	}
}

// Weights returns the configured matcher weights.
func (c *Config) Weights() matching.Weights {
	return matching.Weights{
		Department:     c.WeightDepartment,
		Year:           c.WeightYear,
		SharedClass:    c.WeightSharedClass,
		SharedInterest: c.WeightSharedInterest,
		Mentor:         c.WeightMentor,
	}
}

// Validate checks values that would make the service misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != "memory" && c.StoreDriver != "sqlite":
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == "sqlite" && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	case c.DefaultLimit < 0:
		return fmt.Errorf("%w: default_limit must not be negative", ErrInvalidConfig)
	case c.MaxLimit < 1:
		return fmt.Errorf("%w: max_limit must be at least 1", ErrInvalidConfig)
	case c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("%w: default_limit exceeds max_limit", ErrInvalidConfig)
	case c.BatchConcurrency < 1:
		return fmt.Errorf("%w: batch_concurrency must be at least 1", ErrInvalidConfig)
	}
	for name, w := range map[string]float64{
		"weight_department":      c.WeightDepartment,
		"weight_year":            c.WeightYear,
		"weight_shared_class":    c.WeightSharedClass,
		"weight_shared_interest": c.WeightSharedInterest,
		"weight_mentor":          c.WeightMentor,
	} {
		if w < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
		if w > matching.MaxWeight {
			return fmt.Errorf("%w: %s exceeds %g", ErrInvalidConfig, name, float64(matching.MaxWeight))
		}
	}
	return nil
}
