package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration validation failures.
var ErrInvalidConfig = errors.New("invalid config value")

// Validate checks a loaded configuration for out-of-range values.
func Validate(cfg *Config) error {
	if cfg.Quality.Threshold < 0 || cfg.Quality.Threshold > 10 {
		return fmt.Errorf("%w: quality.threshold %d must be in [0,10]", ErrInvalidConfig, cfg.Quality.Threshold)
	}
	if cfg.Quality.MaxAttempts < 1 {
		return fmt.Errorf("%w: quality.max_attempts %d must be at least 1", ErrInvalidConfig, cfg.Quality.MaxAttempts)
	}
	if cfg.Quality.EvaluationTimeout <= 0 {
		return fmt.Errorf("%w: quality.evaluation_timeout %s must be positive", ErrInvalidConfig, cfg.Quality.EvaluationTimeout)
	}
	if cfg.Gate.Threshold <= 0 || cfg.Gate.Threshold > 1 {
		return fmt.Errorf("%w: gate.threshold %.2f must be in (0,1]", ErrInvalidConfig, cfg.Gate.Threshold)
	}
	if err := validateRiskBands(cfg); err != nil {
		return err
	}
	if cfg.LLM.Command == "" {
		return fmt.Errorf("%w: llm.command must not be empty", ErrInvalidConfig)
	}
	if cfg.Log.MaxSizeMB < 1 {
		return fmt.Errorf("%w: log.max_size_mb %d must be at least 1", ErrInvalidConfig, cfg.Log.MaxSizeMB)
	}
	return nil
}

// validateRiskBands ensures band boundaries are ordered and in range.
func validateRiskBands(cfg *Config) error {
	b := cfg.Risk
	if b.MediumMin < 1 || b.CriticalMin > 10 {
		return fmt.Errorf("%w: risk bands must lie within [1,10]", ErrInvalidConfig)
	}
	if !(b.MediumMin < b.HighMin && b.HighMin < b.CriticalMin) {
		return fmt.Errorf("%w: risk bands must satisfy medium_min < high_min < critical_min (got %d/%d/%d)",
			ErrInvalidConfig, b.MediumMin, b.HighMin, b.CriticalMin)
	}
	return nil
}
