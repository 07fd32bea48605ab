// Package config loads and validates runtime configuration for the
// U-AIP scoping assistant. Values come from built-in defaults, the
// global config file (~/.uaip/config.yaml), and UAIP_-prefixed
// environment variables, in ascending precedence.
package config

import (
	"time"

	"github.com/uaip-labs/uaip/internal/domain"
)

// Config is the root configuration structure.
type Config struct {
	// Home overrides the state directory (default ~/.uaip).
	Home string `mapstructure:"home"`

	Quality QualityConfig    `mapstructure:"quality"`
	Gate    GateConfig       `mapstructure:"gate"`
	Risk    domain.RiskBands `mapstructure:"risk"`
	LLM     LLMConfig        `mapstructure:"llm"`
	Log     LogConfig        `mapstructure:"log"`
}

// QualityConfig tunes the per-question response evaluation loop.
type QualityConfig struct {
	// Threshold is the minimum quality score (0-10) for a response to
	// be accepted without a follow-up.
	Threshold int `mapstructure:"threshold"`

	// MaxAttempts bounds the follow-up retries per question before the
	// response is force-accepted.
	MaxAttempts int `mapstructure:"max_attempts"`

	// EvaluationTimeout bounds a single quality-evaluation call.
	EvaluationTimeout time.Duration `mapstructure:"evaluation_timeout"`
}

// GateConfig tunes the stage-gate validator.
type GateConfig struct {
	// Threshold is the minimum completeness score required to advance.
	Threshold float64 `mapstructure:"threshold"`
}

// LLMConfig selects the external model CLI used for evaluation,
// follow-up generation, and consistency review.
type LLMConfig struct {
	// Command is the executable to invoke (claude, codex, gemini, ...).
	Command string `mapstructure:"command"`

	// Args are the base arguments; the prompt is passed on stdin.
	Args []string `mapstructure:"args"`

	// SystemArg is the flag carrying the system prompt. Empty means
	// the system prompt is prepended to the user prompt instead.
	SystemArg string `mapstructure:"system_arg"`
}

// LogConfig tunes CLI logging output.
type LogConfig struct {
	// File enables the rotated log file under <home>/logs.
	File bool `mapstructure:"file"`

	// MaxSizeMB is the rotation threshold for the log file.
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAgeDays is the retention window for rotated files.
	MaxAgeDays int `mapstructure:"max_age_days"`
}
