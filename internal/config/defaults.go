package config

import (
	"github.com/spf13/viper"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// Log rotation defaults for the CLI log file.
const (
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 30
)

// setDefaults registers built-in defaults on the viper instance. Every
// key read anywhere in the codebase must have a default here.
func setDefaults(v *viper.Viper) {
	bands := domain.DefaultRiskBands()

	v.SetDefault("home", "")

	v.SetDefault("quality.threshold", constants.DefaultQualityThreshold)
	v.SetDefault("quality.max_attempts", constants.DefaultMaxAttempts)
	v.SetDefault("quality.evaluation_timeout", constants.DefaultEvaluationTimeout)

	v.SetDefault("gate.threshold", constants.DefaultGateThreshold)

	v.SetDefault("risk.critical_min", bands.CriticalMin)
	v.SetDefault("risk.high_min", bands.HighMin)
	v.SetDefault("risk.medium_min", bands.MediumMin)

	v.SetDefault("llm.command", "claude")
	v.SetDefault("llm.args", []string{"-p", "--output-format", "text"})
	v.SetDefault("llm.system_arg", "--append-system-prompt")

	v.SetDefault("log.file", true)
	v.SetDefault("log.max_size_mb", defaultLogMaxSizeMB)
	v.SetDefault("log.max_backups", defaultLogMaxBackups)
	v.SetDefault("log.max_age_days", defaultLogMaxAgeDays)
}

// Default returns the built-in configuration without touching files or
// the environment.
func Default() *Config {
	return &Config{
		Quality: QualityConfig{
			Threshold:         constants.DefaultQualityThreshold,
			MaxAttempts:       constants.DefaultMaxAttempts,
			EvaluationTimeout: constants.DefaultEvaluationTimeout,
		},
		Gate: GateConfig{Threshold: constants.DefaultGateThreshold},
		Risk: domain.DefaultRiskBands(),
		LLM: LLMConfig{
			Command:   "claude",
			Args:      []string{"-p", "--output-format", "text"},
			SystemArg: "--append-system-prompt",
		},
		Log: LogConfig{
			File:       true,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
