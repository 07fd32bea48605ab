package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaip-labs/uaip/internal/constants"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("UAIP_HOME", t.TempDir())

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultQualityThreshold, cfg.Quality.Threshold)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Quality.MaxAttempts)
	assert.Equal(t, constants.DefaultEvaluationTimeout, cfg.Quality.EvaluationTimeout)
	assert.InDelta(t, constants.DefaultGateThreshold, cfg.Gate.Threshold, 0.0001)
	assert.Equal(t, "claude", cfg.LLM.Command)
	assert.Equal(t, []string{"-p", "--output-format", "text"}, cfg.LLM.Args)
	assert.Equal(t, 8, cfg.Risk.CriticalMin)
	assert.Equal(t, 6, cfg.Risk.HighMin)
	assert.Equal(t, 4, cfg.Risk.MediumMin)
}

func TestLoad_GlobalConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("UAIP_HOME", home)

	yaml := `
quality:
  threshold: 8
  evaluation_timeout: 45s
gate:
  threshold: 0.75
llm:
  command: codex
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Quality.Threshold)
	assert.Equal(t, 45*time.Second, cfg.Quality.EvaluationTimeout)
	assert.InDelta(t, 0.75, cfg.Gate.Threshold, 0.0001)
	assert.Equal(t, "codex", cfg.LLM.Command)
	// Untouched keys keep defaults.
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Quality.MaxAttempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("UAIP_HOME", home)
	t.Setenv("UAIP_QUALITY_THRESHOLD", "9")
	t.Setenv("UAIP_LLM_COMMAND", "gemini")

	yaml := "quality:\n  threshold: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Quality.Threshold)
	assert.Equal(t, "gemini", cfg.LLM.Command)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	home := t.TempDir()
	t.Setenv("UAIP_HOME", home)

	yaml := "gate:\n  threshold: 1.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0o600))

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	mutate := func(fn func(*Config)) *Config {
		cfg := Default()
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"defaults are valid", Default(), false},
		{"threshold too high", mutate(func(c *Config) { c.Quality.Threshold = 11 }), true},
		{"threshold negative", mutate(func(c *Config) { c.Quality.Threshold = -1 }), true},
		{"zero attempts", mutate(func(c *Config) { c.Quality.MaxAttempts = 0 }), true},
		{"zero eval timeout", mutate(func(c *Config) { c.Quality.EvaluationTimeout = 0 }), true},
		{"gate threshold zero", mutate(func(c *Config) { c.Gate.Threshold = 0 }), true},
		{"gate threshold above one", mutate(func(c *Config) { c.Gate.Threshold = 1.01 }), true},
		{"unordered risk bands", mutate(func(c *Config) { c.Risk.HighMin = 9 }), true},
		{"risk band out of range", mutate(func(c *Config) { c.Risk.MediumMin = 0 }), true},
		{"empty llm command", mutate(func(c *Config) { c.LLM.Command = "" }), true},
		{"zero log size", mutate(func(c *Config) { c.Log.MaxSizeMB = 0 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHomeDir(t *testing.T) {
	t.Setenv("UAIP_HOME", "/tmp/custom-uaip")

	dir, err := HomeDir("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-uaip", dir)

	dir, err = HomeDir("/explicit/override")
	require.NoError(t, err)
	assert.Equal(t, "/explicit/override", dir)
}

func TestHomeDir_DefaultUnderUserHome(t *testing.T) {
	t.Setenv("UAIP_HOME", "")

	dir, err := HomeDir("")
	require.NoError(t, err)
	assert.Equal(t, constants.UAIPHome, filepath.Base(dir))
}

func TestLogsDir(t *testing.T) {
	t.Setenv("UAIP_HOME", "/tmp/uaip-home")

	dir, err := LogsDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/uaip-home", constants.LogsDir), dir)
}
