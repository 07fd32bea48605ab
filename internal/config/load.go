package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// configFileName is the YAML file looked up in the UAIP home.
const configFileName = "config.yaml"

// newViperInstance creates a viper instance with defaults, the UAIP_
// environment prefix, and the dot-to-underscore key replacer
// (e.g. quality.threshold <- UAIP_QUALITY_THRESHOLD).
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("UAIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption configures mapstructure decoding, covering
// duration strings like "30s" in YAML and environment values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError reports whether err is viper's missing-file
// error, which is expected and skipped silently.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration with the following precedence (highest
// first): environment variables (UAIP_*), the global config file
// (<home>/config.yaml), built-in defaults. Missing config files are
// not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Int("quality.threshold", cfg.Quality.Threshold).
		Float64("gate.threshold", cfg.Gate.Threshold).
		Str("llm.command", cfg.LLM.Command).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadGlobalConfig reads <home>/config.yaml if it exists.
func loadGlobalConfig(v *viper.Viper) error {
	path, ok := globalConfigPathIfExists(v.GetString("home"))
	if !ok {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// globalConfigPathIfExists resolves the config file path, honoring the
// home override. Returns false when the home cannot be determined or
// the file does not exist.
func globalConfigPathIfExists(homeOverride string) (string, bool) {
	dir, err := HomeDir(homeOverride)
	if err != nil {
		return "", false
	}

	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
