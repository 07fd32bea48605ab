package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/uaip-labs/uaip/internal/constants"
)

// HomeDir resolves the UAIP state directory. Precedence: the explicit
// override (config file / flag), the UAIP_HOME environment variable,
// then ~/.uaip.
func HomeDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv("UAIP_HOME"); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, constants.UAIPHome), nil
}

// LogsDir returns the directory for rotated CLI log files.
func LogsDir(homeOverride string) (string, error) {
	home, err := HomeDir(homeOverride)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir), nil
}
