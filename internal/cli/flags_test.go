package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"generic error", errors.New("boom"), ExitError},
		{"invalid output format", fmt.Errorf("%w: yaml", ErrInvalidOutputFormat), ExitInvalidInput},
		{"invalid stage number", fmt.Errorf("wrapped: %w", uaiperrors.ErrInvalidStageNumber), ExitInvalidInput},
		{"stage skip", uaiperrors.ErrStageSkip, ExitInvalidInput},
		{"gate refusal", uaiperrors.NewStageGateError(2, []string{"baseline"}, nil, 0.5), ExitInvalidInput},
		{"unknown flag", errors.New("unknown flag: --frob"), ExitInvalidInput},
		{"unknown command", errors.New(`unknown command "frob" for "uaip"`), ExitInvalidInput},
		{"persistence failure", fmt.Errorf("save: %w", uaiperrors.ErrPersistence), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev (commit: none, built: unknown)", formatVersion(BuildInfo{}))
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-08-30)",
		formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-08-30"}))
}
