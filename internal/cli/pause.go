package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// addPauseCommand adds the pause command to the root command.
func addPauseCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "pause <session-id>",
		Short: "Pause an in-progress session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runPause(cmd.Context(), a, os.Stdout, args[0], outputFormat(cmd))
		},
	}
	root.AddCommand(cmd)
}

// runPause executes the pause command.
func runPause(ctx context.Context, a *app, w io.Writer, sessionID, format string) error {
	if err := a.manager.PauseSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to pause session: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, map[string]string{"status": "paused", "session_id": sessionID})
	}

	fmt.Fprintf(w, "Session paused. Resume with: uaip resume %s\n", sessionID)
	return nil
}
