package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// addResumeCommand adds the resume command to the root command.
func addResumeCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume a paused or interrupted session",
		Long: `Restore the session from its latest checkpoint and put it back in
progress. Stage data and conversation history collected before the
interruption are preserved; the interview picks up at the restored
stage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runResume(cmd.Context(), a, os.Stdout, args[0], outputFormat(cmd))
		},
	}
	root.AddCommand(cmd)
}

// runResume executes the resume command.
func runResume(ctx context.Context, a *app, w io.Writer, sessionID, format string) error {
	sess, err := a.manager.ResumeSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to resume session: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, sess)
	}

	printSessionSummary(w, sess)
	fmt.Fprintf(w, "\nNext: uaip run %s\n", sess.ID)
	return nil
}
