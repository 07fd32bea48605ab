package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/uaip-labs/uaip/internal/constants"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/signal"
)

// pauseTimeout bounds the best-effort pause after Ctrl+C.
const pauseTimeout = 10 * time.Second

// addRunCommand adds the run command to the root command.
func addRunCommand(root *cobra.Command) {
	var stageNumber int

	cmd := &cobra.Command{
		Use:   "run <session-id>",
		Short: "Run the interview for the session's current stage",
		Long: `Conduct the interactive interview for one stage. Questions come one
at a time; weak answers get a follow-up, and the collected responses
build the stage deliverable.

Ctrl+C pauses the session; resume later with 'uaip resume'.

By default the session's current stage runs. Use --stage to re-run an
earlier, already-completed stage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), newHuhResponder(), GetLogger())
			if err != nil {
				return err
			}
			return runStage(cmd.Context(), a, os.Stdout, args[0], stageNumber, outputFormat(cmd))
		},
	}

	cmd.Flags().IntVarP(&stageNumber, "stage", "s", 0, "stage to run (defaults to the session's current stage)")
	root.AddCommand(cmd)
}

// runStage executes the run command.
func runStage(ctx context.Context, a *app, w io.Writer, sessionID string, stageNumber int, format string) error {
	sess, err := a.manager.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if stageNumber == 0 {
		stageNumber = sess.CurrentStage
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	if format != OutputJSON {
		fmt.Fprintf(w, "Stage %d: %s\n\n", stageNumber, constants.StageName(stageNumber))
	}

	deliverable, err := a.manager.RunStage(handler.Context(), sessionID, stageNumber)

	select {
	case <-handler.Interrupted():
		return pauseInterrupted(a, w, sessionID)
	default:
	}

	if err != nil {
		if errors.Is(err, uaiperrors.ErrInterviewAborted) {
			return fmt.Errorf("interview aborted: %w", err)
		}
		return fmt.Errorf("failed to run stage %d: %w", stageNumber, err)
	}

	if format == OutputJSON {
		return printJSON(w, deliverable)
	}

	fmt.Fprintf(w, "\nStage %d interview complete.\n", stageNumber)
	fmt.Fprintf(w, "Next: uaip advance %s\n", sessionID)
	return nil
}

// pauseInterrupted persists a paused state after Ctrl+C. The original
// context is already canceled, so the pause runs under its own
// deadline.
func pauseInterrupted(a *app, w io.Writer, sessionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pauseTimeout)
	defer cancel()

	if err := a.manager.PauseSession(ctx, sessionID); err != nil {
		return fmt.Errorf("interrupted, and pausing the session failed: %w", err)
	}

	fmt.Fprintf(w, "\nInterrupted. Session paused; resume with: uaip resume %s\n", sessionID)
	return nil
}
