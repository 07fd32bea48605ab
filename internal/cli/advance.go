package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/uaip-labs/uaip/internal/constants"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// addAdvanceCommand adds the advance command to the root command.
func addAdvanceCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "advance <session-id>",
		Short: "Validate the current stage and advance past its gate",
		Long: `Run the stage-gate validation for the session's current stage. When
the deliverable is complete the session moves to the next stage (or to
completed after stage 5) and a checkpoint is written. When it is not,
the missing items and concerns are listed and the session stays put.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runAdvance(cmd.Context(), a, os.Stdout, args[0], outputFormat(cmd))
		},
	}
	root.AddCommand(cmd)
}

// advanceResult is the JSON output for advance operations.
type advanceResult struct {
	Status       string   `json:"status"`
	SessionID    string   `json:"session_id"`
	CurrentStage int      `json:"current_stage,omitempty"`
	Score        float64  `json:"score,omitempty"`
	MissingItems []string `json:"missing_items,omitempty"`
	Concerns     []string `json:"concerns,omitempty"`
}

// runAdvance executes the advance command.
func runAdvance(ctx context.Context, a *app, w io.Writer, sessionID, format string) error {
	sess, err := a.manager.AdvanceToNextStage(ctx, sessionID)

	var gateErr *uaiperrors.StageGateError
	if errors.As(err, &gateErr) {
		return reportGateRefusal(w, sessionID, gateErr, format, err)
	}
	if err != nil {
		return fmt.Errorf("failed to advance: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, advanceResult{
			Status:       string(sess.Status),
			SessionID:    sess.ID,
			CurrentStage: sess.CurrentStage,
		})
	}

	if sess.Status == constants.SessionStatusCompleted {
		fmt.Fprintln(w, "All five stages complete.")
		fmt.Fprintf(w, "Next: uaip charter %s\n", sess.ID)
		return nil
	}

	fmt.Fprintf(w, "Advanced to stage %d: %s\n", sess.CurrentStage, constants.StageName(sess.CurrentStage))
	fmt.Fprintf(w, "Next: uaip run %s\n", sess.ID)
	return nil
}

// reportGateRefusal explains why the gate blocked progression. The
// original error is returned so the exit code reflects the refusal.
func reportGateRefusal(w io.Writer, sessionID string, gateErr *uaiperrors.StageGateError, format string, err error) error {
	if format == OutputJSON {
		_ = printJSON(w, advanceResult{
			Status:       "gate_failed",
			SessionID:    sessionID,
			CurrentStage: gateErr.Stage,
			Score:        gateErr.Score,
			MissingItems: gateErr.MissingItems,
			Concerns:     gateErr.Concerns,
		})
		return err
	}

	fmt.Fprintf(w, "Stage %d gate refused (completeness %.0f%%).\n", gateErr.Stage, gateErr.Score*100)
	if len(gateErr.MissingItems) > 0 {
		fmt.Fprintln(w, "\nMissing:")
		for _, item := range gateErr.MissingItems {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	if len(gateErr.Concerns) > 0 {
		fmt.Fprintln(w, "\nConcerns:")
		for _, concern := range gateErr.Concerns {
			fmt.Fprintf(w, "  - %s\n", concern)
		}
	}
	fmt.Fprintf(w, "\nFill the gaps with: uaip run %s\n", sessionID)
	return err
}
