package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/orchestrator"
)

// addCharterCommand adds the charter command to the root command.
func addCharterCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "charter <session-id>",
		Short: "Generate the project charter for a completed session",
		Long: `Assemble the final project charter from all five stage deliverables.
A cross-stage consistency review runs first; an infeasible result
blocks generation. The charter is rendered to the terminal and saved
as charter.md in the session directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runCharter(cmd.Context(), a, os.Stdout, args[0], outputFormat(cmd))
		},
	}
	root.AddCommand(cmd)
}

// runCharter executes the charter command.
func runCharter(ctx context.Context, a *app, w io.Writer, sessionID, format string) error {
	charter, err := a.manager.GenerateCharter(ctx, sessionID)

	var charterErr *uaiperrors.CharterError
	if errors.As(err, &charterErr) {
		return reportCharterRefusal(w, charterErr, format, err)
	}
	if err != nil {
		return fmt.Errorf("failed to generate charter: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, charter)
	}

	markdown, err := orchestrator.RenderCharterMarkdown(charter)
	if err != nil {
		return fmt.Errorf("failed to render charter: %w", err)
	}
	if err := renderMarkdown(w, markdown); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSaved to %s\n", a.charterPath(sessionID))
	return nil
}

// reportCharterRefusal explains why charter generation was blocked.
func reportCharterRefusal(w io.Writer, charterErr *uaiperrors.CharterError, format string, err error) error {
	if format == OutputJSON {
		_ = printJSON(w, map[string]any{
			"status":         "blocked",
			"reason":         charterErr.Reason,
			"missing_stages": charterErr.MissingStages,
			"contradictions": charterErr.Contradictions,
		})
		return err
	}

	fmt.Fprintf(w, "Charter blocked: %s\n", charterErr.Reason)
	if len(charterErr.MissingStages) > 0 {
		fmt.Fprintf(w, "Missing stages: %v\n", charterErr.MissingStages)
	}
	for _, contradiction := range charterErr.Contradictions {
		fmt.Fprintf(w, "  - %s\n", contradiction)
	}
	return err
}
