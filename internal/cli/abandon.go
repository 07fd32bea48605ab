package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// addAbandonCommand adds the abandon command to the root command.
func addAbandonCommand(root *cobra.Command) {
	var force bool

	cmd := &cobra.Command{
		Use:   "abandon <session-id>",
		Short: "Abandon a session permanently",
		Long: `Mark a session abandoned. The session files stay on disk for
reference, but no further interviews, advances, or charter generation
are possible. This cannot be undone.

Use --force to skip the confirmation prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runAbandon(cmd.Context(), a, os.Stdout, args[0], force, outputFormat(cmd))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	root.AddCommand(cmd)
}

// createAbandonConfirmForm is the factory for the abandon confirmation
// form. Overridable in tests.
//
//nolint:gochecknoglobals // test injection point
var createAbandonConfirmForm = defaultCreateAbandonConfirmForm

// defaultCreateAbandonConfirmForm builds the huh confirmation form.
func defaultCreateAbandonConfirmForm(sessionID string, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Abandon session %s?", sessionID)).
				Description("Collected answers remain on disk but the session can never be resumed.").
				Affirmative("Yes, abandon").
				Negative("No, keep it").
				Value(confirm),
		),
	)
}

// runAbandon executes the abandon command.
func runAbandon(ctx context.Context, a *app, w io.Writer, sessionID string, force bool, format string) error {
	if !force {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to abandon without confirmation in non-interactive mode; use --force")
		}

		var confirm bool
		if err := createAbandonConfirmForm(sessionID, &confirm).Run(); err != nil {
			return fmt.Errorf("failed to get confirmation: %w", err)
		}
		if !confirm {
			fmt.Fprintln(w, "Abandonment canceled.")
			return nil
		}
	}

	if err := a.manager.AbandonSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to abandon session: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, map[string]string{"status": "abandoned", "session_id": sessionID})
	}

	fmt.Fprintf(w, "Session %s abandoned.\n", sessionID)
	return nil
}
