package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"github.com/uaip-labs/uaip/internal/domain"
)

// addSessionCommand adds the session command group to the root command.
func addSessionCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage scoping sessions",
	}
	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	root.AddCommand(cmd)
}

// newSessionCreateCmd creates the session create command.
func newSessionCreateCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "create <project-name>",
		Short: "Start a new scoping session",
		Long: `Create a new five-stage scoping session for the named AI project.
The session starts at stage 1 (Business Translation); run 'uaip run
<session-id>' to begin the interview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runSessionCreate(cmd.Context(), a, os.Stdout, args[0], userID, outputFormat(cmd))
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "session owner (defaults to the OS user)")
	return cmd
}

// runSessionCreate executes the session create command.
func runSessionCreate(ctx context.Context, a *app, w io.Writer, projectName, userID, format string) error {
	if userID == "" {
		userID = currentUserID()
	}

	sess, err := a.manager.CreateSession(ctx, userID, projectName)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, sess)
	}

	printSessionSummary(w, sess)
	fmt.Fprintf(w, "\nNext: uaip run %s\n", sess.ID)
	return nil
}

// newSessionListCmd creates the session list command.
func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scoping sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runSessionList(cmd.Context(), a, os.Stdout, outputFormat(cmd))
		},
	}
}

// runSessionList executes the session list command.
func runSessionList(ctx context.Context, a *app, w io.Writer, format string) error {
	sessions, err := a.manager.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found. Start one with: uaip session create <project-name>")
		return nil
	}

	printSessionTable(w, sessions)
	return nil
}

// printSessionTable writes the aligned session listing.
func printSessionTable(w io.Writer, sessions []*domain.Session) {
	fmt.Fprintf(w, "%-43s %-20s %-6s %-12s %s\n", "SESSION", "PROJECT", "STAGE", "STATUS", "UPDATED")
	for _, sess := range sessions {
		fmt.Fprintf(w, "%-43s %-20s %-6s %-12s %s\n",
			sess.ID,
			truncateName(sess.ProjectName, 20),
			fmt.Sprintf("%d/5", sess.CurrentStage),
			sess.Status,
			sess.LastUpdatedAt.Format(time.RFC3339),
		)
	}
}

// truncateName shortens a name for table display.
func truncateName(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// currentUserID resolves a default session owner from the OS user.
func currentUserID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

// outputFormat reads the global --output flag from any command.
func outputFormat(cmd *cobra.Command) string {
	return cmd.Flag("output").Value.String()
}
