package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/uaip-labs/uaip/internal/domain"
)

// addCheckCommand adds the check command to the root command.
func addCheckCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "check <session-id>",
		Short: "Run the cross-stage consistency review",
		Long: `Compare adjacent stage deliverables for contradictions using the
external model CLI and report overall feasibility. The review is
advisory; only an INFEASIBLE result blocks charter generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil, GetLogger())
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), a, os.Stdout, args[0], outputFormat(cmd))
		},
	}
	root.AddCommand(cmd)
}

// runCheck executes the check command.
func runCheck(ctx context.Context, a *app, w io.Writer, sessionID, format string) error {
	report, err := a.manager.RunConsistencyCheck(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to run consistency check: %w", err)
	}

	if format == OutputJSON {
		return printJSON(w, report)
	}

	printConsistencyReport(w, report)
	return nil
}

// printConsistencyReport writes the human-readable review summary.
func printConsistencyReport(w io.Writer, report *domain.ConsistencyReport) {
	fmt.Fprintf(w, "Consistent: %v\n", report.IsConsistent)
	fmt.Fprintf(w, "Feasibility: %s\n", report.OverallFeasibility)

	if len(report.Contradictions) > 0 {
		fmt.Fprintln(w, "\nContradictions:")
		for _, c := range report.Contradictions {
			fmt.Fprintf(w, "  - [%s] stages %d-%d: %s\n", c.Severity, c.StageFrom, c.StageTo, c.Description)
		}
	}
	if len(report.RiskAreas) > 0 {
		fmt.Fprintln(w, "\nRisk areas:")
		for _, r := range report.RiskAreas {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range report.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
