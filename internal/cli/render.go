package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// Cached glamour renderer for markdown output.
//
//nolint:gochecknoglobals // cached renderer for performance
var (
	glamourRenderer     *glamour.TermRenderer
	glamourRendererOnce sync.Once
)

// getGlamourRenderer returns a cached renderer, or nil when one cannot
// be constructed (callers fall back to raw markdown).
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// renderMarkdown pretty-prints markdown for a TTY and falls back to
// the raw text everywhere else.
func renderMarkdown(w io.Writer, markdown string) error {
	if term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == "" {
		if r := getGlamourRenderer(); r != nil {
			out, err := r.Render(markdown)
			if err == nil {
				_, err = fmt.Fprint(w, out)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, markdown)
	return err
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printSessionSummary writes the one-session text block shared by
// create, resume, and list.
func printSessionSummary(w io.Writer, sess *domain.Session) {
	fmt.Fprintf(w, "Session:  %s\n", sess.ID)
	fmt.Fprintf(w, "Project:  %s\n", sess.ProjectName)
	fmt.Fprintf(w, "Owner:    %s\n", sess.UserID)
	fmt.Fprintf(w, "Stage:    %d/5 (%s)\n", sess.CurrentStage, constants.StageName(sess.CurrentStage))
	fmt.Fprintf(w, "Status:   %s\n", sess.Status)
	fmt.Fprintf(w, "Updated:  %s\n", sess.LastUpdatedAt.Format(time.RFC3339))
}
