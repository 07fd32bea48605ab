// Package main provides the entry point for the uaip CLI.
package main

import (
	"context"
	"os"

	"github.com/uaip-labs/uaip/internal/cli"
)

// Build-time variables set via ldflags.
//
//nolint:gochecknoglobals // ldflags injection targets
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
