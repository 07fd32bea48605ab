// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports whether the context is done, returning its error
// (context.Canceled or context.DeadlineExceeded) if so and nil
// otherwise. Used at function entry points throughout the codebase.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
