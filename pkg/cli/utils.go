package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

// joinFlags combines multiple flag slices into one
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

// safeClose closes c and logs a failure instead of returning it
func safeClose(ctx context.Context, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		ctxlog.From(ctx).Warn("failed to close "+name, "error", err)
	}
}
