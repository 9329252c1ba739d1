package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/utils/apperr"
)

// Dispatch runs handler in the background so that a request can return before
// the work finishes. The handler context keeps the values of ctx, including the
// logger, but is not canceled with it. The returned channel is closed when the
// handler returns.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := context.WithoutCancel(ctx)
	bgCtx = ctxlog.With(bgCtx, ctxlog.From(ctx).With("task", task))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				apperr.Handle(bgCtx, goerr.New("panic in background task",
					goerr.V("recover", r),
					goerr.V("stack", string(debug.Stack()))))
			}
		}()

		apperr.Handle(bgCtx, handler(bgCtx))
	}()

	return done
}
