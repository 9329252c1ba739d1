package event

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// Logger writes connection events to the context logger. It is used when no
// broker is configured.
type Logger struct{}

// NewLogger creates a Logger publisher
func NewLogger() *Logger {
	return &Logger{}
}

// Publish implements interfaces.EventPublisher
func (l *Logger) Publish(ctx context.Context, event *model.ConnectionEvent) error {
	ctxlog.From(ctx).Info("connection event",
		"id", event.ID,
		"operation", event.Operation,
		"from", event.From,
		"to", event.To,
		"teamID", event.TeamID,
		"error", event.Error,
	)
	return nil
}
