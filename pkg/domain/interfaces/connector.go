package interfaces

//go:generate moq -out mocks/connector_mock.go -pkg mocks . AuthProvider ChannelDirectory MessageCounter EventPublisher

import (
	"context"
	"time"

	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// AuthProvider performs the authorization exchange with the chat platform.
// A ConnectionManager never has more than one call in flight.
type AuthProvider interface {
	BeginAuthorization(ctx context.Context) (*model.Workspace, error)
}

// ChannelDirectory lists the channels of an authorized workspace
type ChannelDirectory interface {
	ListChannels(ctx context.Context, ws *model.Workspace) ([]model.ChannelDescriptor, error)
}

// MessageCounter counts messages posted to a channel since a point in time
type MessageCounter interface {
	CountMessages(ctx context.Context, ws *model.Workspace, channelID types.ChannelID, since time.Time) (int, error)
}

// EventPublisher delivers connector lifecycle events to an external sink
type EventPublisher interface {
	Publish(ctx context.Context, event *model.ConnectionEvent) error
}
