package model

import (
	"time"

	"github.com/secmon-lab/retention/pkg/domain/types"
)

// Workspace is the handle returned by a successful authorization
type Workspace struct {
	TeamID      types.TeamID `json:"team_id"`
	TeamName    string       `json:"team_name"`
	URL         string       `json:"url,omitempty"`
	AccessToken string       `json:"-"`
}

// ConnectionState is a read-only snapshot of the connector lifecycle.
// ErrorMessage is set in the error state, and also in the connected state
// after a failed reconnect.
type ConnectionState struct {
	Status       types.ConnectionStatus `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	LastSyncAt   *time.Time             `json:"last_sync_at,omitempty"`
	Workspace    *Workspace             `json:"workspace,omitempty"`
}

// IsConnected reports whether the status is connected
func (s ConnectionState) IsConnected() bool {
	return s.Status == types.ConnectionStatusConnected
}

// ConnectionEvent records one transition of the connector
type ConnectionEvent struct {
	ID        types.EventID          `json:"id"`
	Operation string                 `json:"operation"`
	From      types.ConnectionStatus `json:"from"`
	To        types.ConnectionStatus `json:"to"`
	Error     string                 `json:"error,omitempty"`
	TeamID    types.TeamID           `json:"team_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewConnectionEvent creates a ConnectionEvent stamped with now
func NewConnectionEvent(operation string, from, to types.ConnectionStatus, now time.Time) *ConnectionEvent {
	return &ConnectionEvent{
		ID:        types.NewEventID(),
		Operation: operation,
		From:      from,
		To:        to,
		Timestamp: now,
	}
}
