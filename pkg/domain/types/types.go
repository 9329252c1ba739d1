package types

import (
	"fmt"

	"github.com/google/uuid"
)

// EmployeeID represents an employee identifier
type EmployeeID string

// String returns the string representation
func (id EmployeeID) String() string {
	return string(id)
}

// Department represents a department name
type Department string

// String returns the string representation
func (d Department) String() string {
	return string(d)
}

// DepartmentAll is the filter sentinel matching every department
const DepartmentAll Department = "all"

// ChannelID represents a Slack channel identifier
type ChannelID string

// String returns the string representation
func (id ChannelID) String() string {
	return string(id)
}

// ChannelName represents a Slack channel name
type ChannelName string

// String returns the string representation
func (n ChannelName) String() string {
	return string(n)
}

// TeamID represents a Slack workspace (team) identifier
type TeamID string

// String returns the string representation
func (id TeamID) String() string {
	return string(id)
}

// SyncRunID represents an ingestion run identifier
type SyncRunID string

// String returns the string representation
func (id SyncRunID) String() string {
	return string(id)
}

// NewSyncRunID creates a new time-ordered SyncRunID
func NewSyncRunID() SyncRunID {
	id, err := uuid.NewV7()
	if err != nil {
		return SyncRunID(fmt.Sprintf("sync-%s", uuid.New().String()))
	}
	return SyncRunID(id.String())
}

// EventID represents a connection event identifier
type EventID string

// String returns the string representation
func (id EventID) String() string {
	return string(id)
}

// NewEventID creates a new EventID
func NewEventID() EventID {
	return EventID(uuid.New().String())
}
