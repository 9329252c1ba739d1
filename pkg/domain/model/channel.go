package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// ChannelDescriptor describes a channel supplied by the channel directory
type ChannelDescriptor struct {
	ID          types.ChannelID   `json:"id"`
	Name        types.ChannelName `json:"name"`
	MemberCount int               `json:"member_count"`
	IsPrivate   bool              `json:"is_private"`
}

// VisibleChannels returns the channels visible under includePrivate,
// preserving order
func VisibleChannels(channels []ChannelDescriptor, includePrivate bool) []ChannelDescriptor {
	visible := make([]ChannelDescriptor, 0, len(channels))
	for _, ch := range channels {
		if includePrivate || !ch.IsPrivate {
			visible = append(visible, ch)
		}
	}
	return visible
}

// AllowedRetentionDays lists the accepted retention periods
var AllowedRetentionDays = []int{7, 30, 90, 180, 365}

// DefaultRetentionDays is the retention of a fresh selection
const DefaultRetentionDays = 30

// ValidateRetentionDays fails unless days is an allowed retention period
func ValidateRetentionDays(days int) error {
	if !slices.Contains(AllowedRetentionDays, days) {
		return goerr.New("invalid retention days",
			goerr.T(ErrTagValidation),
			goerr.V("days", days),
			goerr.V("allowed", AllowedRetentionDays))
	}
	return nil
}

// SyncFrequency controls how often selected channels are ingested
type SyncFrequency string

const (
	SyncFrequencyRealtime SyncFrequency = "realtime"
	SyncFrequencyHourly   SyncFrequency = "hourly"
	SyncFrequencyDaily    SyncFrequency = "daily"
	SyncFrequencyWeekly   SyncFrequency = "weekly"
)

// String returns the string representation
func (f SyncFrequency) String() string {
	return string(f)
}

// Validate fails unless f is a known frequency
func (f SyncFrequency) Validate() error {
	switch f {
	case SyncFrequencyRealtime, SyncFrequencyHourly, SyncFrequencyDaily, SyncFrequencyWeekly:
		return nil
	default:
		return goerr.New("invalid sync frequency",
			goerr.T(ErrTagValidation),
			goerr.V("frequency", f))
	}
}

// CronSpec returns the cron schedule of the frequency. Realtime is
// approximated by polling every five minutes.
func (f SyncFrequency) CronSpec() string {
	switch f {
	case SyncFrequencyRealtime:
		return "@every 5m"
	case SyncFrequencyHourly:
		return "@hourly"
	case SyncFrequencyWeekly:
		return "@weekly"
	default:
		return "@daily"
	}
}

// ChannelSelection is a snapshot of the ingestion configuration
type ChannelSelection struct {
	ChannelIDs             []types.ChannelID `json:"channel_ids"`
	IncludePrivateChannels bool              `json:"include_private_channels"`
	RetentionDays          int               `json:"retention_days"`
	SyncFrequency          SyncFrequency     `json:"sync_frequency"`
}

// DefaultChannelSelection returns the selection of a fresh session
func DefaultChannelSelection() ChannelSelection {
	return ChannelSelection{
		ChannelIDs:    []types.ChannelID{},
		RetentionDays: DefaultRetentionDays,
		SyncFrequency: SyncFrequencyDaily,
	}
}

// IsSelected reports whether id is part of the selection
func (s ChannelSelection) IsSelected(id types.ChannelID) bool {
	return slices.Contains(s.ChannelIDs, id)
}

// ConnectorConfig is a saved channel selection of a workspace
type ConnectorConfig struct {
	TeamID                 types.TeamID      `json:"team_id" firestore:"team_id"`
	TeamName               string            `json:"team_name" firestore:"team_name"`
	ChannelIDs             []types.ChannelID `json:"channel_ids" firestore:"channel_ids"`
	IncludePrivateChannels bool              `json:"include_private_channels" firestore:"include_private_channels"`
	RetentionDays          int               `json:"retention_days" firestore:"retention_days"`
	SyncFrequency          SyncFrequency     `json:"sync_frequency" firestore:"sync_frequency"`
	SavedAt                time.Time         `json:"saved_at" firestore:"saved_at"`
}

// NewConnectorConfig builds a config from a selection snapshot
func NewConnectorConfig(ws *Workspace, sel ChannelSelection, now time.Time) *ConnectorConfig {
	cfg := &ConnectorConfig{
		ChannelIDs:             slices.Clone(sel.ChannelIDs),
		IncludePrivateChannels: sel.IncludePrivateChannels,
		RetentionDays:          sel.RetentionDays,
		SyncFrequency:          sel.SyncFrequency,
		SavedAt:                now,
	}
	if ws != nil {
		cfg.TeamID = ws.TeamID
		cfg.TeamName = ws.TeamName
	}
	return cfg
}

// Validate validates the saved config
func (c *ConnectorConfig) Validate() error {
	if c.TeamID == "" {
		return goerr.New("team ID is required", goerr.T(ErrTagValidation))
	}
	if len(c.ChannelIDs) == 0 {
		return goerr.New("nothing selected", goerr.T(ErrTagValidation))
	}
	if err := ValidateRetentionDays(c.RetentionDays); err != nil {
		return err
	}
	return c.SyncFrequency.Validate()
}

// SyncRun records one ingestion run over the selected channels
type SyncRun struct {
	ID            types.SyncRunID         `json:"id" firestore:"id"`
	TeamID        types.TeamID            `json:"team_id" firestore:"team_id"`
	StartedAt     time.Time               `json:"started_at" firestore:"started_at"`
	FinishedAt    time.Time               `json:"finished_at" firestore:"finished_at"`
	MessageCounts map[types.ChannelID]int `json:"message_counts" firestore:"message_counts"`
	Errors        []string                `json:"errors,omitempty" firestore:"errors"`
}

// TotalMessages sums the message counts of all channels
func (r *SyncRun) TotalMessages() int {
	total := 0
	for _, n := range r.MessageCounts {
		total += n
	}
	return total
}
