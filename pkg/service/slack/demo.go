package slack

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// DemoWorkspace is the workspace returned by the demo connector
var DemoWorkspace = model.Workspace{
	TeamID:   "T0DEMO0001",
	TeamName: "demo-workspace",
	URL:      "https://demo-workspace.slack.com/",
}

// DemoChannels are the channels listed by the demo connector
var DemoChannels = []model.ChannelDescriptor{
	{ID: "C1234567890", Name: "general", MemberCount: 45},
	{ID: "C2345678901", Name: "random", MemberCount: 32},
	{ID: "C3456789012", Name: "engineering", MemberCount: 15},
	{ID: "C4567890123", Name: "hr-team", MemberCount: 8, IsPrivate: true},
	{ID: "C5678901234", Name: "management", MemberCount: 12, IsPrivate: true},
	{ID: "C6789012345", Name: "project-alpha", MemberCount: 6},
}

// Demo simulates a Slack workspace without network access. Authorization
// takes Delay and fails with probability FailureRate.
type Demo struct {
	Delay       time.Duration
	FailureRate float64
	now         func() time.Time
}

// NewDemo creates a demo connector
func NewDemo(delay time.Duration, failureRate float64) *Demo {
	return &Demo{
		Delay:       delay,
		FailureRate: failureRate,
		now:         time.Now,
	}
}

// BeginAuthorization waits for Delay and then returns DemoWorkspace
func (d *Demo) BeginAuthorization(ctx context.Context) (*model.Workspace, error) {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "authorization canceled")
		case <-timer.C:
		}
	}

	if d.FailureRate > 0 && rand.Float64() < d.FailureRate {
		return nil, goerr.New("demo authorization rejected")
	}

	ws := DemoWorkspace
	return &ws, nil
}

// ListChannels returns a copy of DemoChannels
func (d *Demo) ListChannels(ctx context.Context, ws *model.Workspace) ([]model.ChannelDescriptor, error) {
	return slices.Clone(DemoChannels), nil
}

// CountMessages returns one message per member and started day since the
// given time
func (d *Demo) CountMessages(ctx context.Context, ws *model.Workspace, channelID types.ChannelID, since time.Time) (int, error) {
	idx := slices.IndexFunc(DemoChannels, func(ch model.ChannelDescriptor) bool {
		return ch.ID == channelID
	})
	if idx < 0 {
		return 0, goerr.New("channel_not_found", goerr.V("channel_id", channelID))
	}

	days := 1
	if !since.IsZero() {
		elapsed := d.now().Sub(since)
		days = int((elapsed + 24*time.Hour - 1) / (24 * time.Hour))
		if days < 1 {
			days = 1
		}
	}
	return DemoChannels[idx].MemberCount * days, nil
}
