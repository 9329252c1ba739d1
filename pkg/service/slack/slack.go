package slack

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const (
	// pageSize is the page size requested from conversations.list and
	// conversations.history
	pageSize = 200

	// maxHistoryPages bounds the pages read for a single channel count
	maxHistoryPages = 50
)

// ignoredSubtypes are membership notices that are not conversation
var ignoredSubtypes = map[string]bool{
	"channel_join":  true,
	"channel_leave": true,
	"group_join":    true,
	"group_leave":   true,
}

// Service talks to the Slack Web API with a bot token. It serves as the
// AuthProvider, ChannelDirectory and MessageCounter of the connector.
type Service struct {
	client *slack.Client
	token  string
	guard  *guard
}

type config struct {
	apiURL   string
	limit    rate.Limit
	burst    int
	attempts uint
}

// Option configures a Service
type Option func(*config)

// WithAPIURL overrides the Slack Web API endpoint
func WithAPIURL(url string) Option {
	return func(c *config) {
		c.apiURL = url
	}
}

// WithRateLimit sets the sustained request rate and burst
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *config) {
		c.limit = limit
		c.burst = burst
	}
}

// WithAttempts sets the number of attempts of a retryable call
func WithAttempts(attempts uint) Option {
	return func(c *config) {
		c.attempts = attempts
	}
}

// New creates a new Slack service
func New(token string, opts ...Option) *Service {
	cfg := config{
		limit:    defaultRateLimit,
		burst:    defaultRateBurst,
		attempts: defaultAttempts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var clientOpts []slack.Option
	if cfg.apiURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &Service{
		client: slack.New(token, clientOpts...),
		token:  token,
		guard:  newGuard(cfg.limit, cfg.burst, cfg.attempts),
	}
}

// BeginAuthorization verifies the bot token with auth.test and returns the
// workspace it belongs to
func (s *Service) BeginAuthorization(ctx context.Context) (*model.Workspace, error) {
	var resp *slack.AuthTestResponse
	err := s.guard.do(ctx, "auth.test", func(ctx context.Context) error {
		var err error
		resp, err = s.client.AuthTestContext(ctx)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to authenticate with Slack")
	}
	if resp.TeamID == "" {
		return nil, goerr.New("auth.test returned no team")
	}

	ctxlog.From(ctx).Info("slack workspace authorized",
		"teamID", resp.TeamID,
		"team", resp.Team,
		"botID", resp.BotID,
	)

	return &model.Workspace{
		TeamID:      types.TeamID(resp.TeamID),
		TeamName:    resp.Team,
		URL:         resp.URL,
		AccessToken: s.token,
	}, nil
}

// ListChannels returns the public and private channels visible to the bot,
// excluding archived ones
func (s *Service) ListChannels(ctx context.Context, ws *model.Workspace) ([]model.ChannelDescriptor, error) {
	var result []model.ChannelDescriptor
	cursor := ""

	for {
		params := &slack.GetConversationsParameters{
			Cursor:          cursor,
			ExcludeArchived: true,
			Limit:           pageSize,
			Types:           []string{"public_channel", "private_channel"},
		}

		var (
			channels []slack.Channel
			next     string
		)
		err := s.guard.do(ctx, "conversations.list", func(ctx context.Context) error {
			var err error
			channels, next, err = s.client.GetConversationsContext(ctx, params)
			return err
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list conversations", goerr.V("team_id", ws.TeamID))
		}

		for _, ch := range channels {
			result = append(result, model.ChannelDescriptor{
				ID:          types.ChannelID(ch.ID),
				Name:        types.ChannelName(ch.Name),
				MemberCount: ch.NumMembers,
				IsPrivate:   ch.IsPrivate,
			})
		}

		if next == "" {
			break
		}
		cursor = next
	}

	return result, nil
}

// CountMessages counts top-level messages posted to channelID since the
// given time. Membership notices are not counted.
func (s *Service) CountMessages(ctx context.Context, ws *model.Workspace, channelID types.ChannelID, since time.Time) (int, error) {
	count := 0
	cursor := ""

	for page := 0; page < maxHistoryPages; page++ {
		params := &slack.GetConversationHistoryParameters{
			ChannelID: channelID.String(),
			Cursor:    cursor,
			Limit:     pageSize,
		}
		if !since.IsZero() {
			params.Oldest = formatTimestamp(since)
		}

		var history *slack.GetConversationHistoryResponse
		err := s.guard.do(ctx, "conversations.history", func(ctx context.Context) error {
			var err error
			history, err = s.client.GetConversationHistoryContext(ctx, params)
			return err
		})
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get channel history",
				goerr.V("channel_id", channelID),
				goerr.V("team_id", ws.TeamID))
		}

		for _, msg := range history.Messages {
			if ignoredSubtypes[msg.SubType] {
				continue
			}
			count++
		}

		if !history.HasMore || history.ResponseMetaData.NextCursor == "" {
			return count, nil
		}
		cursor = history.ResponseMetaData.NextCursor
	}

	ctxlog.From(ctx).Warn("channel history truncated",
		"channelID", channelID,
		"pages", maxHistoryPages,
		"count", count,
	)
	return count, nil
}

func formatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + ".000000"
}
