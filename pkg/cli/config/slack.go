package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	slackSvc "github.com/secmon-lab/retention/pkg/service/slack"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Slack holds Slack configuration
type Slack struct {
	BotToken        string
	RequestsPerSec  float64
	Demo            bool
	DemoDelay       time.Duration
	DemoFailureRate float64
}

// SlackConnector bundles the connector ports served by one backend
type SlackConnector interface {
	interfaces.AuthProvider
	interfaces.ChannelDirectory
	interfaces.MessageCounter
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (xoxb-) used to read channels and history",
			Category:    "Slack",
			Sources:     cli.EnvVars("RETENTION_SLACK_BOT_TOKEN"),
			Destination: &s.BotToken,
		},
		&cli.FloatFlag{
			Name:        "slack-rate",
			Usage:       "Maximum Slack Web API requests per second",
			Category:    "Slack",
			Value:       1,
			Sources:     cli.EnvVars("RETENTION_SLACK_RATE"),
			Destination: &s.RequestsPerSec,
		},
		&cli.BoolFlag{
			Name:        "slack-demo",
			Usage:       "Use a simulated workspace instead of the Slack Web API",
			Category:    "Slack",
			Sources:     cli.EnvVars("RETENTION_SLACK_DEMO"),
			Destination: &s.Demo,
		},
		&cli.DurationFlag{
			Name:        "slack-demo-delay",
			Usage:       "Simulated authorization latency of the demo workspace",
			Category:    "Slack",
			Value:       2 * time.Second,
			Sources:     cli.EnvVars("RETENTION_SLACK_DEMO_DELAY"),
			Destination: &s.DemoDelay,
		},
		&cli.FloatFlag{
			Name:        "slack-demo-failure-rate",
			Usage:       "Probability that a demo authorization fails (0 to 1)",
			Category:    "Slack",
			Sources:     cli.EnvVars("RETENTION_SLACK_DEMO_FAILURE_RATE"),
			Destination: &s.DemoFailureRate,
		},
	}
}

// Configure returns the connector backend. The demo workspace is used when
// requested or when no bot token is set.
func (s *Slack) Configure(logger *slog.Logger) SlackConnector {
	if s.Demo || !s.IsConfigured() {
		logger.Warn("Slack bot token not configured, using the demo workspace")
		return slackSvc.NewDemo(s.DemoDelay, s.DemoFailureRate)
	}

	limit := rate.Limit(s.RequestsPerSec)
	if s.RequestsPerSec <= 0 {
		limit = rate.Inf
	}
	logger.Info("Configuring Slack client")
	return slackSvc.New(s.BotToken, slackSvc.WithRateLimit(limit, 5))
}

// IsConfigured checks if a bot token is set
func (s *Slack) IsConfigured() bool {
	return s.BotToken != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_bot_token", s.BotToken != ""),
		slog.Float64("requests_per_sec", s.RequestsPerSec),
		slog.Bool("demo", s.Demo),
	)
}
