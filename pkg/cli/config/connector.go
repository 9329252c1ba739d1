package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/retention/pkg/service/llm"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Connector holds connector and advice settings
type Connector struct {
	AuthTimeout time.Duration
	MaxActions  int
}

// Flags returns CLI flags for Connector configuration
func (c *Connector) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "auth-timeout",
			Usage:       "Upper bound of one connect or reconnect authorization",
			Category:    "Connector",
			Value:       usecase.DefaultAuthTimeout,
			Sources:     cli.EnvVars("RETENTION_AUTH_TIMEOUT"),
			Destination: &c.AuthTimeout,
		},
		&cli.IntFlag{
			Name:        "advice-max-actions",
			Usage:       "Number of recommended actions per high-risk employee",
			Category:    "Connector",
			Value:       llm.DefaultMaxActions,
			Sources:     cli.EnvVars("RETENTION_ADVICE_MAX_ACTIONS"),
			Destination: &c.MaxActions,
		},
	}
}

// LogValue returns structured log value
func (c Connector) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("auth_timeout", c.AuthTimeout),
		slog.Int("advice_max_actions", c.MaxActions),
	)
}
