package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/repository"
	"github.com/urfave/cli/v3"
)

// SQLite holds configuration of the local database file
type SQLite struct {
	Path string
}

// Flags returns CLI flags for SQLite configuration
func (s *SQLite) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path of a SQLite database file (used when Firestore is not configured)",
			Category:    "Storage",
			Sources:     cli.EnvVars("RETENTION_SQLITE_PATH"),
			Destination: &s.Path,
		},
	}
}

// Configure opens the SQLite repository
func (s *SQLite) Configure(ctx context.Context) (interfaces.Repository, error) {
	repo, err := repository.NewSQLite(ctx, s.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init sqlite", goerr.V("path", s.Path))
	}
	return repo, nil
}

// IsConfigured checks if a database path is set
func (s *SQLite) IsConfigured() bool {
	return s.Path != ""
}

// LogValue returns structured log value
func (s SQLite) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", s.Path))
}
