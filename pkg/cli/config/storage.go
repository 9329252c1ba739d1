package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Storage selects the repository backend: Firestore, then SQLite, then
// memory
type Storage struct {
	Firestore Firestore
	SQLite    SQLite
}

// Flags returns CLI flags of every backend
func (s *Storage) Flags() []cli.Flag {
	return append(s.Firestore.Flags(), s.SQLite.Flags()...)
}

// Configure opens the first configured backend
func (s *Storage) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch {
	case s.Firestore.IsConfigured():
		return s.Firestore.Configure(ctx)
	case s.SQLite.IsConfigured():
		return s.SQLite.Configure(ctx)
	default:
		ctxlog.From(ctx).Warn("Using memory database instead of firestore or sqlite. The data will be removed when shutting down")
		return repository.NewMemory(), nil
	}
}

// LogValue returns structured log value
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("firestore", s.Firestore),
		slog.Any("sqlite", s.SQLite),
	)
}
