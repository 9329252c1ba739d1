package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS employees (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	department       TEXT NOT NULL,
	position         TEXT DEFAULT '',
	join_date        TEXT DEFAULT '',
	age              INTEGER DEFAULT 0,
	risk_score       INTEGER NOT NULL,
	top_risk_factors TEXT DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS connector_configs (
	team_id                  TEXT PRIMARY KEY,
	team_name                TEXT DEFAULT '',
	channel_ids              TEXT NOT NULL DEFAULT '[]',
	include_private_channels INTEGER NOT NULL DEFAULT 0,
	retention_days           INTEGER NOT NULL,
	sync_frequency           TEXT NOT NULL,
	saved_at                 DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id             TEXT PRIMARY KEY,
	team_id        TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	finished_at    DATETIME,
	message_counts TEXT NOT NULL DEFAULT '{}',
	errors         TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_team_started ON sync_runs(team_id, started_at);
`

// SQLite implements Repository interface with a SQLite database file.
// Nested values are stored as JSON text columns.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at path
func NewSQLite(ctx context.Context, path string) (interfaces.Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	// A single writer avoids "database is locked" under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize sqlite schema", goerr.V("path", path))
	}

	ctxlog.From(ctx).Info("SQLite repository initialized successfully", "path", path)

	return &SQLite{db: db}, nil
}

// PutEmployee saves an employee record
func (s *SQLite) PutEmployee(ctx context.Context, employee *model.Employee) error {
	if employee == nil {
		return goerr.New("employee is nil")
	}
	if employee.ID == "" {
		return goerr.New("employee ID is empty")
	}

	factors, err := json.Marshal(employee.TopRiskFactors)
	if err != nil {
		return goerr.Wrap(err, "failed to encode risk factors")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, department, position, join_date, age, risk_score, top_risk_factors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, department = excluded.department, position = excluded.position,
		   join_date = excluded.join_date, age = excluded.age, risk_score = excluded.risk_score,
		   top_risk_factors = excluded.top_risk_factors`,
		employee.ID.String(), employee.Name, employee.Department.String(), employee.Position,
		employee.JoinDate, employee.Age, employee.RiskScore, string(factors),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save employee to sqlite",
			goerr.V("employee_id", employee.ID))
	}
	return nil
}

// GetEmployee retrieves an employee record by ID
func (s *SQLite) GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error) {
	if id == "" {
		return nil, goerr.New("employee ID is empty")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, department, position, join_date, age, risk_score, top_risk_factors
		 FROM employees WHERE id = ?`, id.String())

	employee, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrEmployeeNotFound, "failed to get employee",
			goerr.V("employee_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get employee from sqlite")
	}
	return employee, nil
}

// ListEmployees returns every employee record ordered by ID
func (s *SQLite) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, department, position, join_date, age, risk_score, top_risk_factors
		 FROM employees ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query employees")
	}
	defer rows.Close()

	employees := []*model.Employee{}
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan employee")
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate employees")
	}
	return employees, nil
}

// PutConnectorConfig saves the connector configuration of a workspace
func (s *SQLite) PutConnectorConfig(ctx context.Context, config *model.ConnectorConfig) error {
	if config == nil {
		return goerr.New("connector config is nil")
	}
	if config.TeamID == "" {
		return goerr.New("team ID is empty")
	}

	channelIDs, err := json.Marshal(config.ChannelIDs)
	if err != nil {
		return goerr.Wrap(err, "failed to encode channel IDs")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO connector_configs (team_id, team_name, channel_ids, include_private_channels, retention_days, sync_frequency, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(team_id) DO UPDATE SET
		   team_name = excluded.team_name, channel_ids = excluded.channel_ids,
		   include_private_channels = excluded.include_private_channels,
		   retention_days = excluded.retention_days, sync_frequency = excluded.sync_frequency,
		   saved_at = excluded.saved_at`,
		config.TeamID.String(), config.TeamName, string(channelIDs), config.IncludePrivateChannels,
		config.RetentionDays, config.SyncFrequency.String(), config.SavedAt.UTC(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save connector config to sqlite",
			goerr.V("team_id", config.TeamID))
	}
	return nil
}

// GetConnectorConfig retrieves the connector configuration of a workspace
func (s *SQLite) GetConnectorConfig(ctx context.Context, teamID types.TeamID) (*model.ConnectorConfig, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	var (
		config     model.ConnectorConfig
		channelIDs string
		frequency  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT team_id, team_name, channel_ids, include_private_channels, retention_days, sync_frequency, saved_at
		 FROM connector_configs WHERE team_id = ?`, teamID.String(),
	).Scan(&config.TeamID, &config.TeamName, &channelIDs, &config.IncludePrivateChannels,
		&config.RetentionDays, &frequency, &config.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrConnectorConfigNotFound, "failed to get connector config",
			goerr.V("team_id", teamID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connector config from sqlite")
	}

	if err := json.Unmarshal([]byte(channelIDs), &config.ChannelIDs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode channel IDs", goerr.V("team_id", teamID))
	}
	config.SyncFrequency = model.SyncFrequency(frequency)
	return &config, nil
}

// PutSyncRun saves a sync run
func (s *SQLite) PutSyncRun(ctx context.Context, run *model.SyncRun) error {
	if run == nil {
		return goerr.New("sync run is nil")
	}
	if run.ID == "" {
		return goerr.New("sync run ID is empty")
	}

	counts, err := json.Marshal(run.MessageCounts)
	if err != nil {
		return goerr.Wrap(err, "failed to encode message counts")
	}
	runErrors, err := json.Marshal(run.Errors)
	if err != nil {
		return goerr.Wrap(err, "failed to encode run errors")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, team_id, started_at, finished_at, message_counts, errors)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   team_id = excluded.team_id, started_at = excluded.started_at,
		   finished_at = excluded.finished_at, message_counts = excluded.message_counts,
		   errors = excluded.errors`,
		run.ID.String(), run.TeamID.String(), run.StartedAt.UTC(), run.FinishedAt.UTC(),
		string(counts), string(runErrors),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save sync run to sqlite",
			goerr.V("sync_run_id", run.ID))
	}
	return nil
}

// ListSyncRuns lists the sync runs of a workspace, newest first
func (s *SQLite) ListSyncRuns(ctx context.Context, teamID types.TeamID, limit int) ([]*model.SyncRun, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	query := `SELECT id, team_id, started_at, finished_at, message_counts, errors
		 FROM sync_runs WHERE team_id = ? ORDER BY started_at DESC, id DESC`
	args := []any{teamID.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query sync runs")
	}
	defer rows.Close()

	var runs []*model.SyncRun
	for rows.Next() {
		var (
			run       model.SyncRun
			finished  sql.NullTime
			counts    string
			runErrors string
		)
		if err := rows.Scan(&run.ID, &run.TeamID, &run.StartedAt, &finished, &counts, &runErrors); err != nil {
			return nil, goerr.Wrap(err, "failed to scan sync run")
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		if err := json.Unmarshal([]byte(counts), &run.MessageCounts); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message counts", goerr.V("sync_run_id", run.ID))
		}
		if err := json.Unmarshal([]byte(runErrors), &run.Errors); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run errors", goerr.V("sync_run_id", run.ID))
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate sync runs")
	}
	return runs, nil
}

// DeleteSyncRunsBefore deletes the sync runs of a workspace started before
// the given time and returns how many were deleted
func (s *SQLite) DeleteSyncRunsBefore(ctx context.Context, teamID types.TeamID, before time.Time) (int, error) {
	if teamID == "" {
		return 0, goerr.New("team ID is empty")
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_runs WHERE team_id = ? AND started_at < ?`,
		teamID.String(), before.UTC())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete sync runs", goerr.V("team_id", teamID))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted sync runs")
	}
	return int(n), nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*model.Employee, error) {
	var (
		employee model.Employee
		factors  string
	)
	if err := row.Scan(&employee.ID, &employee.Name, &employee.Department, &employee.Position,
		&employee.JoinDate, &employee.Age, &employee.RiskScore, &factors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(factors), &employee.TopRiskFactors); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk factors", goerr.V("employee_id", employee.ID))
	}
	return &employee, nil
}
