package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu               sync.RWMutex
	employees        map[types.EmployeeID]*model.Employee
	connectorConfigs map[types.TeamID]*model.ConnectorConfig
	syncRuns         map[types.SyncRunID]*model.SyncRun
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		employees:        make(map[types.EmployeeID]*model.Employee),
		connectorConfigs: make(map[types.TeamID]*model.ConnectorConfig),
		syncRuns:         make(map[types.SyncRunID]*model.SyncRun),
	}
}

// PutEmployee saves an employee record
func (m *Memory) PutEmployee(ctx context.Context, employee *model.Employee) error {
	if employee == nil {
		return goerr.New("employee is nil")
	}
	if employee.ID == "" {
		return goerr.New("employee ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees[employee.ID] = employee.Copy()
	return nil
}

// GetEmployee retrieves an employee record by ID
func (m *Memory) GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error) {
	if id == "" {
		return nil, goerr.New("employee ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, exists := m.employees[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrEmployeeNotFound, "failed to get employee",
			goerr.V("employee_id", id))
	}
	return emp.Copy(), nil
}

// ListEmployees returns every employee record ordered by ID
func (m *Memory) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	employees := make([]*model.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		employees = append(employees, emp.Copy())
	}
	sortEmployees(employees)
	return employees, nil
}

// PutConnectorConfig saves the connector configuration of a workspace
func (m *Memory) PutConnectorConfig(ctx context.Context, config *model.ConnectorConfig) error {
	if config == nil {
		return goerr.New("connector config is nil")
	}
	if config.TeamID == "" {
		return goerr.New("team ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.connectorConfigs[config.TeamID] = copyConnectorConfig(config)
	return nil
}

// GetConnectorConfig retrieves the connector configuration of a workspace
func (m *Memory) GetConnectorConfig(ctx context.Context, teamID types.TeamID) (*model.ConnectorConfig, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, exists := m.connectorConfigs[teamID]
	if !exists {
		return nil, goerr.Wrap(model.ErrConnectorConfigNotFound, "failed to get connector config",
			goerr.V("team_id", teamID))
	}
	return copyConnectorConfig(cfg), nil
}

// PutSyncRun saves a sync run
func (m *Memory) PutSyncRun(ctx context.Context, run *model.SyncRun) error {
	if run == nil {
		return goerr.New("sync run is nil")
	}
	if run.ID == "" {
		return goerr.New("sync run ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.syncRuns[run.ID] = copySyncRun(run)
	return nil
}

// ListSyncRuns lists the sync runs of a workspace, newest first
func (m *Memory) ListSyncRuns(ctx context.Context, teamID types.TeamID, limit int) ([]*model.SyncRun, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []*model.SyncRun
	for _, run := range m.syncRuns {
		if run.TeamID == teamID {
			runs = append(runs, copySyncRun(run))
		}
	}
	sortSyncRuns(runs)

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteSyncRunsBefore deletes the sync runs of a workspace started before
// the given time and returns how many were deleted
func (m *Memory) DeleteSyncRunsBefore(ctx context.Context, teamID types.TeamID, before time.Time) (int, error) {
	if teamID == "" {
		return 0, goerr.New("team ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, run := range m.syncRuns {
		if run.TeamID == teamID && run.StartedAt.Before(before) {
			delete(m.syncRuns, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close closes the repository (no-op for memory)
func (m *Memory) Close() error {
	return nil
}

func copyConnectorConfig(cfg *model.ConnectorConfig) *model.ConnectorConfig {
	c := *cfg
	c.ChannelIDs = slices.Clone(cfg.ChannelIDs)
	return &c
}

func copySyncRun(run *model.SyncRun) *model.SyncRun {
	r := *run
	r.MessageCounts = maps.Clone(run.MessageCounts)
	r.Errors = slices.Clone(run.Errors)
	return &r
}

func sortEmployees(employees []*model.Employee) {
	slices.SortFunc(employees, func(a, b *model.Employee) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// sortSyncRuns orders runs by start time, newest first
func sortSyncRuns(runs []*model.SyncRun) {
	slices.SortFunc(runs, func(a, b *model.SyncRun) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
