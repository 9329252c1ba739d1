package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// EmployeeRepository supplies the employee risk records
type EmployeeRepository interface {
	ListEmployees(ctx context.Context) ([]*model.Employee, error)
}

// Repository defines the interface for data persistence
type Repository interface {
	EmployeeRepository

	// Employee operations
	PutEmployee(ctx context.Context, employee *model.Employee) error
	GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error)

	// Connector configuration operations
	PutConnectorConfig(ctx context.Context, config *model.ConnectorConfig) error
	GetConnectorConfig(ctx context.Context, teamID types.TeamID) (*model.ConnectorConfig, error)

	// Sync run operations
	PutSyncRun(ctx context.Context, run *model.SyncRun) error
	ListSyncRuns(ctx context.Context, teamID types.TeamID, limit int) ([]*model.SyncRun, error)
	DeleteSyncRunsBefore(ctx context.Context, teamID types.TeamID, before time.Time) (int, error)

	// Close closes the repository connection
	Close() error
}
