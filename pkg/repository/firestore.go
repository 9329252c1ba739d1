package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	employeesCollection        = "employees"
	connectorConfigsCollection = "connector_configs"
	syncRunsCollection         = "sync_runs"

	// Field names
	fieldTeamID    = "team_id"
	fieldStartedAt = "started_at"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on an invalid project or missing permissions
	_, err = client.Collection(employeesCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutEmployee saves an employee record to Firestore
func (f *Firestore) PutEmployee(ctx context.Context, employee *model.Employee) error {
	if employee == nil {
		return goerr.New("employee is nil")
	}
	if employee.ID == "" {
		return goerr.New("employee ID is empty")
	}

	_, err := f.client.Collection(employeesCollection).Doc(employee.ID.String()).Set(ctx, employee)
	if err != nil {
		return goerr.Wrap(err, "failed to save employee to firestore",
			goerr.V("employee_id", employee.ID))
	}
	return nil
}

// GetEmployee retrieves an employee record by ID
func (f *Firestore) GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error) {
	if id == "" {
		return nil, goerr.New("employee ID is empty")
	}

	doc, err := f.client.Collection(employeesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrEmployeeNotFound, "failed to get employee",
				goerr.V("employee_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get employee from firestore")
	}

	var employee model.Employee
	if err := doc.DataTo(&employee); err != nil {
		return nil, goerr.Wrap(err, "failed to decode employee")
	}
	return &employee, nil
}

// ListEmployees returns every employee record ordered by ID
func (f *Firestore) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	iter := f.client.Collection(employeesCollection).Documents(ctx)
	defer iter.Stop()

	employees := []*model.Employee{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate employees")
		}

		var employee model.Employee
		if err := doc.DataTo(&employee); err != nil {
			return nil, goerr.Wrap(err, "failed to decode employee",
				goerr.V("doc_id", doc.Ref.ID))
		}
		employees = append(employees, &employee)
	}

	// Document order is by document ID, but sort anyway to match other backends
	sortEmployees(employees)
	return employees, nil
}

// PutConnectorConfig saves the connector configuration of a workspace
func (f *Firestore) PutConnectorConfig(ctx context.Context, config *model.ConnectorConfig) error {
	if config == nil {
		return goerr.New("connector config is nil")
	}
	if config.TeamID == "" {
		return goerr.New("team ID is empty")
	}

	_, err := f.client.Collection(connectorConfigsCollection).Doc(config.TeamID.String()).Set(ctx, config)
	if err != nil {
		return goerr.Wrap(err, "failed to save connector config to firestore",
			goerr.V("team_id", config.TeamID))
	}
	return nil
}

// GetConnectorConfig retrieves the connector configuration of a workspace
func (f *Firestore) GetConnectorConfig(ctx context.Context, teamID types.TeamID) (*model.ConnectorConfig, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	doc, err := f.client.Collection(connectorConfigsCollection).Doc(teamID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrConnectorConfigNotFound, "failed to get connector config",
				goerr.V("team_id", teamID))
		}
		return nil, goerr.Wrap(err, "failed to get connector config from firestore")
	}

	var config model.ConnectorConfig
	if err := doc.DataTo(&config); err != nil {
		return nil, goerr.Wrap(err, "failed to decode connector config")
	}
	return &config, nil
}

// PutSyncRun saves a sync run
func (f *Firestore) PutSyncRun(ctx context.Context, run *model.SyncRun) error {
	if run == nil {
		return goerr.New("sync run is nil")
	}
	if run.ID == "" {
		return goerr.New("sync run ID is empty")
	}

	_, err := f.client.Collection(syncRunsCollection).Doc(run.ID.String()).Set(ctx, run)
	if err != nil {
		return goerr.Wrap(err, "failed to save sync run to firestore",
			goerr.V("sync_run_id", run.ID))
	}
	return nil
}

// ListSyncRuns lists the sync runs of a workspace, newest first
func (f *Firestore) ListSyncRuns(ctx context.Context, teamID types.TeamID, limit int) ([]*model.SyncRun, error) {
	if teamID == "" {
		return nil, goerr.New("team ID is empty")
	}

	// Equality filter only, so no composite index is required. Sorting and
	// limiting happen in memory.
	iter := f.client.Collection(syncRunsCollection).
		Where(fieldTeamID, "==", teamID.String()).
		Documents(ctx)
	defer iter.Stop()

	var runs []*model.SyncRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sync runs")
		}

		var run model.SyncRun
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode sync run",
				goerr.V("doc_id", doc.Ref.ID))
		}
		runs = append(runs, &run)
	}

	sortSyncRuns(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteSyncRunsBefore deletes the sync runs of a workspace started before
// the given time and returns how many were deleted
func (f *Firestore) DeleteSyncRunsBefore(ctx context.Context, teamID types.TeamID, before time.Time) (int, error) {
	if teamID == "" {
		return 0, goerr.New("team ID is empty")
	}

	iter := f.client.Collection(syncRunsCollection).
		Where(fieldTeamID, "==", teamID.String()).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate sync runs")
		}

		startedAt, err := doc.DataAt(fieldStartedAt)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get started_at field",
				goerr.V("doc_id", doc.Ref.ID))
		}
		ts, ok := startedAt.(time.Time)
		if !ok {
			return 0, goerr.New("unexpected type for started_at",
				goerr.V("doc_id", doc.Ref.ID))
		}
		if ts.Before(before) {
			refs = append(refs, doc.Ref)
		}
	}

	deleted := 0
	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			return deleted, goerr.Wrap(err, "failed to delete sync run",
				goerr.V("doc_id", ref.ID))
		}
		deleted++
	}

	return deleted, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
