package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// ConnectorUseCase drives the connector screen: the connection lifecycle,
// the channel selection and saving it as the ingestion configuration
type ConnectorUseCase struct {
	manager *ConnectionManager
	repo    interfaces.Repository
	sync    *SyncUseCase
	now     func() time.Time
}

// NewConnectorUseCase creates a ConnectorUseCase. sync may be nil when
// ingestion is disabled.
func NewConnectorUseCase(manager *ConnectionManager, repo interfaces.Repository, sync *SyncUseCase) *ConnectorUseCase {
	return &ConnectorUseCase{
		manager: manager,
		repo:    repo,
		sync:    sync,
		now:     time.Now,
	}
}

// State returns the connection state
func (uc *ConnectorUseCase) State() model.ConnectionState {
	return uc.manager.State()
}

// Selection returns the channel selection store
func (uc *ConnectorUseCase) Selection() *ChannelSelectionStore {
	return uc.manager.Selection()
}

// Connect connects the workspace. When the workspace already has saved
// settings, their sync schedule is resumed.
func (uc *ConnectorUseCase) Connect(ctx context.Context) error {
	if err := uc.manager.Connect(ctx); err != nil {
		return err
	}
	uc.resumeSchedule(ctx)
	return nil
}

// Disconnect disconnects the workspace and stops scheduled ingestion
func (uc *ConnectorUseCase) Disconnect(ctx context.Context) error {
	if err := uc.manager.Disconnect(ctx); err != nil {
		return err
	}
	if uc.sync != nil {
		uc.sync.Unschedule()
	}
	return nil
}

// Reconnect re-authorizes the connected workspace
func (uc *ConnectorUseCase) Reconnect(ctx context.Context) error {
	return uc.manager.Reconnect(ctx)
}

// RefreshChannels re-reads the channel directory
func (uc *ConnectorUseCase) RefreshChannels(ctx context.Context) error {
	return uc.manager.RefreshChannels(ctx)
}

// SavedConfig returns the saved settings of the connected workspace, or nil
// when none were saved
func (uc *ConnectorUseCase) SavedConfig(ctx context.Context) (*model.ConnectorConfig, error) {
	ws := uc.manager.Workspace()
	if ws == nil {
		return nil, invalidTransition("get_saved_config", uc.manager.State().Status)
	}

	cfg, err := uc.repo.GetConnectorConfig(ctx, ws.TeamID)
	if errors.Is(err, model.ErrConnectorConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connector config")
	}
	return cfg, nil
}

// Save persists the current selection as the ingestion configuration of the
// connected workspace and schedules ingestion at its frequency
func (uc *ConnectorUseCase) Save(ctx context.Context) (*model.ConnectorConfig, error) {
	store := uc.manager.Selection()
	if err := store.ValidateForSave(); err != nil {
		return nil, err
	}

	ws := uc.manager.Workspace()
	if ws == nil {
		return nil, invalidTransition("save", uc.manager.State().Status)
	}

	cfg := model.NewConnectorConfig(ws, store.Snapshot(), uc.now())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.PutConnectorConfig(ctx, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to save connector config", goerr.V("team_id", cfg.TeamID))
	}

	if uc.sync != nil {
		if err := uc.sync.Schedule(ctx, cfg.SyncFrequency); err != nil {
			return nil, goerr.Wrap(err, "failed to schedule sync")
		}
	}

	ctxlog.From(ctx).Info("connector settings saved",
		"teamID", cfg.TeamID,
		"channels", len(cfg.ChannelIDs),
		"retentionDays", cfg.RetentionDays,
		"syncFrequency", cfg.SyncFrequency,
	)
	return cfg, nil
}

// Reset restores the default selection. Saved settings are not touched.
func (uc *ConnectorUseCase) Reset(ctx context.Context) error {
	return uc.manager.Selection().Reset()
}

func (uc *ConnectorUseCase) resumeSchedule(ctx context.Context) {
	if uc.sync == nil {
		return
	}

	cfg, err := uc.SavedConfig(ctx)
	if err != nil {
		ctxlog.From(ctx).Warn("failed to load saved connector settings", "error", err)
		return
	}
	if cfg == nil {
		return
	}
	if err := uc.sync.Schedule(ctx, cfg.SyncFrequency); err != nil {
		ctxlog.From(ctx).Warn("failed to resume sync schedule", "error", err)
	}
}
