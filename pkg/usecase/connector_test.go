package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/interfaces/mocks"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/repository"
	"github.com/secmon-lab/retention/pkg/usecase"
)

func newConnectorUseCase(t *testing.T) (*usecase.ConnectorUseCase, *usecase.SyncUseCase) {
	t.Helper()
	repo := repository.NewMemory()
	mgr := usecase.NewConnectionManager(newAuthOK(), newDirectory(testChannels), usecase.NewChannelSelectionStore())
	counter := &mocks.MessageCounterMock{}
	sync := usecase.NewSyncUseCase(repo, counter, mgr)
	return usecase.NewConnectorUseCase(mgr, repo, sync), sync
}

func TestConnectorUseCase_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("save requires a connection", func(t *testing.T) {
		uc, _ := newConnectorUseCase(t)
		_, err := uc.Save(ctx)
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagInvalidTransition)).True()
	})

	t.Run("nothing selected", func(t *testing.T) {
		uc, _ := newConnectorUseCase(t)
		gt.NoError(t, uc.Connect(ctx))

		_, err := uc.Save(ctx)
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
		gt.S(t, err.Error()).Contains("nothing selected")

		saved, err := uc.SavedConfig(ctx)
		gt.NoError(t, err)
		gt.Nil(t, saved)
	})

	t.Run("persists the selection and schedules sync", func(t *testing.T) {
		uc, sync := newConnectorUseCase(t)
		gt.NoError(t, uc.Connect(ctx))

		store := uc.Selection()
		gt.NoError(t, store.ToggleChannel("C1"))
		gt.NoError(t, store.ToggleChannel("C2"))
		gt.NoError(t, store.SetRetentionDays(90))
		gt.NoError(t, store.SetSyncFrequency(model.SyncFrequencyHourly))

		cfg, err := uc.Save(ctx)
		gt.NoError(t, err)
		gt.Equal(t, cfg.TeamID, types.TeamID("T123"))
		gt.Equal(t, cfg.TeamName, "acme")
		gt.Equal(t, cfg.ChannelIDs, []types.ChannelID{"C1", "C2"})
		gt.Equal(t, cfg.RetentionDays, 90)

		saved, err := uc.SavedConfig(ctx)
		gt.NoError(t, err)
		gt.V(t, saved).NotNil()
		gt.Equal(t, saved.ChannelIDs, []types.ChannelID{"C1", "C2"})
		gt.Equal(t, saved.SyncFrequency, model.SyncFrequencyHourly)

		// Scheduled but the scheduler is not started, so no next run yet
		_, freq, ok := sync.NextRun()
		gt.False(t, ok)
		gt.Equal(t, freq, model.SyncFrequencyHourly)

		// Disconnect drops the schedule
		gt.NoError(t, uc.Disconnect(ctx))
		_, freq, _ = sync.NextRun()
		gt.Equal(t, freq, model.SyncFrequency(""))

		// Reconnecting the same workspace resumes it
		gt.NoError(t, uc.Connect(ctx))
		_, freq, _ = sync.NextRun()
		gt.Equal(t, freq, model.SyncFrequencyHourly)

		// The selection itself starts empty on a new connection
		gt.A(t, uc.Selection().Snapshot().ChannelIDs).Length(0)
	})
}

func TestConnectorUseCase_Reset(t *testing.T) {
	ctx := context.Background()
	uc, _ := newConnectorUseCase(t)

	err := uc.Reset(ctx)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagInvalidTransition)).True()

	gt.NoError(t, uc.Connect(ctx))
	gt.NoError(t, uc.Selection().ToggleChannel("C3"))
	gt.NoError(t, uc.Selection().SetRetentionDays(7))

	gt.NoError(t, uc.Reset(ctx))
	gt.Equal(t, uc.Selection().Snapshot(), model.DefaultChannelSelection())
}

func TestConnectorUseCase_Reconnect(t *testing.T) {
	ctx := context.Background()
	uc, _ := newConnectorUseCase(t)

	err := uc.Reconnect(ctx)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagInvalidTransition)).True()

	gt.NoError(t, uc.Connect(ctx))
	gt.NoError(t, uc.Selection().ToggleChannel("C1"))
	gt.NoError(t, uc.Reconnect(ctx))
	gt.Equal(t, uc.State().Status, types.ConnectionStatusConnected)
	gt.Equal(t, uc.Selection().Snapshot().ChannelIDs, []types.ChannelID{"C1"})
	gt.NoError(t, uc.RefreshChannels(ctx))
}
