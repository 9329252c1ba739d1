package usecase_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/usecase"
)

func TestChannelSelectionStore_Inactive(t *testing.T) {
	store := usecase.NewChannelSelectionStore()

	ops := map[string]func() error{
		"toggle":          func() error { return store.ToggleChannel("C1") },
		"includePrivate":  func() error { return store.SetIncludePrivate(true) },
		"retentionDays":   func() error { return store.SetRetentionDays(90) },
		"syncFrequency":   func() error { return store.SetSyncFrequency(model.SyncFrequencyHourly) },
		"validateForSave": store.ValidateForSave,
		"reset":           store.Reset,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			gt.Error(t, err)
			gt.B(t, goerr.HasTag(err, model.ErrTagInvalidTransition)).True()
		})
	}

	sel := store.Snapshot()
	gt.A(t, sel.ChannelIDs).Length(0)
	gt.Equal(t, sel.RetentionDays, model.DefaultRetentionDays)
	gt.Equal(t, sel.SyncFrequency, model.SyncFrequencyDaily)
}

func TestChannelSelectionStore_ToggleChannel(t *testing.T) {
	t.Run("toggle is self-inverse", func(t *testing.T) {
		_, store := newConnected(t)

		gt.NoError(t, store.ToggleChannel("C1"))
		gt.True(t, store.Snapshot().IsSelected("C1"))

		gt.NoError(t, store.ToggleChannel("C1"))
		gt.False(t, store.Snapshot().IsSelected("C1"))
		gt.A(t, store.Snapshot().ChannelIDs).Length(0)
	})

	t.Run("no duplicates", func(t *testing.T) {
		_, store := newConnected(t)
		for range 5 {
			gt.NoError(t, store.ToggleChannel("C2"))
		}
		gt.Equal(t, store.Snapshot().ChannelIDs, []types.ChannelID{"C2"})
	})

	t.Run("unknown channel is rejected", func(t *testing.T) {
		_, store := newConnected(t)
		err := store.ToggleChannel("C999")
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
		gt.A(t, store.Snapshot().ChannelIDs).Length(0)
	})

	t.Run("hidden private channel is rejected", func(t *testing.T) {
		_, store := newConnected(t)
		gt.Error(t, store.ToggleChannel("C4"))

		gt.NoError(t, store.SetIncludePrivate(true))
		gt.NoError(t, store.ToggleChannel("C4"))
		gt.True(t, store.Snapshot().IsSelected("C4"))
	})
}

func TestChannelSelectionStore_SetIncludePrivate(t *testing.T) {
	_, store := newConnected(t)

	gt.NoError(t, store.SetIncludePrivate(true))
	visible, _, _ := store.View()
	gt.A(t, visible).Length(5)

	gt.NoError(t, store.ToggleChannel("C1"))
	gt.NoError(t, store.ToggleChannel("C4"))
	gt.NoError(t, store.ToggleChannel("C5"))

	gt.NoError(t, store.SetIncludePrivate(false))
	sel := store.Snapshot()
	gt.Equal(t, sel.ChannelIDs, []types.ChannelID{"C1"})
	gt.False(t, sel.IncludePrivateChannels)

	visible, _, _ = store.View()
	gt.A(t, visible).Length(3)

	// Showing private channels again does not restore them
	gt.NoError(t, store.SetIncludePrivate(true))
	gt.Equal(t, store.Snapshot().ChannelIDs, []types.ChannelID{"C1"})
}

func TestChannelSelectionStore_Settings(t *testing.T) {
	_, store := newConnected(t)

	gt.NoError(t, store.SetRetentionDays(180))
	gt.Equal(t, store.Snapshot().RetentionDays, 180)

	err := store.SetRetentionDays(45)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
	gt.Equal(t, store.Snapshot().RetentionDays, 180)

	gt.NoError(t, store.SetSyncFrequency(model.SyncFrequencyWeekly))
	gt.Equal(t, store.Snapshot().SyncFrequency, model.SyncFrequencyWeekly)

	gt.Error(t, store.SetSyncFrequency("monthly"))
	gt.Equal(t, store.Snapshot().SyncFrequency, model.SyncFrequencyWeekly)
}

func ptr[T any](v T) *T { return &v }

func TestChannelSelectionStore_ApplySettings(t *testing.T) {
	t.Run("applies every present field", func(t *testing.T) {
		_, store := newConnected(t)

		gt.NoError(t, store.ApplySettings(usecase.SettingsUpdate{
			IncludePrivateChannels: ptr(true),
			RetentionDays:          ptr(90),
			SyncFrequency:          ptr(model.SyncFrequencyHourly),
		}))
		sel := store.Snapshot()
		gt.True(t, sel.IncludePrivateChannels)
		gt.Equal(t, sel.RetentionDays, 90)
		gt.Equal(t, sel.SyncFrequency, model.SyncFrequencyHourly)

		// Absent fields keep their value
		gt.NoError(t, store.ApplySettings(usecase.SettingsUpdate{RetentionDays: ptr(7)}))
		sel = store.Snapshot()
		gt.True(t, sel.IncludePrivateChannels)
		gt.Equal(t, sel.RetentionDays, 7)
		gt.Equal(t, sel.SyncFrequency, model.SyncFrequencyHourly)
	})

	t.Run("an invalid field leaves the selection unchanged", func(t *testing.T) {
		_, store := newConnected(t)
		gt.NoError(t, store.SetIncludePrivate(true))
		gt.NoError(t, store.ToggleChannel("C4"))
		before := store.Snapshot()

		err := store.ApplySettings(usecase.SettingsUpdate{
			IncludePrivateChannels: ptr(false),
			RetentionDays:          ptr(7),
			SyncFrequency:          ptr(model.SyncFrequency("bogus")),
		})
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
		gt.Equal(t, store.Snapshot(), before)

		err = store.ApplySettings(usecase.SettingsUpdate{
			SyncFrequency: ptr(model.SyncFrequencyWeekly),
			RetentionDays: ptr(45),
		})
		gt.Error(t, err)
		gt.Equal(t, store.Snapshot(), before)
	})

	t.Run("hiding private channels drops them", func(t *testing.T) {
		_, store := newConnected(t)
		gt.NoError(t, store.SetIncludePrivate(true))
		gt.NoError(t, store.ToggleChannel("C1"))
		gt.NoError(t, store.ToggleChannel("C4"))

		gt.NoError(t, store.ApplySettings(usecase.SettingsUpdate{IncludePrivateChannels: ptr(false)}))
		gt.Equal(t, store.Snapshot().ChannelIDs, []types.ChannelID{"C1"})
	})

	t.Run("inactive store is rejected", func(t *testing.T) {
		store := usecase.NewChannelSelectionStore()
		err := store.ApplySettings(usecase.SettingsUpdate{RetentionDays: ptr(7)})
		gt.B(t, goerr.HasTag(err, model.ErrTagInvalidTransition)).True()
	})
}

func TestChannelSelectionStore_ValidateForSave(t *testing.T) {
	_, store := newConnected(t)

	err := store.ValidateForSave()
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
	gt.S(t, err.Error()).Contains("nothing selected")

	gt.NoError(t, store.ToggleChannel("C1"))
	gt.NoError(t, store.ValidateForSave())
}

func TestChannelSelectionStore_Reset(t *testing.T) {
	_, store := newConnected(t)

	gt.NoError(t, store.SetIncludePrivate(true))
	gt.NoError(t, store.ToggleChannel("C4"))
	gt.NoError(t, store.SetRetentionDays(365))
	gt.NoError(t, store.SetSyncFrequency(model.SyncFrequencyRealtime))

	gt.NoError(t, store.Reset())

	sel := store.Snapshot()
	gt.Equal(t, sel, model.DefaultChannelSelection())
	gt.True(t, store.IsActive())
}

func TestChannelSelectionStore_SnapshotIsACopy(t *testing.T) {
	_, store := newConnected(t)
	gt.NoError(t, store.ToggleChannel("C1"))

	sel := store.Snapshot()
	sel.ChannelIDs[0] = "C2"
	gt.Equal(t, store.Snapshot().ChannelIDs, []types.ChannelID{"C1"})
}
