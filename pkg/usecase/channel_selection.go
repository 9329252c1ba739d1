package usecase

import (
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// ChannelSelectionStore holds the channels chosen for ingestion and the
// retention and sync settings. It accepts operations only while the owning
// ConnectionManager is connected; the manager activates and clears it.
type ChannelSelectionStore struct {
	mu        sync.Mutex
	active    bool
	channels  []model.ChannelDescriptor
	selection model.ChannelSelection
}

// NewChannelSelectionStore creates an inactive store with an empty selection
func NewChannelSelectionStore() *ChannelSelectionStore {
	return &ChannelSelectionStore{
		selection: model.DefaultChannelSelection(),
	}
}

// ToggleChannel flips the membership of id in the selection
func (s *ChannelSelectionStore) ToggleChannel(id types.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("toggle_channel"); err != nil {
		return err
	}

	if !s.isVisible(id) {
		return goerr.New("channel is not visible",
			goerr.T(model.ErrTagValidation),
			goerr.V("channel_id", id),
			goerr.V("include_private", s.selection.IncludePrivateChannels))
	}

	if idx := slices.Index(s.selection.ChannelIDs, id); idx >= 0 {
		s.selection.ChannelIDs = slices.Delete(s.selection.ChannelIDs, idx, idx+1)
	} else {
		s.selection.ChannelIDs = append(s.selection.ChannelIDs, id)
	}
	return nil
}

// SetIncludePrivate changes the private channel visibility. Hiding private
// channels drops them from the selection; showing them again does not
// restore anything.
func (s *ChannelSelectionStore) SetIncludePrivate(include bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("set_include_private"); err != nil {
		return err
	}

	s.selection.IncludePrivateChannels = include
	if !include {
		s.selection.ChannelIDs = slices.DeleteFunc(s.selection.ChannelIDs, func(id types.ChannelID) bool {
			return !s.isVisible(id)
		})
	}
	return nil
}

// SetRetentionDays changes how long ingested data is kept
func (s *ChannelSelectionStore) SetRetentionDays(days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("set_retention_days"); err != nil {
		return err
	}
	if err := model.ValidateRetentionDays(days); err != nil {
		return err
	}

	s.selection.RetentionDays = days
	return nil
}

// SetSyncFrequency changes how often the selected channels are ingested
func (s *ChannelSelectionStore) SetSyncFrequency(freq model.SyncFrequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("set_sync_frequency"); err != nil {
		return err
	}
	if err := freq.Validate(); err != nil {
		return err
	}

	s.selection.SyncFrequency = freq
	return nil
}

// SettingsUpdate carries the settings to change. Nil fields are left as is.
type SettingsUpdate struct {
	IncludePrivateChannels *bool
	RetentionDays          *int
	SyncFrequency          *model.SyncFrequency
}

// ApplySettings validates every field of u and then commits them together.
// A validation failure changes nothing.
func (s *ChannelSelectionStore) ApplySettings(u SettingsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("apply_settings"); err != nil {
		return err
	}
	if u.RetentionDays != nil {
		if err := model.ValidateRetentionDays(*u.RetentionDays); err != nil {
			return err
		}
	}
	if u.SyncFrequency != nil {
		if err := u.SyncFrequency.Validate(); err != nil {
			return err
		}
	}

	if u.RetentionDays != nil {
		s.selection.RetentionDays = *u.RetentionDays
	}
	if u.SyncFrequency != nil {
		s.selection.SyncFrequency = *u.SyncFrequency
	}
	if u.IncludePrivateChannels != nil {
		s.selection.IncludePrivateChannels = *u.IncludePrivateChannels
		if !*u.IncludePrivateChannels {
			s.selection.ChannelIDs = slices.DeleteFunc(s.selection.ChannelIDs, func(id types.ChannelID) bool {
				return !s.isVisible(id)
			})
		}
	}
	return nil
}

// ValidateForSave fails when there is nothing to save
func (s *ChannelSelectionStore) ValidateForSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("save"); err != nil {
		return err
	}
	if len(s.selection.ChannelIDs) == 0 {
		return goerr.New("nothing selected", goerr.T(model.ErrTagValidation))
	}
	return nil
}

// Reset restores the default settings and empties the selection
func (s *ChannelSelectionStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("reset"); err != nil {
		return err
	}
	s.selection = model.DefaultChannelSelection()
	return nil
}

// Snapshot returns a copy of the current selection
func (s *ChannelSelectionStore) Snapshot() model.ChannelSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// VisibleChannels returns the channels that can be selected under the
// current private channel setting
func (s *ChannelSelectionStore) VisibleChannels() []model.ChannelDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.VisibleChannels(s.channels, s.selection.IncludePrivateChannels)
}

// View returns the visible channels together with the selection they were
// filtered by
func (s *ChannelSelectionStore) View() ([]model.ChannelDescriptor, model.ChannelSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := model.VisibleChannels(s.channels, s.selection.IncludePrivateChannels)
	return visible, s.snapshot(), s.active
}

// IsActive reports whether the store accepts operations
func (s *ChannelSelectionStore) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// activate makes the store usable with the given directory listing. With
// reset the selection starts empty; otherwise ids no longer listed are
// dropped and everything else is kept.
func (s *ChannelSelectionStore) activate(channels []model.ChannelDescriptor, reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = slices.Clone(channels)
	if reset {
		s.selection = model.DefaultChannelSelection()
	} else {
		s.selection.ChannelIDs = slices.DeleteFunc(s.selection.ChannelIDs, func(id types.ChannelID) bool {
			return !s.isVisible(id)
		})
	}
	s.active = true
}

// resume re-enables a suspended store without touching its contents
func (s *ChannelSelectionStore) resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// suspend rejects operations while keeping the contents
func (s *ChannelSelectionStore) suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// clear empties the selection and the channel list and deactivates the store
func (s *ChannelSelectionStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.channels = nil
	s.selection = model.DefaultChannelSelection()
}

func (s *ChannelSelectionStore) requireActive(operation string) error {
	if !s.active {
		return goerr.New("channel selection is not active",
			goerr.T(model.ErrTagInvalidTransition),
			goerr.V("operation", operation))
	}
	return nil
}

func (s *ChannelSelectionStore) isVisible(id types.ChannelID) bool {
	for _, ch := range s.channels {
		if ch.ID == id {
			return s.selection.IncludePrivateChannels || !ch.IsPrivate
		}
	}
	return false
}

func (s *ChannelSelectionStore) snapshot() model.ChannelSelection {
	sel := s.selection
	sel.ChannelIDs = slices.Clone(s.selection.ChannelIDs)
	if sel.ChannelIDs == nil {
		sel.ChannelIDs = []types.ChannelID{}
	}
	return sel
}
