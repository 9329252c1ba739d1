package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/secmon-lab/retention/pkg/utils/async"
)

// defaultHistoryLimit is the number of sync runs returned by default
const defaultHistoryLimit = 20

type connectorHandler struct {
	connector *usecase.ConnectorUseCase
	sync      *usecase.SyncUseCase
}

type channelView struct {
	model.ChannelDescriptor
	Selected bool `json:"selected"`
}

type channelsResponse struct {
	Channels  []channelView          `json:"channels"`
	Selection model.ChannelSelection `json:"selection"`
}

type settingsRequest struct {
	IncludePrivateChannels *bool                `json:"include_private_channels"`
	RetentionDays          *int                 `json:"retention_days"`
	SyncFrequency          *model.SyncFrequency `json:"sync_frequency"`
}

type syncResponse struct {
	History       []*model.SyncRun    `json:"history"`
	NextRun       *time.Time          `json:"next_run,omitempty"`
	SyncFrequency model.SyncFrequency `json:"sync_frequency,omitempty"`
}

func (h *connectorHandler) writeState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.connector.State())
}

func (h *connectorHandler) getState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r)
}

func (h *connectorHandler) connect(w http.ResponseWriter, r *http.Request) {
	if err := h.connector.Connect(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

func (h *connectorHandler) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.connector.Disconnect(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

// reconnect answers 502 when re-authorization fails. The connection stays
// connected and GET /api/connector then carries the error message.
func (h *connectorHandler) reconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.connector.Reconnect(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

func (h *connectorHandler) getPermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"permissions": model.RequiredPermissions,
	})
}

func (h *connectorHandler) writeChannels(w http.ResponseWriter, r *http.Request) {
	visible, selection, active := h.connector.Selection().View()
	if !active {
		writeError(w, r, goerr.New("connector is not connected",
			goerr.T(model.ErrTagInvalidTransition),
			goerr.V("status", h.connector.State().Status)))
		return
	}

	views := make([]channelView, len(visible))
	for i, ch := range visible {
		views[i] = channelView{ChannelDescriptor: ch, Selected: selection.IsSelected(ch.ID)}
	}
	writeJSON(w, r, http.StatusOK, channelsResponse{Channels: views, Selection: selection})
}

func (h *connectorHandler) listChannels(w http.ResponseWriter, r *http.Request) {
	h.writeChannels(w, r)
}

func (h *connectorHandler) refreshChannels(w http.ResponseWriter, r *http.Request) {
	if err := h.connector.RefreshChannels(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeChannels(w, r)
}

func (h *connectorHandler) toggleChannel(w http.ResponseWriter, r *http.Request) {
	id := types.ChannelID(chi.URLParam(r, "channelID"))
	if err := h.connector.Selection().ToggleChannel(id); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeChannels(w, r)
}

// updateSettings applies the fields present in the body as one update
func (h *connectorHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.connector.Selection().ApplySettings(usecase.SettingsUpdate{
		IncludePrivateChannels: req.IncludePrivateChannels,
		RetentionDays:          req.RetentionDays,
		SyncFrequency:          req.SyncFrequency,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	h.writeChannels(w, r)
}

func (h *connectorHandler) getSavedConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.connector.SavedConfig(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"config": cfg})
}

func (h *connectorHandler) save(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.connector.Save(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"config": cfg})
}

func (h *connectorHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.connector.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeChannels(w, r)
}

func (h *connectorHandler) getSync(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, r, goerr.New("invalid limit", goerr.T(model.ErrTagValidation), goerr.V("limit", s)))
			return
		}
		limit = n
	}

	history, err := h.sync.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := syncResponse{History: history}
	if next, freq, ok := h.sync.NextRun(); ok {
		resp.NextRun = &next
		resp.SyncFrequency = freq
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// runSync runs ingestion now. With async=true it answers 202 and the run
// continues in the background.
func (h *connectorHandler) runSync(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" {
		async.Dispatch(r.Context(), "sync", func(ctx context.Context) error {
			_, err := h.sync.RunOnce(ctx)
			return err
		})
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	run, err := h.sync.RunOnce(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"run": run})
}
