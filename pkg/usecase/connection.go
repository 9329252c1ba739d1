package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/utils/metrics"
)

// DefaultAuthTimeout bounds a pending authorization
const DefaultAuthTimeout = 30 * time.Second

const (
	opConnect    = "connect"
	opDisconnect = "disconnect"
	opReconnect  = "reconnect"
)

// ConnectionManager owns the connector lifecycle:
//
//	disconnected --connect--> connecting --ok--> connected
//	                                     --ng--> error --connect--> connecting
//	connected --disconnect--> disconnected
//	connected --reconnect--> connecting --ok/ng--> connected
//
// Connect and Reconnect calls arriving while connecting are ignored.
type ConnectionManager struct {
	mu    sync.Mutex
	state model.ConnectionState

	auth      interfaces.AuthProvider
	directory interfaces.ChannelDirectory
	selection *ChannelSelectionStore

	publisher   interfaces.EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
	authTimeout time.Duration
}

// ConnectionOption configures a ConnectionManager
type ConnectionOption func(*ConnectionManager)

// WithEventPublisher sets the sink of lifecycle events
func WithEventPublisher(p interfaces.EventPublisher) ConnectionOption {
	return func(m *ConnectionManager) {
		m.publisher = p
	}
}

// WithMetrics sets the metrics collectors
func WithMetrics(mt *metrics.Metrics) ConnectionOption {
	return func(m *ConnectionManager) {
		m.metrics = mt
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ConnectionOption {
	return func(m *ConnectionManager) {
		m.now = now
	}
}

// WithAuthTimeout bounds a pending authorization. Zero or negative disables
// the bound.
func WithAuthTimeout(d time.Duration) ConnectionOption {
	return func(m *ConnectionManager) {
		m.authTimeout = d
	}
}

// NewConnectionManager creates a disconnected ConnectionManager that drives
// the given selection store
func NewConnectionManager(auth interfaces.AuthProvider, directory interfaces.ChannelDirectory, selection *ChannelSelectionStore, opts ...ConnectionOption) *ConnectionManager {
	m := &ConnectionManager{
		state:       model.ConnectionState{Status: types.ConnectionStatusDisconnected},
		auth:        auth,
		directory:   directory,
		selection:   selection,
		now:         time.Now,
		authTimeout: DefaultAuthTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the connection state
func (m *ConnectionManager) State() model.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Selection returns the store gated by this manager
func (m *ConnectionManager) Selection() *ChannelSelectionStore {
	return m.selection
}

// Workspace returns the connected workspace, or nil when not connected
func (m *ConnectionManager) Workspace() *model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != types.ConnectionStatusConnected || m.state.Workspace == nil {
		return nil
	}
	ws := *m.state.Workspace
	return &ws
}

// Connect authorizes against the chat platform. It is legal from the
// disconnected and error states and ignored while connecting.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	m.mu.Lock()
	from := m.state.Status
	switch from {
	case types.ConnectionStatusConnecting:
		m.mu.Unlock()
		logger.Debug("connect ignored, authorization already in flight")
		return nil
	case types.ConnectionStatusDisconnected, types.ConnectionStatusError:
	default:
		m.mu.Unlock()
		return invalidTransition(opConnect, from)
	}
	m.state = model.ConnectionState{Status: types.ConnectionStatusConnecting}
	m.mu.Unlock()
	connecting := m.transition(opConnect, from, types.ConnectionStatusConnecting, nil, "")

	ws, err := m.authorize(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = model.ConnectionState{
			Status:       types.ConnectionStatusError,
			ErrorMessage: err.Error(),
		}
		m.mu.Unlock()
		m.publish(ctx, connecting,
			m.transition(opConnect, types.ConnectionStatusConnecting, types.ConnectionStatusError, nil, err.Error()))

		logger.Warn("connector authorization failed", "error", err)
		return goerr.Wrap(err, "failed to connect", goerr.T(model.ErrTagAuthFailure))
	}

	channels, listErr := m.listChannels(ctx, ws)

	m.mu.Lock()
	m.selection.activate(channels, true)
	now := m.now()
	m.state = model.ConnectionState{
		Status:       types.ConnectionStatusConnected,
		ErrorMessage: errorMessage(listErr),
		LastSyncAt:   &now,
		Workspace:    ws,
	}
	m.mu.Unlock()
	m.publish(ctx, connecting,
		m.transition(opConnect, types.ConnectionStatusConnecting, types.ConnectionStatusConnected, ws, errorMessage(listErr)))

	logger.Info("connector connected",
		"teamID", ws.TeamID,
		"teamName", ws.TeamName,
		"channels", len(channels),
	)
	return nil
}

// Disconnect drops the connection and the channel selection. It is legal
// only while connected.
func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	from := m.state.Status
	if from != types.ConnectionStatusConnected {
		m.mu.Unlock()
		return invalidTransition(opDisconnect, from)
	}
	ws := m.state.Workspace
	m.state = model.ConnectionState{Status: types.ConnectionStatusDisconnected}
	m.selection.clear()
	m.mu.Unlock()
	m.publish(ctx, m.transition(opDisconnect, from, types.ConnectionStatusDisconnected, ws, ""))

	ctxlog.From(ctx).Info("connector disconnected")
	return nil
}

// Reconnect re-runs the authorization of a connected workspace. The channel
// selection is kept. A failed reconnect leaves the connection in the
// connected state with the failure recorded in ErrorMessage.
func (m *ConnectionManager) Reconnect(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	m.mu.Lock()
	from := m.state.Status
	switch from {
	case types.ConnectionStatusConnecting:
		m.mu.Unlock()
		logger.Debug("reconnect ignored, authorization already in flight")
		return nil
	case types.ConnectionStatusConnected:
	default:
		m.mu.Unlock()
		return invalidTransition(opReconnect, from)
	}
	prev := m.state
	m.state = model.ConnectionState{
		Status:     types.ConnectionStatusConnecting,
		LastSyncAt: prev.LastSyncAt,
		Workspace:  prev.Workspace,
	}
	m.selection.suspend()
	m.mu.Unlock()
	connecting := m.transition(opReconnect, from, types.ConnectionStatusConnecting, prev.Workspace, "")

	ws, err := m.authorize(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = prev
		m.state.ErrorMessage = err.Error()
		m.selection.resume()
		m.mu.Unlock()
		m.publish(ctx, connecting,
			m.transition(opReconnect, types.ConnectionStatusConnecting, types.ConnectionStatusConnected, prev.Workspace, err.Error()))

		logger.Warn("connector reconnect failed, keeping the established connection", "error", err)
		return goerr.Wrap(err, "failed to reconnect", goerr.T(model.ErrTagReconnectFailure))
	}

	channels, listErr := m.listChannels(ctx, ws)

	m.mu.Lock()
	if listErr != nil {
		m.selection.resume()
	} else {
		m.selection.activate(channels, false)
	}
	now := m.now()
	m.state = model.ConnectionState{
		Status:       types.ConnectionStatusConnected,
		ErrorMessage: errorMessage(listErr),
		LastSyncAt:   &now,
		Workspace:    ws,
	}
	m.mu.Unlock()
	m.publish(ctx, connecting,
		m.transition(opReconnect, types.ConnectionStatusConnecting, types.ConnectionStatusConnected, ws, errorMessage(listErr)))

	logger.Info("connector reconnected", "teamID", ws.TeamID)
	return nil
}

// RefreshChannels re-reads the channel directory of the connected workspace
func (m *ConnectionManager) RefreshChannels(ctx context.Context) error {
	ws := m.Workspace()
	if ws == nil {
		return invalidTransition("refresh_channels", m.State().Status)
	}

	channels, err := m.listChannels(ctx, ws)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != types.ConnectionStatusConnected {
		return invalidTransition("refresh_channels", m.state.Status)
	}
	m.selection.activate(channels, false)
	return nil
}

// MarkSynced records a successful ingestion time. It has no effect unless
// connected.
func (m *ConnectionManager) MarkSynced(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != types.ConnectionStatusConnected {
		return
	}
	m.state.LastSyncAt = &at
}

func (m *ConnectionManager) authorize(ctx context.Context) (*model.Workspace, error) {
	authCtx := ctx
	if m.authTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, m.authTimeout)
		defer cancel()
	}

	ws, err := m.auth.BeginAuthorization(authCtx)
	if err != nil {
		if errors.Is(authCtx.Err(), context.DeadlineExceeded) {
			return nil, goerr.Wrap(err, "authorization timed out",
				goerr.V("timeout", m.authTimeout))
		}
		return nil, err
	}
	if ws == nil {
		return nil, goerr.New("authorization returned no workspace")
	}
	return ws, nil
}

func (m *ConnectionManager) listChannels(ctx context.Context, ws *model.Workspace) ([]model.ChannelDescriptor, error) {
	if m.directory == nil {
		return nil, nil
	}
	channels, err := m.directory.ListChannels(ctx, ws)
	if err != nil {
		ctxlog.From(ctx).Warn("failed to list channels", "error", err, "teamID", ws.TeamID)
		return nil, goerr.Wrap(err, "failed to list channels", goerr.V("team_id", ws.TeamID))
	}
	return channels, nil
}

// transition counts a state change and returns its event. Events are
// published once the authorization round-trip is over so that a slow sink
// never holds up the platform call.
func (m *ConnectionManager) transition(operation string, from, to types.ConnectionStatus, ws *model.Workspace, errMsg string) *model.ConnectionEvent {
	m.metrics.ObserveTransition(operation, from, to)

	event := model.NewConnectionEvent(operation, from, to, m.now())
	event.Error = errMsg
	if ws != nil {
		event.TeamID = ws.TeamID
	}
	return event
}

// publish delivers events in order. Failures are logged only.
func (m *ConnectionManager) publish(ctx context.Context, events ...*model.ConnectionEvent) {
	if m.publisher == nil {
		return
	}
	for _, event := range events {
		if err := m.publisher.Publish(ctx, event); err != nil {
			ctxlog.From(ctx).Warn("failed to publish connection event",
				"error", err,
				"operation", event.Operation,
			)
		}
	}
}

func (m *ConnectionManager) snapshot() model.ConnectionState {
	s := m.state
	if s.LastSyncAt != nil {
		t := *s.LastSyncAt
		s.LastSyncAt = &t
	}
	if s.Workspace != nil {
		ws := *s.Workspace
		s.Workspace = &ws
	}
	return s
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func invalidTransition(operation string, status types.ConnectionStatus) error {
	return goerr.New("operation not allowed in current connection state",
		goerr.T(model.ErrTagInvalidTransition),
		goerr.V("operation", operation),
		goerr.V("status", status))
}
