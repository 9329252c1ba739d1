package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/utils/apperr"
	"github.com/secmon-lab/retention/pkg/utils/metrics"
)

// SyncUseCase counts the messages of the saved channels and keeps a history
// of runs within the retention period. Runs are triggered on demand or by a
// cron schedule derived from the saved sync frequency.
type SyncUseCase struct {
	repo    interfaces.Repository
	counter interfaces.MessageCounter
	manager *ConnectionManager
	metrics *metrics.Metrics
	now     func() time.Time

	running sync.Mutex

	mu        sync.Mutex
	cron      *cron.Cron
	entryID   cron.EntryID
	scheduled bool
	frequency model.SyncFrequency
	baseCtx   context.Context
}

// SyncOption configures a SyncUseCase
type SyncOption func(*SyncUseCase)

// WithSyncMetrics sets the metrics collectors
func WithSyncMetrics(m *metrics.Metrics) SyncOption {
	return func(uc *SyncUseCase) {
		uc.metrics = m
	}
}

// WithSyncClock replaces time.Now
func WithSyncClock(now func() time.Time) SyncOption {
	return func(uc *SyncUseCase) {
		uc.now = now
	}
}

// NewSyncUseCase creates a SyncUseCase. The scheduler is not started until
// Start is called.
func NewSyncUseCase(repo interfaces.Repository, counter interfaces.MessageCounter, manager *ConnectionManager, opts ...SyncOption) *SyncUseCase {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	uc := &SyncUseCase{
		repo:    repo,
		counter: counter,
		manager: manager,
		now:     time.Now,
		cron:    cron.New(cron.WithParser(parser)),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunOnce counts the messages posted to every saved channel since the
// previous run. Channel failures are recorded in the run and do not abort
// the others.
func (uc *SyncUseCase) RunOnce(ctx context.Context) (*model.SyncRun, error) {
	logger := ctxlog.From(ctx)

	if !uc.running.TryLock() {
		return nil, goerr.New("sync is already running", goerr.T(model.ErrTagInvalidTransition))
	}
	defer uc.running.Unlock()

	ws := uc.manager.Workspace()
	if ws == nil {
		uc.metrics.ObserveSyncFailure()
		return nil, invalidTransition("sync", uc.manager.State().Status)
	}

	cfg, err := uc.repo.GetConnectorConfig(ctx, ws.TeamID)
	if err != nil {
		uc.metrics.ObserveSyncFailure()
		if errors.Is(err, model.ErrConnectorConfigNotFound) {
			return nil, goerr.Wrap(err, "connector settings have not been saved",
				goerr.T(model.ErrTagValidation),
				goerr.V("team_id", ws.TeamID))
		}
		return nil, goerr.Wrap(err, "failed to load connector config")
	}

	startedAt := uc.now()
	since, err := uc.since(ctx, cfg, startedAt)
	if err != nil {
		uc.metrics.ObserveSyncFailure()
		return nil, err
	}

	run := &model.SyncRun{
		ID:            types.NewSyncRunID(),
		TeamID:        ws.TeamID,
		StartedAt:     startedAt,
		MessageCounts: make(map[types.ChannelID]int, len(cfg.ChannelIDs)),
	}

	for _, channelID := range cfg.ChannelIDs {
		n, err := uc.counter.CountMessages(ctx, ws, channelID, since)
		if err != nil {
			logger.Warn("failed to count channel messages",
				"error", err,
				"channelID", channelID,
			)
			run.Errors = append(run.Errors, channelID.String()+": "+err.Error())
			continue
		}
		run.MessageCounts[channelID] = n
	}
	run.FinishedAt = uc.now()

	if err := uc.repo.PutSyncRun(ctx, run); err != nil {
		uc.metrics.ObserveSyncFailure()
		return nil, goerr.Wrap(err, "failed to save sync run", goerr.V("sync_run_id", run.ID))
	}

	cutoff := startedAt.AddDate(0, 0, -cfg.RetentionDays)
	purged, err := uc.repo.DeleteSyncRunsBefore(ctx, ws.TeamID, cutoff)
	if err != nil {
		logger.Warn("failed to purge expired sync runs", "error", err, "cutoff", cutoff)
	}

	if len(run.MessageCounts) > 0 || len(cfg.ChannelIDs) == 0 {
		uc.manager.MarkSynced(run.FinishedAt)
	}
	uc.metrics.ObserveSync(run)

	logger.Info("sync completed",
		"syncRunID", run.ID,
		"teamID", run.TeamID,
		"channels", len(cfg.ChannelIDs),
		"messages", run.TotalMessages(),
		"errors", len(run.Errors),
		"purged", purged,
	)
	return run, nil
}

// History lists recent runs of the connected workspace, newest first
func (uc *SyncUseCase) History(ctx context.Context, limit int) ([]*model.SyncRun, error) {
	ws := uc.manager.Workspace()
	if ws == nil {
		return nil, invalidTransition("sync_history", uc.manager.State().Status)
	}

	runs, err := uc.repo.ListSyncRuns(ctx, ws.TeamID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sync runs", goerr.V("team_id", ws.TeamID))
	}
	if runs == nil {
		runs = []*model.SyncRun{}
	}
	return runs, nil
}

// Schedule replaces the periodic run with one matching freq
func (uc *SyncUseCase) Schedule(ctx context.Context, freq model.SyncFrequency) error {
	if err := freq.Validate(); err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.scheduled {
		uc.cron.Remove(uc.entryID)
		uc.scheduled = false
	}

	id, err := uc.cron.AddFunc(freq.CronSpec(), uc.runScheduled)
	if err != nil {
		return goerr.Wrap(err, "failed to schedule sync",
			goerr.V("frequency", freq),
			goerr.V("spec", freq.CronSpec()))
	}
	uc.entryID = id
	uc.scheduled = true
	uc.frequency = freq

	ctxlog.From(ctx).Info("sync scheduled",
		"frequency", freq,
		"spec", freq.CronSpec(),
	)
	return nil
}

// Unschedule removes the periodic run, if any
func (uc *SyncUseCase) Unschedule() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.scheduled {
		uc.cron.Remove(uc.entryID)
		uc.scheduled = false
		uc.frequency = ""
	}
}

// NextRun returns the next scheduled run time. ok is false when nothing is
// scheduled or the scheduler is not running.
func (uc *SyncUseCase) NextRun() (next time.Time, freq model.SyncFrequency, ok bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.scheduled {
		return time.Time{}, "", false
	}
	entry := uc.cron.Entry(uc.entryID)
	if entry.Next.IsZero() {
		return time.Time{}, uc.frequency, false
	}
	return entry.Next, uc.frequency, true
}

// Start runs the scheduler in the background. Scheduled runs log with the
// logger of ctx.
func (uc *SyncUseCase) Start(ctx context.Context) {
	uc.mu.Lock()
	uc.baseCtx = ctxlog.With(context.Background(), ctxlog.From(ctx))
	uc.mu.Unlock()

	uc.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish or ctx to
// expire
func (uc *SyncUseCase) Stop(ctx context.Context) {
	done := uc.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (uc *SyncUseCase) runScheduled() {
	uc.mu.Lock()
	ctx := uc.baseCtx
	uc.mu.Unlock()

	if _, err := uc.RunOnce(ctx); err != nil {
		apperr.Handle(ctx, goerr.Wrap(err, "scheduled sync failed"))
	}
}

// since returns the start of the counting window: the start of the last
// run, bounded by the retention period
func (uc *SyncUseCase) since(ctx context.Context, cfg *model.ConnectorConfig, now time.Time) (time.Time, error) {
	floor := now.AddDate(0, 0, -cfg.RetentionDays)

	runs, err := uc.repo.ListSyncRuns(ctx, cfg.TeamID, 1)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to get last sync run", goerr.V("team_id", cfg.TeamID))
	}
	if len(runs) == 0 || runs[0].StartedAt.Before(floor) {
		return floor, nil
	}
	return runs[0].StartedAt, nil
}
