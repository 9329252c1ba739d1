package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

var connectionStatuses = []types.ConnectionStatus{
	types.ConnectionStatusDisconnected,
	types.ConnectionStatusConnecting,
	types.ConnectionStatusConnected,
	types.ConnectionStatusError,
}

// Metrics holds the prometheus collectors of the service
type Metrics struct {
	Transitions      *prometheus.CounterVec
	ConnectionStatus *prometheus.GaugeVec
	Employees        *prometheus.GaugeVec
	SyncRuns         *prometheus.CounterVec
	SyncedMessages   prometheus.Counter
}

// New registers the collectors on reg. A nil reg uses a private registry so
// that callers never need a nil check.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "retention_connector_transitions_total",
			Help: "Connector state transitions by operation.",
		}, []string{"operation", "from", "to"}),

		ConnectionStatus: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "retention_connector_status",
			Help: "Current connector status (1 for the active status).",
		}, []string{"status"}),

		Employees: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "retention_employees",
			Help: "Employees by risk level at the last dashboard computation.",
		}, []string{"level"}),

		SyncRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "retention_sync_runs_total",
			Help: "Channel ingestion runs by result.",
		}, []string{"result"}),

		SyncedMessages: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "retention_synced_messages_total",
			Help: "Messages counted by ingestion runs.",
		}),
	}
}

// ObserveTransition records a connector transition
func (m *Metrics) ObserveTransition(operation string, from, to types.ConnectionStatus) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(operation, from.String(), to.String()).Inc()
	for _, s := range connectionStatuses {
		v := 0.0
		if s == to {
			v = 1
		}
		m.ConnectionStatus.WithLabelValues(s.String()).Set(v)
	}
}

// ObserveOverview records the risk level distribution
func (m *Metrics) ObserveOverview(ov model.RiskOverview) {
	if m == nil {
		return
	}
	m.Employees.WithLabelValues(model.RiskLevelHigh.String()).Set(float64(ov.High))
	m.Employees.WithLabelValues(model.RiskLevelMedium.String()).Set(float64(ov.Medium))
	m.Employees.WithLabelValues(model.RiskLevelLow.String()).Set(float64(ov.Low))
}

// ObserveSync records an ingestion run
func (m *Metrics) ObserveSync(run *model.SyncRun) {
	if m == nil || run == nil {
		return
	}
	result := "success"
	if len(run.Errors) > 0 {
		result = "partial"
	}
	m.SyncRuns.WithLabelValues(result).Inc()
	m.SyncedMessages.Add(float64(run.TotalMessages()))
}

// ObserveSyncFailure records a run that could not start
func (m *Metrics) ObserveSyncFailure() {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues("failure").Inc()
}
