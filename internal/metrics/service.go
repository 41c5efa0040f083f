package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_settlements_total",
			Help: "The total number of match results settled.",
		}),
		SettlementsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_settlements_failed_total",
			Help: "The total number of settlement attempts that failed.",
		}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_settlement_duration_seconds",
			Help:    "The duration of individual settlements.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PositionRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_position_recomputes_total",
			Help: "The total number of full-league position recomputes.",
		}),
		ReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_position_reconcile_failures_total",
			Help: "The total number of position reconciliations that failed after a result was settled.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ladder_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Settlements,
		s.SettlementsFailed,
		s.SettlementDuration,
		s.PositionRecomputes,
		s.ReconcileFailures,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSettlements() {
	s.Settlements.Inc()
}

func (s *Service) IncSettlementsFailed() {
	s.SettlementsFailed.Inc()
}

func (s *Service) ObserveSettlementDuration(duration float64) {
	s.SettlementDuration.Observe(duration)
}

func (s *Service) IncPositionRecomputes() {
	s.PositionRecomputes.Inc()
}

func (s *Service) IncReconcileFailures() {
	s.ReconcileFailures.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
