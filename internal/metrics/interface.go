package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSettlements()
	IncSettlementsFailed()
	ObserveSettlementDuration(duration float64)
	IncPositionRecomputes()
	IncReconcileFailures()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
