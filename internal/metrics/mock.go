package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	settlements         int
	settlementsFailed   int
	settlementDurations []float64
	positionRecomputes  int
	reconcileFailures   int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		settlementDurations: make([]float64, 0),
	}
}

func (m *Mock) IncSettlements() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements++
}

func (m *Mock) IncSettlementsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementsFailed++
}

func (m *Mock) ObserveSettlementDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementDurations = append(m.settlementDurations, duration)
}

func (m *Mock) IncPositionRecomputes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positionRecomputes++
}

func (m *Mock) IncReconcileFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconcileFailures++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Settlements returns the number of times IncSettlements was called.
func (m *Mock) Settlements() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlements
}

// SettlementsFailed returns the number of times IncSettlementsFailed was called.
func (m *Mock) SettlementsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlementsFailed
}

// PositionRecomputes returns the number of times IncPositionRecomputes was called.
func (m *Mock) PositionRecomputes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionRecomputes
}

// ReconcileFailures returns the number of times IncReconcileFailures was called.
func (m *Mock) ReconcileFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconcileFailures
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
