package ladder

import (
	"sync"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc          func(playerID, name string) error
	IsKnownPlayerFunc      func(playerID string) bool
	GetAllPlayersFunc      func() ([]PlayerInfo, error)
	InsertMatchResultFunc  func(result *MatchResult) error
	GetMatchResultFunc     func(id string) (*MatchResult, error)
	GetAllMatchResultsFunc func() ([]*MatchResult, error)
	GetStandingsFunc       func(playerIDs []string) ([]PlayerStanding, error)
	GetStandingByNameFunc  func(playerName string) (*PlayerStanding, error)
	ListStandingsFunc      func() ([]PlayerStanding, error)
	ApplyOutcomeFunc       func(update OutcomeUpdate) error
	SwapPositionsFunc      func(playerAID, playerBID string) error
	WritePositionsFunc     func(assignments []PositionAssignment) error
	GetMonthlyStatFunc     func(playerID string, year, month int) (*MonthlyStat, error)
	GetMonthlyStatsFunc    func(playerID string) ([]MonthlyStat, error)
	InsertNotificationFunc func(n Notification) error
	GetNotificationsFunc   func(userID string) ([]Notification, error)
	ClearFunc              func()

	// Call records
	InsertMatchResultCalls  []*MatchResult
	GetStandingsCalls       [][]string
	ApplyOutcomeCalls       []OutcomeUpdate
	SwapPositionsCalls      []struct{ PlayerAID, PlayerBID string }
	WritePositionsCalls     [][]PositionAssignment
	InsertNotificationCalls []Notification
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertMatchResultCalls = nil
	m.GetStandingsCalls = nil
	m.ApplyOutcomeCalls = nil
	m.SwapPositionsCalls = nil
	m.WritePositionsCalls = nil
	m.InsertNotificationCalls = nil
}

func (m *MockStore) AddPlayer(playerID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(playerID, name)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) InsertMatchResult(result *MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertMatchResultCalls = append(m.InsertMatchResultCalls, result)
	if m.InsertMatchResultFunc != nil {
		return m.InsertMatchResultFunc(result)
	}
	return nil
}

func (m *MockStore) GetMatchResult(id string) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchResultFunc != nil {
		return m.GetMatchResultFunc(id)
	}
	return nil, ErrMatchResultNotFound
}

func (m *MockStore) GetAllMatchResults() ([]*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchResultsFunc != nil {
		return m.GetAllMatchResultsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetStandings(playerIDs []string) ([]PlayerStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetStandingsCalls = append(m.GetStandingsCalls, playerIDs)
	if m.GetStandingsFunc != nil {
		return m.GetStandingsFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetStandingByName(playerName string) (*PlayerStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStandingByNameFunc != nil {
		return m.GetStandingByNameFunc(playerName)
	}
	return nil, ErrProfileNotFound
}

func (m *MockStore) ListStandings() ([]PlayerStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListStandingsFunc != nil {
		return m.ListStandingsFunc()
	}
	return nil, nil
}

func (m *MockStore) ApplyOutcome(update OutcomeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyOutcomeCalls = append(m.ApplyOutcomeCalls, update)
	if m.ApplyOutcomeFunc != nil {
		return m.ApplyOutcomeFunc(update)
	}
	return nil
}

func (m *MockStore) SwapPositions(playerAID, playerBID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SwapPositionsCalls = append(m.SwapPositionsCalls, struct{ PlayerAID, PlayerBID string }{playerAID, playerBID})
	if m.SwapPositionsFunc != nil {
		return m.SwapPositionsFunc(playerAID, playerBID)
	}
	return nil
}

func (m *MockStore) WritePositions(assignments []PositionAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WritePositionsCalls = append(m.WritePositionsCalls, assignments)
	if m.WritePositionsFunc != nil {
		return m.WritePositionsFunc(assignments)
	}
	return nil
}

func (m *MockStore) GetMonthlyStat(playerID string, year, month int) (*MonthlyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMonthlyStatFunc != nil {
		return m.GetMonthlyStatFunc(playerID, year, month)
	}
	return nil, nil
}

func (m *MockStore) GetMonthlyStats(playerID string) ([]MonthlyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMonthlyStatsFunc != nil {
		return m.GetMonthlyStatsFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) InsertNotification(n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertNotificationCalls = append(m.InsertNotificationCalls, n)
	if m.InsertNotificationFunc != nil {
		return m.InsertNotificationFunc(n)
	}
	return nil
}

func (m *MockStore) GetNotifications(userID string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetNotificationsFunc != nil {
		return m.GetNotificationsFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
