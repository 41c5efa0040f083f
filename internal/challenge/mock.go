package challenge

import (
	"sync"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc   func(challengerID, opponentID string) (*Challenge, error)
	GetFunc      func(challengeID string) (*Challenge, error)
	ListFunc     func() ([]*Challenge, error)
	AcceptFunc   func(challengeID string) error
	CompleteFunc func(challengeID string) error
	CancelFunc   func(challengeID string) error

	// Call records
	CreateCalls   []struct{ ChallengerID, OpponentID string }
	CompleteCalls []string
	CancelCalls   []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Create(challengerID, opponentID string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, struct{ ChallengerID, OpponentID string }{challengerID, opponentID})
	if m.CreateFunc != nil {
		return m.CreateFunc(challengerID, opponentID)
	}
	return &Challenge{ID: "mock-challenge", ChallengerID: challengerID, OpponentID: opponentID, Status: StatusOpen}, nil
}

func (m *MockStore) Get(challengeID string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(challengeID)
	}
	return nil, nil
}

func (m *MockStore) List() ([]*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

func (m *MockStore) Accept(challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcceptFunc != nil {
		return m.AcceptFunc(challengeID)
	}
	return nil
}

func (m *MockStore) Complete(challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls = append(m.CompleteCalls, challengeID)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(challengeID)
	}
	return nil
}

func (m *MockStore) Cancel(challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, challengeID)
	if m.CancelFunc != nil {
		return m.CancelFunc(challengeID)
	}
	return nil
}
