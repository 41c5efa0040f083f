package notifier

import (
	"sync"

	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/scoring"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct {
		Winner  *ladder.PlayerStanding
		Loser   *ladder.PlayerStanding
		Outcome scoring.Outcome
	}
	SendLadderCalls      [][]ladder.PlayerStanding
	SendPlayerStatsCalls []struct {
		Standing *ladder.PlayerStanding
		Query    string
	}
	SendPlayerNotFoundCalls []string

	// Spies
	SendResultNotificationFunc func(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int, dryRun bool) error

	// Spies for format functions
	FormatLadderResponseFunc         func(standings []ladder.PlayerStanding) (any, error)
	FormatPlayerStatsResponseFunc    func(standing *ladder.PlayerStanding, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	// For direct messages
	SendDirectMessageFunc func(userID string, text string) (string, string, error)

	// Call records for format functions
	LastLadderResponse         any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLadderCalls = nil
	m.SendPlayerStatsCalls = nil
	m.SendPlayerNotFoundCalls = nil
	m.LastLadderResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendResultNotification(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Winner  *ladder.PlayerStanding
		Loser   *ladder.PlayerStanding
		Outcome scoring.Outcome
	}{winner, loser, outcome})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(winner, loser, outcome, winPoints, losePoints, dryRun)
	}
	return nil
}

func (m *Mock) SendLadder(standings []ladder.PlayerStanding, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLadderCalls = append(m.SendLadderCalls, standings)
	return nil
}

func (m *Mock) SendPlayerStats(standing *ladder.PlayerStanding, query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerStatsCalls = append(m.SendPlayerStatsCalls, struct {
		Standing *ladder.PlayerStanding
		Query    string
	}{standing, query})
	return nil
}

func (m *Mock) SendPlayerNotFound(query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerNotFoundCalls = append(m.SendPlayerNotFoundCalls, query)
	return nil
}

func (m *Mock) FormatLadderResponse(standings []ladder.PlayerStanding) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLadderResponseFunc != nil {
		resp, err := m.FormatLadderResponseFunc(standings)
		m.LastLadderResponse = resp
		return resp, err
	}
	return "formatted_ladder", nil
}

func (m *Mock) FormatPlayerStatsResponse(standing *ladder.PlayerStanding, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(standing, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}

func (m *Mock) SendDirectMessage(userID string, text string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendDirectMessageFunc != nil {
		return m.SendDirectMessageFunc(userID, text)
	}
	return "", "", nil
}
