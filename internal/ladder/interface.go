package ladder

// Store defines the interface for interacting with the ladder's data.
type Store interface {
	AddPlayer(playerID, name string) error
	IsKnownPlayer(playerID string) bool
	GetAllPlayers() ([]PlayerInfo, error)

	InsertMatchResult(result *MatchResult) error
	GetMatchResult(id string) (*MatchResult, error)
	GetAllMatchResults() ([]*MatchResult, error)

	GetStandings(playerIDs []string) ([]PlayerStanding, error)
	GetStandingByName(playerName string) (*PlayerStanding, error)
	ListStandings() ([]PlayerStanding, error)
	ApplyOutcome(update OutcomeUpdate) error
	SwapPositions(playerAID, playerBID string) error
	WritePositions(assignments []PositionAssignment) error

	GetMonthlyStat(playerID string, year, month int) (*MonthlyStat, error)
	GetMonthlyStats(playerID string) ([]MonthlyStat, error)

	InsertNotification(n Notification) error
	GetNotifications(userID string) ([]Notification, error)

	Clear()
}
