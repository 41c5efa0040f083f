package ladder

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the ladder.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Errors returned by the store. Settlement callers branch on these with errors.Is.
var (
	ErrMatchResultNotFound = errors.New("match result not found")
	ErrAlreadySettled      = errors.New("match result already settled")
	ErrProfileNotFound     = errors.New("player standing not found")
)

// MatchResultStatus defines the settlement state of a reported result.
type MatchResultStatus string

const (
	StatusPendingValidation MatchResultStatus = "pending_validation"
	StatusValidated         MatchResultStatus = "validated"
)

// MatchResult is one reported match. The per-set slices are equal length, one
// entry per set, games won by each side. The declared winner is authoritative.
type MatchResult struct {
	ID          string            `json:"id"`
	ChallengeID string            `json:"challenge_id"`
	Player1ID   string            `json:"player1_id"`
	Player2ID   string            `json:"player2_id"`
	Player1Sets []int             `json:"player1_sets"`
	Player2Sets []int             `json:"player2_sets"`
	WinnerID    string            `json:"winner_id"`
	Status      MatchResultStatus `json:"status"`
	CreatedAt   int64             `json:"created_at"`
	SettledAt   *int64            `json:"settled_at,omitempty"`
}

// PlayerStanding is the mutable per-player aggregate the settlement pipeline
// maintains. Within a level, current positions form a permutation of 1..N.
type PlayerStanding struct {
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name"`
	MasterPoints    int    `json:"master_points"`
	MatchesPlayed   int    `json:"matches_played"`
	MatchesWon      int    `json:"matches_won"`
	MatchesLost     int    `json:"matches_lost"`
	SetsWon         int    `json:"sets_won"`
	SetsLost        int    `json:"sets_lost"`
	CurrentLevel    int    `json:"current_level"`
	CurrentPosition int    `json:"current_position"`
}

// MonthlyStat accumulates played/won/lost per (player, year, month). Created
// lazily on the first match of the period, never deleted by settlement.
type MonthlyStat struct {
	PlayerID      string `json:"player_id"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	MatchesPlayed int    `json:"matches_played"`
	MatchesWon    int    `json:"matches_won"`
	MatchesLost   int    `json:"matches_lost"`
}

// Notification is an insert-only record; reading and dismissing happen elsewhere.
type Notification struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	Title              string `json:"title"`
	Message            string `json:"message"`
	Type               string `json:"type"`
	RelatedChallengeID string `json:"related_challenge_id,omitempty"`
	CreatedAt          int64  `json:"created_at"`
}

// PlayerInfo represents a roster entry.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OutcomeUpdate carries everything ApplyOutcome writes in one transaction:
// the status flip plus both players' point, tally and monthly-stat deltas.
type OutcomeUpdate struct {
	MatchResultID string
	WinnerID      string
	LoserID       string
	WinnerSetsWon int
	LoserSetsWon  int
	WinPoints     int
	LosePoints    int
	Year          int
	Month         int
}

// PositionAssignment is one row of a computed league ordering.
type PositionAssignment struct {
	PlayerID string
	Level    int
	Position int
}
