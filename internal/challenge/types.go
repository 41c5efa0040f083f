package challenge

import (
	"database/sql"
	"sync"
	"time"
)

// store handles database operations for challenges.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Status represents the lifecycle state of a challenge.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusAccepted  Status = "ACCEPTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Challenge is a fixture between two players; a settled match result completes it.
type Challenge struct {
	ID           string    `json:"id"`
	ChallengerID string    `json:"challenger_id"`
	OpponentID   string    `json:"opponent_id"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
