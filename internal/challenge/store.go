package challenge

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewStore creates a new challenge Store.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// Create opens a new challenge between two players.
func (s *store) Create(challengerID, opponentID string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c := &Challenge{
		ID:           uuid.New().String(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(`
		INSERT INTO challenges (id, challenger_id, opponent_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ChallengerID, c.OpponentID, string(c.Status), c.CreatedAt.Unix(), c.UpdatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	log.Info("Created challenge", "id", c.ID, "challenger", challengerID, "opponent", opponentID)
	return c, nil
}

// Get retrieves a challenge by ID.
func (s *store) Get(challengeID string) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, challenger_id, opponent_id, status, created_at, updated_at
		FROM challenges WHERE id = ?`, challengeID)

	c, err := scanChallenge(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("challenge not found: %s", challengeID)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

// List retrieves all challenges, newest first.
func (s *store) List() ([]*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, challenger_id, opponent_id, status, created_at, updated_at
		FROM challenges ORDER BY created_at DESC`)
	if err != nil {
		log.Error("Failed to query challenges", "error", err)
		return nil, err
	}
	defer rows.Close()

	var challenges []*Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			log.Error("Failed to scan challenge row", "error", err)
			continue
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}

func scanChallenge(scanner interface{ Scan(...any) error }) (*Challenge, error) {
	var c Challenge
	var status string
	var createdAt, updatedAt int64

	err := scanner.Scan(&c.ID, &c.ChallengerID, &c.OpponentID, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = Status(status)
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

// Accept marks an open challenge as accepted.
func (s *store) Accept(challengeID string) error {
	return s.transition(challengeID, StatusAccepted, StatusOpen)
}

// Complete marks a challenge as completed. Settlement calls this after a result
// referencing the challenge is validated.
func (s *store) Complete(challengeID string) error {
	return s.transition(challengeID, StatusCompleted, StatusOpen, StatusAccepted)
}

// Cancel marks a challenge as cancelled.
func (s *store) Cancel(challengeID string) error {
	return s.transition(challengeID, StatusCancelled, StatusOpen, StatusAccepted)
}

func (s *store) transition(challengeID string, to Status, from ...Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := ""
	args := []any{string(to), time.Now().Unix(), challengeID}
	for i, f := range from {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, string(f))
	}

	res, err := s.db.Exec(
		"UPDATE challenges SET status = ?, updated_at = ? WHERE id = ? AND status IN ("+placeholders+")",
		args...)
	if err != nil {
		return fmt.Errorf("failed to update challenge status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("challenge %s cannot transition to %s", challengeID, to)
	}
	log.Info("Updated challenge status", "id", challengeID, "status", to)
	return nil
}
