package ladder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a new ladder Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// AddPlayer upserts a roster entry and, in the same transaction, creates the
// standing row so a player can never exist without one.
func (s *store) AddPlayer(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for adding player: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`, playerID, name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add player %s: %w", playerID, err)
	}

	// New players enter the ladder at the bottom of the lowest level.
	_, err = tx.Exec(`
		INSERT OR IGNORE INTO player_standings (player_id, current_level, current_position)
		VALUES (?,
			COALESCE((SELECT MAX(current_level) FROM player_standings), 1),
			COALESCE((SELECT MAX(current_position) + 1 FROM player_standings
				WHERE current_level = COALESCE((SELECT MAX(current_level) FROM player_standings), 1)), 1))`,
		playerID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create standing for player %s: %w", playerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player insert: %w", err)
	}
	log.Info("Added player to the ladder", "playerID", playerID, "name", name)
	return nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

// InsertMatchResult stores a newly reported result with status pending_validation.
func (s *store) InsertMatchResult(result *MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p1Sets, err := json.Marshal(result.Player1Sets)
	if err != nil {
		return err
	}
	p2Sets, err := json.Marshal(result.Player2Sets)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO match_results (id, challenge_id, player1_id, player2_id, player1_sets_json, player2_sets_json, winner_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.ChallengeID, result.Player1ID, result.Player2ID,
		p1Sets, p2Sets, result.WinnerID, StatusPendingValidation, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

func (s *store) GetMatchResult(id string) (*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, challenge_id, player1_id, player2_id, player1_sets_json, player2_sets_json, winner_id, status, created_at, settled_at
		FROM match_results WHERE id = ?`, id)

	result, err := scanMatchResult(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match result %s: %w", id, ErrMatchResultNotFound)
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}
	return result, nil
}

func (s *store) GetAllMatchResults() ([]*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, challenge_id, player1_id, player2_id, player1_sets_json, player2_sets_json, winner_id, status, created_at, settled_at
		FROM match_results ORDER BY created_at DESC`)
	if err != nil {
		log.Error("Failed to query match results", "error", err)
		return nil, err
	}
	defer rows.Close()

	var results []*MatchResult
	for rows.Next() {
		result, err := scanMatchResult(rows)
		if err != nil {
			log.Error("Failed to scan match result row", "error", err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func scanMatchResult(scanner interface{ Scan(...any) error }) (*MatchResult, error) {
	var result MatchResult
	var challengeID sql.NullString
	var p1Sets, p2Sets string

	err := scanner.Scan(
		&result.ID, &challengeID, &result.Player1ID, &result.Player2ID,
		&p1Sets, &p2Sets, &result.WinnerID, &result.Status, &result.CreatedAt, &result.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	result.ChallengeID = challengeID.String

	if err := json.Unmarshal([]byte(p1Sets), &result.Player1Sets); err != nil {
		log.Error("Failed to unmarshal player1_sets_json", "error", err, "resultID", result.ID)
	}
	if err := json.Unmarshal([]byte(p2Sets), &result.Player2Sets); err != nil {
		log.Error("Failed to unmarshal player2_sets_json", "error", err, "resultID", result.ID)
	}
	return &result, nil
}

const standingColumns = `
	ps.player_id,
	p.name,
	ps.master_points,
	ps.matches_played,
	ps.matches_won,
	ps.matches_lost,
	ps.sets_won,
	ps.sets_lost,
	ps.current_level,
	ps.current_position`

func scanStanding(scanner interface{ Scan(...any) error }) (PlayerStanding, error) {
	var st PlayerStanding
	err := scanner.Scan(
		&st.PlayerID, &st.PlayerName, &st.MasterPoints,
		&st.MatchesPlayed, &st.MatchesWon, &st.MatchesLost,
		&st.SetsWon, &st.SetsLost,
		&st.CurrentLevel, &st.CurrentPosition,
	)
	return st, err
}

func (s *store) GetStandings(playerIDs []string) ([]PlayerStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return []PlayerStanding{}, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(playerIDs)), ",")
	query := fmt.Sprintf(`
		SELECT %s FROM player_standings ps
		JOIN players p ON ps.player_id = p.id
		WHERE ps.player_id IN (%s)`, standingColumns, placeholders)

	rows, err := s.db.Query(query, ToAnySlice(playerIDs)...)
	if err != nil {
		log.Error("Failed to query standings", "error", err, "playerIDs", playerIDs)
		return nil, err
	}
	defer rows.Close()

	standings := []PlayerStanding{}
	for rows.Next() {
		st, err := scanStanding(rows)
		if err != nil {
			log.Error("Failed to scan standing row", "error", err)
			continue
		}
		standings = append(standings, st)
	}
	return standings, nil
}

// GetStandingByName retrieves a single player's standing by name. It performs a
// case-insensitive, fuzzy search (e.g. "anna" will match "Anna Kjaer").
func (s *store) GetStandingByName(playerName string) (*PlayerStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT %s FROM player_standings ps
		JOIN players p ON ps.player_id = p.id
		WHERE p.name LIKE ? COLLATE NOCASE
		LIMIT 1`, standingColumns)

	pattern := "%" + playerName + "%"
	st, err := scanStanding(s.db.QueryRow(query, pattern))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("No standing found for player matching pattern", "pattern", pattern)
			return nil, fmt.Errorf("player matching '%s': %w", playerName, ErrProfileNotFound)
		}
		log.Error("Failed to query standing by name", "error", err, "pattern", pattern)
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &st, nil
}

// ListStandings returns every standing in league order. Ties in master points
// are broken by player id so the ordering is deterministic.
func (s *store) ListStandings() ([]PlayerStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT %s FROM player_standings ps
		JOIN players p ON ps.player_id = p.id
		ORDER BY ps.current_level ASC, ps.master_points DESC, ps.player_id ASC`, standingColumns)

	rows, err := s.db.Query(query)
	if err != nil {
		log.Error("Failed to query league standings", "error", err)
		return nil, err
	}
	defer rows.Close()

	var standings []PlayerStanding
	for rows.Next() {
		st, err := scanStanding(rows)
		if err != nil {
			log.Error("Failed to scan standing row", "error", err)
			continue
		}
		standings = append(standings, st)
	}
	return standings, nil
}

// ApplyOutcome applies a settled result in a single transaction: the terminal
// status flip, both players' point and tally deltas, and the monthly-stat
// upserts. The flip is conditional on the result still being pending; if it
// affects no rows the whole transaction aborts with ErrAlreadySettled, which
// also serializes two concurrent settlements of the same result.
func (s *store) ApplyOutcome(update OutcomeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, settled_at = strftime('%s','now')
		WHERE id = ? AND status = ?`,
		StatusValidated, update.MatchResultID, StatusPendingValidation)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to flip result status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return fmt.Errorf("result %s: %w", update.MatchResultID, ErrAlreadySettled)
	}

	type standingDelta struct {
		playerID string
		points   int
		won      int
		lost     int
		setsWon  int
		setsLost int
	}
	deltas := []standingDelta{
		{update.WinnerID, update.WinPoints, 1, 0, update.WinnerSetsWon, update.LoserSetsWon},
		{update.LoserID, update.LosePoints, 0, 1, update.LoserSetsWon, update.WinnerSetsWon},
	}

	for _, d := range deltas {
		res, err := tx.Exec(`
			UPDATE player_standings SET
				master_points = master_points + ?,
				matches_played = matches_played + 1,
				matches_won = matches_won + ?,
				matches_lost = matches_lost + ?,
				sets_won = sets_won + ?,
				sets_lost = sets_lost + ?
			WHERE player_id = ?`,
			d.points, d.won, d.lost, d.setsWon, d.setsLost, d.playerID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update standing for %s: %w", d.playerID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return err
		}
		if affected == 0 {
			tx.Rollback()
			return fmt.Errorf("player %s: %w", d.playerID, ErrProfileNotFound)
		}

		_, err = tx.Exec(`
			INSERT INTO monthly_stats (player_id, year, month, matches_played, matches_won, matches_lost)
			VALUES (?, ?, ?, 1, ?, ?)
			ON CONFLICT(player_id, year, month) DO UPDATE SET
				matches_played = matches_played + 1,
				matches_won = matches_won + excluded.matches_won,
				matches_lost = matches_lost + excluded.matches_lost`,
			d.playerID, update.Year, update.Month, d.won, d.lost)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert monthly stat for %s: %w", d.playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement transaction: %w", err)
	}
	log.Info("Applied match outcome", "resultID", update.MatchResultID, "winner", update.WinnerID, "loser", update.LoserID)
	return nil
}

// SwapPositions exchanges the current positions of two players. Only the two
// rows are touched; the rest of the ladder is unaffected.
func (s *store) SwapPositions(playerAID, playerBID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	var posA, posB int
	if err := tx.QueryRow("SELECT current_position FROM player_standings WHERE player_id = ?", playerAID).Scan(&posA); err != nil {
		tx.Rollback()
		return fmt.Errorf("player %s: %w", playerAID, ErrProfileNotFound)
	}
	if err := tx.QueryRow("SELECT current_position FROM player_standings WHERE player_id = ?", playerBID).Scan(&posB); err != nil {
		tx.Rollback()
		return fmt.Errorf("player %s: %w", playerBID, ErrProfileNotFound)
	}

	if _, err := tx.Exec("UPDATE player_standings SET current_position = ? WHERE player_id = ?", posB, playerAID); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("UPDATE player_standings SET current_position = ? WHERE player_id = ?", posA, playerBID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Swapped ladder positions", "playerA", playerAID, "playerB", playerBID, "positionA", posB, "positionB", posA)
	return nil
}

// WritePositions applies a computed league ordering as one batch update.
func (s *store) WritePositions(assignments []PositionAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("UPDATE player_standings SET current_level = ?, current_position = ? WHERE player_id = ?")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.Exec(a.Level, a.Position, a.PlayerID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write position for %s: %w", a.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position write: %w", err)
	}
	log.Info("Wrote league positions", "count", len(assignments))
	return nil
}

func (s *store) GetMonthlyStat(playerID string, year, month int) (*MonthlyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stat MonthlyStat
	err := s.db.QueryRow(`
		SELECT player_id, year, month, matches_played, matches_won, matches_lost
		FROM monthly_stats WHERE player_id = ? AND year = ? AND month = ?`,
		playerID, year, month).Scan(
		&stat.PlayerID, &stat.Year, &stat.Month,
		&stat.MatchesPlayed, &stat.MatchesWon, &stat.MatchesLost)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

func (s *store) GetMonthlyStats(playerID string) ([]MonthlyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT player_id, year, month, matches_played, matches_won, matches_lost
		FROM monthly_stats WHERE player_id = ? ORDER BY year DESC, month DESC`, playerID)
	if err != nil {
		log.Error("Failed to query monthly stats", "error", err, "playerID", playerID)
		return nil, err
	}
	defer rows.Close()

	var stats []MonthlyStat
	for rows.Next() {
		var stat MonthlyStat
		if err := rows.Scan(&stat.PlayerID, &stat.Year, &stat.Month,
			&stat.MatchesPlayed, &stat.MatchesWon, &stat.MatchesLost); err != nil {
			log.Error("Failed to scan monthly stat row", "error", err)
			continue
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func (s *store) InsertNotification(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_id, title, message, type, related_challenge_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedChallengeID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *store) GetNotifications(userID string) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, user_id, title, message, type, related_challenge_id, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		log.Error("Failed to query notifications", "error", err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var related sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &related, &n.CreatedAt); err != nil {
			log.Error("Failed to scan notification row", "error", err)
			continue
		}
		n.RelatedChallengeID = related.String
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"notifications", "monthly_stats", "match_results", "challenges", "player_standings", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
