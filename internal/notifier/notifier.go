package notifier

import (
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/scoring"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled match results
	SendResultNotification(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int, dryRun bool) error
	// For slash commands
	SendLadder(standings []ladder.PlayerStanding, dryRun bool) error
	SendPlayerStats(standing *ladder.PlayerStanding, query string, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLadderResponse(standings []ladder.PlayerStanding) (any, error)
	FormatPlayerStatsResponse(standing *ladder.PlayerStanding, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)

	// For direct messages
	SendDirectMessage(userID string, text string) (string, string, error)
}
