package settlement

import (
	"errors"

	"github.com/courtline/ladder/internal/config"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/notifier"
	"github.com/courtline/ladder/internal/pubsub"
)

// ErrConfigMissing is returned when the scoring point values are not configured.
var ErrConfigMissing = errors.New("scoring configuration missing")

// Store defines the persistence operations settlement needs. The full ladder
// store satisfies it.
type Store interface {
	GetMatchResult(id string) (*ladder.MatchResult, error)
	GetStandings(playerIDs []string) ([]ladder.PlayerStanding, error)
	ListStandings() ([]ladder.PlayerStanding, error)
	ApplyOutcome(update ladder.OutcomeUpdate) error
	SwapPositions(playerAID, playerBID string) error
	WritePositions(assignments []ladder.PositionAssignment) error
	InsertNotification(n ladder.Notification) error
}

// ChallengeStore is the slice of the challenge store settlement uses.
type ChallengeStore interface {
	Complete(challengeID string) error
}

// Service drives a reported match result through validation, scoring, standings
// updates and notifications.
type Service struct {
	store      Store
	challenges ChallengeStore
	notifier   notifier.Notifier
	scoring    *config.ScoringConfig
	metrics    metrics.Metrics
	pubsub     pubsub.PubSubClient
}
