package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/courtline/ladder/internal/config"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/notifier"
	"github.com/courtline/ladder/internal/pubsub"
	"github.com/courtline/ladder/internal/scoring"
	"github.com/google/uuid"
)

// New creates a new settlement Service.
func New(store Store, challenges ChallengeStore, notifier notifier.Notifier, scoringCfg *config.ScoringConfig, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Service {
	return &Service{
		store:      store,
		challenges: challenges,
		notifier:   notifier,
		scoring:    scoringCfg,
		metrics:    metrics,
		pubsub:     pubsub,
	}
}

// Settle runs the full pipeline for one reported result: validate, compute the
// outcome, apply point and tally deltas, reconcile ladder positions and notify.
// Settling an already settled result returns ladder.ErrAlreadySettled without
// touching any data; callers treat that as success.
func (s *Service) Settle(matchResultID string, dryRun bool) error {
	startTime := time.Now()
	log.Info("Settling match result", "matchResultID", matchResultID)

	result, err := s.store.GetMatchResult(matchResultID)
	if err != nil {
		log.Error("Failed to load match result", "error", err, "matchResultID", matchResultID)
		return err
	}

	if result.Status == ladder.StatusValidated {
		log.Info("Match result already settled, nothing to do", "matchResultID", matchResultID)
		return ladder.ErrAlreadySettled
	}

	if s.scoring == nil {
		log.Error("Scoring configuration missing, refusing to settle", "matchResultID", matchResultID)
		return ErrConfigMissing
	}

	outcome := scoring.ComputeOutcome(result)

	standings, err := s.store.GetStandings([]string{outcome.WinnerID, outcome.LoserID})
	if err != nil {
		log.Error("Failed to load standings", "error", err, "matchResultID", matchResultID)
		return err
	}
	if len(standings) != 2 {
		log.Error("Missing standing for a participant", "matchResultID", matchResultID, "found", len(standings))
		return ladder.ErrProfileNotFound
	}
	winner, loser := pickWinnerLoser(standings, outcome.WinnerID)

	if dryRun {
		log.Info("[Dry Run] Would settle match result",
			"matchResultID", matchResultID,
			"winner", winner.PlayerName,
			"loser", loser.PlayerName,
			"winnerSets", outcome.WinnerSetsWon,
			"loserSets", outcome.LoserSetsWon)
		return nil
	}

	playedAt := time.Unix(result.CreatedAt, 0).UTC()
	update := ladder.OutcomeUpdate{
		MatchResultID: matchResultID,
		WinnerID:      outcome.WinnerID,
		LoserID:       outcome.LoserID,
		WinnerSetsWon: outcome.WinnerSetsWon,
		LoserSetsWon:  outcome.LoserSetsWon,
		WinPoints:     s.scoring.WinPoints,
		LosePoints:    s.scoring.LosePoints,
		Year:          playedAt.Year(),
		Month:         int(playedAt.Month()),
	}
	if err := s.store.ApplyOutcome(update); err != nil {
		if errors.Is(err, ladder.ErrAlreadySettled) {
			log.Info("Lost settlement race, result already settled", "matchResultID", matchResultID)
			return err
		}
		s.metrics.IncSettlementsFailed()
		log.Error("Failed to apply outcome", "error", err, "matchResultID", matchResultID)
		return err
	}
	s.metrics.IncSettlements()

	// The result is settled from here on. Reconciliation and notifications are
	// best-effort and never roll the settlement back.
	s.reconcilePositions(winner, loser)

	if result.ChallengeID != "" {
		if err := s.challenges.Complete(result.ChallengeID); err != nil {
			log.Error("Failed to complete challenge", "error", err, "challengeID", result.ChallengeID)
		}
	}

	s.notifyResult(result, outcome)

	s.metrics.ObserveSettlementDuration(time.Since(startTime).Seconds())
	log.Info("Settled match result", "matchResultID", matchResultID, "winner", winner.PlayerName)
	return nil
}

// reconcilePositions restores the ladder ordering after a settled result. A
// winner positioned below the loser on the same level swaps places with them;
// every other configuration triggers a full league recompute so the applied
// point deltas still flow into positions.
func (s *Service) reconcilePositions(winner, loser *ladder.PlayerStanding) {
	if winner.CurrentLevel == loser.CurrentLevel && winner.CurrentPosition > loser.CurrentPosition {
		if err := s.store.SwapPositions(winner.PlayerID, loser.PlayerID); err != nil {
			s.metrics.IncReconcileFailures()
			log.Error("Failed to swap positions", "error", err, "winner", winner.PlayerID, "loser", loser.PlayerID)
		}
		return
	}

	if err := s.pubsub.SendMessage(pubsub.EventRecomputePositions, struct{}{}); err != nil {
		s.metrics.IncReconcileFailures()
		log.Error("Failed to request position recompute", "error", err)
	}
}

// RecomputePositions rebuilds every level's position column from scratch,
// ordered by level then master points.
func (s *Service) RecomputePositions() error {
	standings, err := s.store.ListStandings()
	if err != nil {
		log.Error("Failed to list standings for recompute", "error", err)
		return err
	}

	assignments := scoring.RecomputeLeaguePositions(standings)
	if err := s.store.WritePositions(assignments); err != nil {
		s.metrics.IncReconcileFailures()
		log.Error("Failed to write recomputed positions", "error", err)
		return err
	}

	s.metrics.IncPositionRecomputes()
	log.Info("Recomputed league positions", "players", len(assignments))
	return nil
}

// notifyResult records in-app notifications for both participants and posts the
// club channel message. Failures are logged and never fail the settlement.
func (s *Service) notifyResult(result *ladder.MatchResult, outcome scoring.Outcome) {
	// Re-read standings so the message carries post-settlement points.
	standings, err := s.store.GetStandings([]string{outcome.WinnerID, outcome.LoserID})
	if err != nil || len(standings) != 2 {
		log.Error("Failed to reload standings for notification", "error", err, "matchResultID", result.ID)
		return
	}
	winner, loser := pickWinnerLoser(standings, outcome.WinnerID)

	now := time.Now().Unix()
	notifications := []ladder.Notification{
		{
			ID:                 uuid.New().String(),
			UserID:             winner.PlayerID,
			Title:              "Match settled",
			Message:            fmt.Sprintf("You won against %s %d-%d and earned %d points.", loser.PlayerName, outcome.WinnerSetsWon, outcome.LoserSetsWon, s.scoring.WinPoints),
			Type:               "match_result",
			RelatedChallengeID: result.ChallengeID,
			CreatedAt:          now,
		},
		{
			ID:                 uuid.New().String(),
			UserID:             loser.PlayerID,
			Title:              "Match settled",
			Message:            fmt.Sprintf("You lost against %s %d-%d and earned %d points.", winner.PlayerName, outcome.LoserSetsWon, outcome.WinnerSetsWon, s.scoring.LosePoints),
			Type:               "match_result",
			RelatedChallengeID: result.ChallengeID,
			CreatedAt:          now,
		},
	}
	for _, n := range notifications {
		if err := s.store.InsertNotification(n); err != nil {
			log.Error("Failed to insert notification", "error", err, "userID", n.UserID)
		}
		if _, _, err := s.notifier.SendDirectMessage(n.UserID, n.Message); err != nil {
			log.Error("Failed to send direct message", "error", err, "userID", n.UserID)
		}
	}

	if err := s.notifier.SendResultNotification(winner, loser, outcome, s.scoring.WinPoints, s.scoring.LosePoints, false); err != nil {
		log.Error("Failed to send result notification", "error", err, "matchResultID", result.ID)
	}
}

func pickWinnerLoser(standings []ladder.PlayerStanding, winnerID string) (*ladder.PlayerStanding, *ladder.PlayerStanding) {
	if standings[0].PlayerID == winnerID {
		return &standings[0], &standings[1]
	}
	return &standings[1], &standings[0]
}
