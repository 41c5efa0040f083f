package settlement

import (
	"errors"
	"testing"

	"github.com/courtline/ladder/internal/challenge"
	"github.com/courtline/ladder/internal/config"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/notifier"
	"github.com/courtline/ladder/internal/pubsub"
	"github.com/courtline/ladder/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *ladder.MockStore
	challenges *challenge.MockStore
	notifier   *notifier.Mock
	metrics    *metrics.Mock
	pubsub     *pubsub.MockPubSubClient
	svc        *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      ladder.NewMock(),
		challenges: challenge.NewMock(),
		notifier:   notifier.NewMock(),
		metrics:    metrics.NewMock(),
		pubsub:     pubsub.NewMock(""),
	}
	scoringCfg := &config.ScoringConfig{WinPoints: 3, LosePoints: 1}
	f.svc = New(f.store, f.challenges, f.notifier, scoringCfg, f.metrics, f.pubsub)
	return f
}

func pendingResult() *ladder.MatchResult {
	return &ladder.MatchResult{
		ID:          "mr-1",
		ChallengeID: "ch-1",
		Player1ID:   "p1",
		Player2ID:   "p2",
		Player1Sets: []int{6, 4, 6},
		Player2Sets: []int{3, 6, 2},
		WinnerID:    "p1",
		Status:      ladder.StatusPendingValidation,
		CreatedAt:   1756600000,
	}
}

func sameLevelStandings() []ladder.PlayerStanding {
	return []ladder.PlayerStanding{
		{PlayerID: "p1", PlayerName: "Anna", MasterPoints: 10, CurrentLevel: 2, CurrentPosition: 4},
		{PlayerID: "p2", PlayerName: "Ben", MasterPoints: 12, CurrentLevel: 2, CurrentPosition: 3},
	}
}

func TestSettle_SameLevelSwapsPositions(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)

	// Outcome applied exactly once with the configured points.
	require.Len(t, f.store.ApplyOutcomeCalls, 1)
	update := f.store.ApplyOutcomeCalls[0]
	assert.Equal(t, "mr-1", update.MatchResultID)
	assert.Equal(t, "p1", update.WinnerID)
	assert.Equal(t, "p2", update.LoserID)
	assert.Equal(t, 2, update.WinnerSetsWon)
	assert.Equal(t, 1, update.LoserSetsWon)
	assert.Equal(t, 3, update.WinPoints)
	assert.Equal(t, 1, update.LosePoints)

	// Winner was directly below the loser on the same level, so they swap.
	require.Len(t, f.store.SwapPositionsCalls, 1)
	assert.Equal(t, "p1", f.store.SwapPositionsCalls[0].PlayerAID)
	assert.Equal(t, "p2", f.store.SwapPositionsCalls[0].PlayerBID)
	assert.Empty(t, f.pubsub.SendMessageCalls, "no recompute should be requested for a same-level result")

	// Challenge completed, both players notified, channel message sent.
	assert.Equal(t, []string{"ch-1"}, f.challenges.CompleteCalls)
	require.Len(t, f.store.InsertNotificationCalls, 2)
	assert.Equal(t, "p1", f.store.InsertNotificationCalls[0].UserID)
	assert.Equal(t, "p2", f.store.InsertNotificationCalls[1].UserID)
	require.Len(t, f.notifier.SendResultNotificationCalls, 1)

	assert.Equal(t, 1, f.metrics.Settlements())
	assert.Equal(t, 0, f.metrics.SettlementsFailed())
}

func TestSettle_SameLevelWinnerAlreadyAboveRequestsRecompute(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return []ladder.PlayerStanding{
			{PlayerID: "p1", PlayerName: "Anna", CurrentLevel: 2, CurrentPosition: 1},
			{PlayerID: "p2", PlayerName: "Ben", CurrentLevel: 2, CurrentPosition: 2},
		}, nil
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)

	// No swap, but the applied points may have reordered the level, so a full
	// recompute is still requested.
	assert.Empty(t, f.store.SwapPositionsCalls)
	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, "recompute-positions", f.pubsub.SendMessageCalls[0].Topic)
	assert.Equal(t, 1, f.metrics.Settlements())
}

func TestSettle_CrossLevelRequestsRecompute(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return []ladder.PlayerStanding{
			{PlayerID: "p1", PlayerName: "Anna", CurrentLevel: 3, CurrentPosition: 1},
			{PlayerID: "p2", PlayerName: "Ben", CurrentLevel: 2, CurrentPosition: 5},
		}, nil
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)

	assert.Empty(t, f.store.SwapPositionsCalls)
	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, "recompute-positions", f.pubsub.SendMessageCalls[0].Topic)
}

func TestSettle_AlreadySettledShortCircuits(t *testing.T) {
	f := newFixture(t)
	settledAt := int64(1756600100)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		r := pendingResult()
		r.Status = ladder.StatusValidated
		r.SettledAt = &settledAt
		return r, nil
	}

	err := f.svc.Settle("mr-1", false)
	require.ErrorIs(t, err, ladder.ErrAlreadySettled)

	assert.Empty(t, f.store.ApplyOutcomeCalls, "no mutation for an already settled result")
	assert.Empty(t, f.store.SwapPositionsCalls)
	assert.Empty(t, f.store.InsertNotificationCalls)
	assert.Empty(t, f.challenges.CompleteCalls)
	assert.Equal(t, 0, f.metrics.Settlements())
}

func TestSettle_NotFound(t *testing.T) {
	f := newFixture(t)
	// Default mock behavior returns ErrMatchResultNotFound.
	err := f.svc.Settle("missing", false)
	require.ErrorIs(t, err, ladder.ErrMatchResultNotFound)
	assert.Empty(t, f.store.ApplyOutcomeCalls)
}

func TestSettle_MissingStandingAbortsBeforeMutation(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings()[:1], nil
	}

	err := f.svc.Settle("mr-1", false)
	require.ErrorIs(t, err, ladder.ErrProfileNotFound)

	assert.Empty(t, f.store.ApplyOutcomeCalls)
	assert.Empty(t, f.store.InsertNotificationCalls)
	assert.Equal(t, 0, f.metrics.Settlements())
}

func TestSettle_ConfigMissing(t *testing.T) {
	f := newFixture(t)
	f.svc = New(f.store, f.challenges, f.notifier, nil, f.metrics, f.pubsub)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}

	err := f.svc.Settle("mr-1", false)
	require.ErrorIs(t, err, ErrConfigMissing)
	assert.Empty(t, f.store.ApplyOutcomeCalls)
}

func TestSettle_DryRunDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}

	err := f.svc.Settle("mr-1", true)
	require.NoError(t, err)

	assert.Empty(t, f.store.ApplyOutcomeCalls)
	assert.Empty(t, f.store.SwapPositionsCalls)
	assert.Empty(t, f.store.InsertNotificationCalls)
	assert.Empty(t, f.notifier.SendResultNotificationCalls)
}

func TestSettle_LostRaceReturnsAlreadySettled(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}
	f.store.ApplyOutcomeFunc = func(update ladder.OutcomeUpdate) error {
		return ladder.ErrAlreadySettled
	}

	err := f.svc.Settle("mr-1", false)
	require.ErrorIs(t, err, ladder.ErrAlreadySettled)

	assert.Empty(t, f.store.SwapPositionsCalls)
	assert.Empty(t, f.store.InsertNotificationCalls)
	assert.Equal(t, 0, f.metrics.Settlements())
	assert.Equal(t, 0, f.metrics.SettlementsFailed(), "losing the race is not a failure")
}

func TestSettle_StoreWriteFailureCountsAsFailed(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}
	writeErr := errors.New("disk full")
	f.store.ApplyOutcomeFunc = func(update ladder.OutcomeUpdate) error {
		return writeErr
	}

	err := f.svc.Settle("mr-1", false)
	require.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, f.metrics.SettlementsFailed())
	assert.Empty(t, f.store.InsertNotificationCalls)
}

func TestSettle_NotifierFailureDoesNotFailSettlement(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}
	f.notifier.SendResultNotificationFunc = func(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int, dryRun bool) error {
		return errors.New("slack is down")
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.Settlements())
}

func TestSettle_ChallengeCompletionFailureDoesNotFailSettlement(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		return pendingResult(), nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}
	f.challenges.CompleteFunc = func(challengeID string) error {
		return errors.New("challenge store unavailable")
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.Settlements())
}

func TestSettle_NoChallengeSkipsCompletion(t *testing.T) {
	f := newFixture(t)
	f.store.GetMatchResultFunc = func(id string) (*ladder.MatchResult, error) {
		r := pendingResult()
		r.ChallengeID = ""
		return r, nil
	}
	f.store.GetStandingsFunc = func(playerIDs []string) ([]ladder.PlayerStanding, error) {
		return sameLevelStandings(), nil
	}

	err := f.svc.Settle("mr-1", false)
	require.NoError(t, err)
	assert.Empty(t, f.challenges.CompleteCalls)
}

func TestRecomputePositions(t *testing.T) {
	f := newFixture(t)
	f.store.ListStandingsFunc = func() ([]ladder.PlayerStanding, error) {
		return []ladder.PlayerStanding{
			{PlayerID: "p1", MasterPoints: 5, CurrentLevel: 1, CurrentPosition: 1},
			{PlayerID: "p2", MasterPoints: 9, CurrentLevel: 1, CurrentPosition: 2},
			{PlayerID: "p3", MasterPoints: 7, CurrentLevel: 2, CurrentPosition: 1},
		}, nil
	}

	err := f.svc.RecomputePositions()
	require.NoError(t, err)

	require.Len(t, f.store.WritePositionsCalls, 1)
	assignments := f.store.WritePositionsCalls[0]
	require.Len(t, assignments, 3)
	assert.Equal(t, ladder.PositionAssignment{PlayerID: "p2", Level: 1, Position: 1}, assignments[0])
	assert.Equal(t, ladder.PositionAssignment{PlayerID: "p1", Level: 1, Position: 2}, assignments[1])
	assert.Equal(t, ladder.PositionAssignment{PlayerID: "p3", Level: 2, Position: 1}, assignments[2])
	assert.Equal(t, 1, f.metrics.PositionRecomputes())
}

func TestRecomputePositions_WriteFailure(t *testing.T) {
	f := newFixture(t)
	f.store.ListStandingsFunc = func() ([]ladder.PlayerStanding, error) {
		return []ladder.PlayerStanding{{PlayerID: "p1", CurrentLevel: 1}}, nil
	}
	writeErr := errors.New("write failed")
	f.store.WritePositionsFunc = func(assignments []ladder.PositionAssignment) error {
		return writeErr
	}

	err := f.svc.RecomputePositions()
	require.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, f.metrics.ReconcileFailures())
	assert.Equal(t, 0, f.metrics.PositionRecomputes())
}
