package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/notifier"
	"github.com/courtline/ladder/internal/scoring"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int, dryRun bool) error {
	msg := s.formatResultNotification(winner, loser, outcome, winPoints, losePoints)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLadder(standings []ladder.PlayerStanding, dryRun bool) error {
	msg := s.formatLadder(standings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStats(standing *ladder.PlayerStanding, query string, dryRun bool) error {
	msg := s.formatPlayerStats(standing, query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLadderResponse formats a ladder message for a slash command response.
func (s *Notifier) FormatLadderResponse(standings []ladder.PlayerStanding) (any, error) {
	return s.formatLadder(standings), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(standing *ladder.PlayerStanding, query string) (any, error) {
	return s.formatPlayerStats(standing, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// SendDirectMessage sends a direct message to a user
func (s *Notifier) SendDirectMessage(userID string, text string) (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// In Slack, you can send DMs by using the user ID as the channel
	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		userID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack DM", "error", err, "user", userID)
		return "", "", fmt.Errorf("failed to send DM: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack DM", "user", userID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// formatResultNotification creates the Slack message for a settled match using Block Kit.
func (s *Notifier) formatResultNotification(winner, loser *ladder.PlayerStanding, outcome scoring.Outcome, winPoints, losePoints int) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match settled! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Result
	resultText := fmt.Sprintf("%s defeated %s (%d-%d in sets)",
		winner.PlayerName,
		loser.PlayerName,
		outcome.WinnerSetsWon,
		outcome.LoserSetsWon,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	// Points
	pointsText := fmt.Sprintf("%s: +%d points (%d total)\n%s: +%d points (%d total)",
		winner.PlayerName, winPoints, winner.MasterPoints,
		loser.PlayerName, losePoints, loser.MasterPoints,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", pointsText, true, false), nil, nil))

	// Context
	contextText := fmt.Sprintf("🏆 %s now holds level %d, position %d", winner.PlayerName, winner.CurrentLevel, winner.CurrentPosition)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLadder creates a Slack message to display the current ladder standings.
func (s *Notifier) formatLadder(standings []ladder.PlayerStanding) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club Ladder 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No standings available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, standing := range standings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> Level %d, Position %d | Points: %d | Matches: %d/%d | Sets Won: %d",
			rank,
			medal,
			standing.PlayerName,
			standing.CurrentLevel,
			standing.CurrentPosition,
			standing.MasterPoints,
			standing.MatchesWon,
			standing.MatchesPlayed,
			standing.SetsWon,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's standing.
func (s *Notifier) formatPlayerStats(standing *ladder.PlayerStanding, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", standing.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Level*: %d (position %d)\n> *Points*: %d\n> *Matches*: %d won / %d lost\n> *Sets*: %d won / %d lost",
		standing.CurrentLevel,
		standing.CurrentPosition,
		standing.MasterPoints,
		standing.MatchesWon,
		standing.MatchesLost,
		standing.SetsWon,
		standing.SetsLost,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's standing is not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
