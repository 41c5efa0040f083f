package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/scoring"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendResultNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	winner := &ladder.PlayerStanding{PlayerID: "p1", PlayerName: "Player A", MasterPoints: 13, CurrentLevel: 2, CurrentPosition: 1}
	loser := &ladder.PlayerStanding{PlayerID: "p2", PlayerName: "Player B", MasterPoints: 8, CurrentLevel: 2, CurrentPosition: 2}
	outcome := scoring.Outcome{WinnerID: "p1", LoserID: "p2", WinnerSetsWon: 2, LoserSetsWon: 1}

	err := notifier.SendResultNotification(winner, loser, outcome, 3, 1, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendResultNotification")
}

func TestFormatResultNotification(t *testing.T) {
	winner := &ladder.PlayerStanding{PlayerID: "p1", PlayerName: "Player A", MasterPoints: 13, CurrentLevel: 2, CurrentPosition: 1}
	loser := &ladder.PlayerStanding{PlayerID: "p2", PlayerName: "Player B", MasterPoints: 8, CurrentLevel: 2, CurrentPosition: 2}
	outcome := scoring.Outcome{WinnerID: "p1", LoserID: "p2", WinnerSetsWon: 2, LoserSetsWon: 1}

	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(winner, loser, outcome, 3, 1)

	require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks")

	// 1. Header Block
	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "🎾 Match settled! 🎾", header.Text.Text)

	// 2. Result Section
	result, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok, "Second block should be a SectionBlock")
	assert.Equal(t, "Player A defeated Player B (2-1 in sets)", result.Text.Text)

	// 3. Points Section
	points, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok, "Third block should be a SectionBlock")
	assert.Equal(t, "Player A: +3 points (13 total)\nPlayer B: +1 points (8 total)", points.Text.Text)

	// 4. Context Block
	contextBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
	require.True(t, ok, "Fourth block should be a ContextBlock")
	require.Len(t, contextBlock.ContextElements.Elements, 1)

	element, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "🏆 Player A now holds level 2, position 1", element.Text)
}

func TestFormatLadder(t *testing.T) {
	t.Run("displays ladder with standings", func(t *testing.T) {
		standings := []ladder.PlayerStanding{
			{PlayerName: "Player A", CurrentLevel: 1, CurrentPosition: 1, MasterPoints: 30, MatchesPlayed: 10, MatchesWon: 8, SetsWon: 16},
			{PlayerName: "Player B", CurrentLevel: 1, CurrentPosition: 2, MasterPoints: 22, MatchesPlayed: 10, MatchesWon: 6, SetsWon: 12},
			{PlayerName: "Player C", CurrentLevel: 2, CurrentPosition: 1, MasterPoints: 18, MatchesPlayed: 10, MatchesWon: 4, SetsWon: 8},
		}

		client := &Notifier{channelID: "C123"}
		msg := client.formatLadder(standings)

		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks (header + 3 players)")

		// Check header
		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Club Ladder 🏆", header.Text.Text)

		// Check first player
		player1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player1.Text.Text, "1. 🥇 Player A")
		assert.Contains(t, player1.Text.Text, "> Level 1, Position 1 | Points: 30")

		// Check second player
		player2, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player2.Text.Text, "2. 🥈 Player B")

		// Check third player
		player3, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player3.Text.Text, "3. 🥉 Player C")
	})

	t.Run("displays message when no standings are available", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatLadder([]ladder.PlayerStanding{})

		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")

		// Check message
		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No standings available yet. Go play some matches!", message.Text.Text)
	})
}

func TestFormatPlayerStats(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats stats for a found player", func(t *testing.T) {
		standing := &ladder.PlayerStanding{
			PlayerName:      "Morten Voss",
			MasterPoints:    42,
			MatchesPlayed:   10,
			MatchesWon:      8,
			MatchesLost:     2,
			SetsWon:         16,
			SetsLost:        5,
			CurrentLevel:    1,
			CurrentPosition: 3,
		}

		msg := client.formatPlayerStats(standing, "Morten")
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Stats for Morten Voss 🏆", header.Text.Text)

		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "> *Level*: 1 (position 3)")
		assert.Contains(t, section.Text.Text, "> *Points*: 42")
		assert.Contains(t, section.Text.Text, "> *Matches*: 8 won / 2 lost")
		assert.Contains(t, section.Text.Text, "> *Sets*: 16 won / 5 lost")
	})

	t.Run("formats message for a player not found", func(t *testing.T) {
		msg := client.formatPlayerNotFound("Unknown Player")
		require.Len(t, msg.Blocks.BlockSet, 1)

		section, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Sorry, I couldn't find a player matching *Unknown Player*. Try a different name.", section.Text.Text)
	})
}
