package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/pubsub"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Store.ListStandings()
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(standings); err != nil {
			log.Error("Failed to encode standings to JSON", "error", err)
		}
	}
}

// ResultsHandler serves reported results on GET and accepts a new report on POST.
func (s *Server) ResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.submitResult(w, r)
		default:
			results, err := s.Store.GetAllMatchResults()
			if err != nil {
				http.Error(w, "Failed to get match results", http.StatusInternalServerError)
				log.Error("Failed to get match results from store", "error", err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(results); err != nil {
				log.Error("Failed to encode match results to JSON", "error", err)
			}
		}
	}
}

type submitResultRequest struct {
	ChallengeID string `json:"challenge_id"`
	Player1ID   string `json:"player1_id"`
	Player2ID   string `json:"player2_id"`
	Player1Sets []int  `json:"player1_sets"`
	Player2Sets []int  `json:"player2_sets"`
	WinnerID    string `json:"winner_id"`
}

func (req *submitResultRequest) validate() error {
	if req.Player1ID == "" || req.Player2ID == "" {
		return fmt.Errorf("both player ids are required")
	}
	if req.Player1ID == req.Player2ID {
		return fmt.Errorf("a player cannot play themselves")
	}
	if len(req.Player1Sets) < 2 || len(req.Player1Sets) != len(req.Player2Sets) {
		return fmt.Errorf("at least two sets of equal length are required")
	}
	for i := range req.Player1Sets {
		if req.Player1Sets[i] < 0 || req.Player2Sets[i] < 0 {
			return fmt.Errorf("set scores cannot be negative")
		}
	}
	if req.WinnerID != req.Player1ID && req.WinnerID != req.Player2ID {
		return fmt.Errorf("winner must be one of the participants")
	}
	return nil
}

func (s *Server) submitResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode result submission", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		log.Warn("Rejected result submission", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.Store.IsKnownPlayer(req.Player1ID) || !s.Store.IsKnownPlayer(req.Player2ID) {
		http.Error(w, "Unknown player", http.StatusBadRequest)
		return
	}

	result := &ladder.MatchResult{
		ID:          uuid.New().String(),
		ChallengeID: req.ChallengeID,
		Player1ID:   req.Player1ID,
		Player2ID:   req.Player2ID,
		Player1Sets: req.Player1Sets,
		Player2Sets: req.Player2Sets,
		WinnerID:    req.WinnerID,
		Status:      ladder.StatusPendingValidation,
		CreatedAt:   time.Now().Unix(),
	}
	if err := s.Store.InsertMatchResult(result); err != nil {
		log.Error("Failed to insert match result", "error", err)
		http.Error(w, "Failed to save match result", http.StatusInternalServerError)
		return
	}
	log.Info("Accepted match result", "matchResultID", result.ID, "winner", result.WinnerID)

	if !isDryRunFromContext(r) {
		if err := s.pubsub.SendMessage(pubsub.EventSettleResult, pubsub.SettleRequest{MatchResultID: result.ID}); err != nil {
			log.Error("Failed to publish settle request", "error", err, "matchResultID", result.ID)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"id": result.ID}); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// decodePushMessage unwraps a pubsub push delivery: outer JSON wrapper, then
// base64, leaving the raw MessagePack payload.
func decodePushMessage(body io.Reader) ([]byte, error) {
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return rawData, nil
}

// SettleHandler receives settle-match-result push deliveries. NotFound and
// AlreadySettled both acknowledge the message, otherwise pubsub would redeliver
// a request that can never succeed.
func (s *Server) SettleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushMessage(r.Body)
		if err != nil {
			log.Error("Failed to decode settle message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		var req pubsub.SettleRequest
		if err := s.pubsub.ProcessMessage(rawData, &req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		err = s.Settlement.Settle(req.MatchResultID, isDryRun)
		switch {
		case err == nil:
			w.Write([]byte("OK"))
		case errors.Is(err, ladder.ErrAlreadySettled):
			log.Info("Acknowledging settle request for already settled result", "matchResultID", req.MatchResultID)
			w.Write([]byte("OK"))
		case errors.Is(err, ladder.ErrMatchResultNotFound):
			log.Warn("Acknowledging settle request for unknown result", "matchResultID", req.MatchResultID)
			w.Write([]byte("OK"))
		default:
			log.Error("Failed to settle match result", "error", err, "matchResultID", req.MatchResultID)
			http.Error(w, "Failed to settle match result", http.StatusInternalServerError)
		}
	}
}

// RecomputePositionsHandler rebuilds every level's ordering. It serves both
// direct calls and recompute-positions push deliveries.
func (s *Server) RecomputePositionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Settlement.RecomputePositions(); err != nil {
			http.Error(w, "Failed to recompute positions", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Positions recomputed.")
	}
}

func (s *Server) MonthlyStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "playerID is required", http.StatusBadRequest)
			return
		}
		stats, err := s.Store.GetMonthlyStats(playerID)
		if err != nil {
			http.Error(w, "Failed to get monthly stats", http.StatusInternalServerError)
			log.Error("Failed to get monthly stats from store", "error", err, "playerID", playerID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to encode monthly stats to JSON", "error", err)
		}
	}
}

func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userID")
		if userID == "" {
			http.Error(w, "userID is required", http.StatusBadRequest)
			return
		}
		notifications, err := s.Store.GetNotifications(userID)
		if err != nil {
			http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
			log.Error("Failed to get notifications from store", "error", err, "userID", userID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(notifications); err != nil {
			log.Error("Failed to encode notifications to JSON", "error", err)
		}
	}
}

// ChallengesHandler lists challenges on GET and creates one on POST.
func (s *Server) ChallengesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req struct {
				ChallengerID string `json:"challenger_id"`
				OpponentID   string `json:"opponent_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if req.ChallengerID == "" || req.OpponentID == "" || req.ChallengerID == req.OpponentID {
				http.Error(w, "challenger_id and opponent_id must be two distinct players", http.StatusBadRequest)
				return
			}
			ch, err := s.Challenges.Create(req.ChallengerID, req.OpponentID)
			if err != nil {
				http.Error(w, "Failed to create challenge", http.StatusInternalServerError)
				log.Error("Failed to create challenge", "error", err)
				return
			}
			log.Info("Created challenge", "challengeID", ch.ID)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			if err := json.NewEncoder(w).Encode(ch); err != nil {
				log.Error("Failed to write response", "error", err)
			}
		default:
			challenges, err := s.Challenges.List()
			if err != nil {
				http.Error(w, "Failed to get challenges", http.StatusInternalServerError)
				log.Error("Failed to get challenges from store", "error", err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(challenges); err != nil {
				log.Error("Failed to encode challenges to JSON", "error", err)
			}
		}
	}
}

func (s *Server) AcceptChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		challengeID := r.URL.Query().Get("challengeID")
		if challengeID == "" {
			http.Error(w, "challengeID is required", http.StatusBadRequest)
			return
		}
		if err := s.Challenges.Accept(challengeID); err != nil {
			http.Error(w, "Failed to accept challenge", http.StatusConflict)
			log.Error("Failed to accept challenge", "error", err, "challengeID", challengeID)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Challenge accepted.")
	}
}

func (s *Server) CancelChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		challengeID := r.URL.Query().Get("challengeID")
		if challengeID == "" {
			http.Error(w, "challengeID is required", http.StatusBadRequest)
			return
		}
		if err := s.Challenges.Cancel(challengeID); err != nil {
			http.Error(w, "Failed to cancel challenge", http.StatusConflict)
			log.Error("Failed to cancel challenge", "error", err, "challengeID", challengeID)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Challenge cancelled.")
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LadderCommandHandler returns a handler for the /ladder Slack command.
func (s *Server) LadderCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Store.ListStandings()
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLadderResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format ladder", http.StatusInternalServerError)
			log.Error("Failed to format ladder", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		standing, err := s.Store.GetStandingByName(playerName)
		var msg any
		if err != nil {
			log.Warn("Could not find player standing", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerStatsResponse(standing, playerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
