package http

import (
	"net/http"

	"github.com/courtline/ladder/internal/challenge"
	"github.com/courtline/ladder/internal/config"
	"github.com/courtline/ladder/internal/ladder"
	"github.com/courtline/ladder/internal/metrics"
	"github.com/courtline/ladder/internal/notifier"
	"github.com/courtline/ladder/internal/pubsub"
	"github.com/courtline/ladder/internal/settlement"
)

func NewServer(store ladder.Store, challenges challenge.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, settlementSvc *settlement.Service, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Challenges:     challenges,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Settlement:     settlementSvc,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/standings", Chain(s.ListStandingsHandler(), paramsMiddleware))
	s.Router.Handle("/results", Chain(s.ResultsHandler(), paramsMiddleware))
	s.Router.Handle("/settle", Chain(s.SettleHandler(), paramsMiddleware))
	s.Router.Handle("/recompute-positions", Chain(s.RecomputePositionsHandler(), paramsMiddleware))
	s.Router.Handle("/monthly-stats", Chain(s.MonthlyStatsHandler(), paramsMiddleware))
	s.Router.Handle("/notifications", Chain(s.NotificationsHandler(), paramsMiddleware))
	s.Router.Handle("/challenges", Chain(s.ChallengesHandler(), paramsMiddleware))
	s.Router.Handle("/challenges/accept", Chain(s.AcceptChallengeHandler(), paramsMiddleware))
	s.Router.Handle("/challenges/cancel", Chain(s.CancelChallengeHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/ladder", Chain(s.LadderCommandHandler(), paramsMiddleware, s.slackVerifyMiddleware))
	s.Router.Handle("/slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), paramsMiddleware, s.slackVerifyMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
