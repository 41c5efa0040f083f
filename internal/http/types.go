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

type Server struct {
	Store          ladder.Store
	Challenges     challenge.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Settlement     *settlement.Service
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
