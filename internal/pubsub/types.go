package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventSettleResult       EventType = "settle-match-result"
	EventRecomputePositions EventType = "recompute-positions"
)

// SettleRequest is the payload for a settle-match-result message.
type SettleRequest struct {
	MatchResultID string
}
