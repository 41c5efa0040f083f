package challenge

// Store defines the interface for interacting with challenges.
type Store interface {
	Create(challengerID, opponentID string) (*Challenge, error)
	Get(challengeID string) (*Challenge, error)
	List() ([]*Challenge, error)
	Accept(challengeID string) error
	Complete(challengeID string) error
	Cancel(challengeID string) error
}
