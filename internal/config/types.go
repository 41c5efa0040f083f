package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Scoring       *ScoringConfig
	ProjectID     string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// ScoringConfig holds the points credited per settled match. It is a pointer on
// Config so the settlement service can distinguish "not configured" from zero.
type ScoringConfig struct {
	WinPoints  int
	LosePoints int
}
