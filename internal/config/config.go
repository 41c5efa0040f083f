package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvInt := func(key string) int {
		value := getEnv(key)
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
		}
		return parsed
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Scoring: &ScoringConfig{
			WinPoints:  getEnvInt("WIN_POINTS"),
			LosePoints: getEnvInt("LOSE_POINTS"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}
