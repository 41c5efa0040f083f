package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create dummy players and their standings, spread over two levels.
	type seedPlayer struct {
		ID       string
		Name     string
		Level    int
		Position int
	}
	dummyPlayers := []seedPlayer{
		{ID: "player-1", Name: "Seeder Player A", Level: 1, Position: 1},
		{ID: "player-2", Name: "Seeder Player B", Level: 1, Position: 2},
		{ID: "player-3", Name: "Seeder Player C", Level: 2, Position: 1},
		{ID: "player-4", Name: "Seeder Player D", Level: 2, Position: 2},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name) VALUES (?, ?)", p.ID, p.Name)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
		_, err = db.Exec("INSERT OR IGNORE INTO player_standings (player_id, current_level, current_position) VALUES (?, ?, ?)", p.ID, p.Level, p.Position)
		if err != nil {
			log.Fatalf("Failed to insert standing for %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players and standings exist.")

	const batchSize = 100 // Insert 100 results at a time
	const numResults = 10000

	log.Info("Preparing to insert dummy match results...", "total", numResults, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*9) // 9 columns per result

	for i := 0; i < numResults; i++ {
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		p1 := dummyPlayers[rand.Intn(len(dummyPlayers))]
		p2 := dummyPlayers[rand.Intn(len(dummyPlayers))]
		for p2.ID == p1.ID {
			p2 = dummyPlayers[rand.Intn(len(dummyPlayers))]
		}

		// Straight-sets win for player one keeps the declared winner consistent.
		p1Sets := []int{6, 6}
		p2Sets := []int{rand.Intn(5), rand.Intn(5)}
		p1Blob, _ := json.Marshal(p1Sets)
		p2Blob, _ := json.Marshal(p2Sets)

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			nil, // challenge_id
			p1.ID,
			p2.ID,
			string(p1Blob),
			string(p2Blob),
			p1.ID,
			"pending_validation",
			playedAt.Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numResults {
			stmt := fmt.Sprintf(`
				INSERT INTO match_results (id, challenge_id, player1_id, player2_id,
					player1_sets_json, player2_sets_json, winner_id, status, created_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*9)
			log.Info("Inserted batch", "completed", i+1, "total", numResults)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy match results.", "duration", duration)
}
