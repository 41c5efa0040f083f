package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	player1ID   string
	player2ID   string
	player1Sets []int
	player2Sets []int
	winnerID    string
	challengeID string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(challengesCmd)
	rootCmd.AddCommand(metricsCmd)

	submitCmd.Flags().StringVar(&player1ID, "player1", "", "ID of the first player")
	submitCmd.Flags().StringVar(&player2ID, "player2", "", "ID of the second player")
	submitCmd.Flags().IntSliceVar(&player1Sets, "sets1", nil, "Games won per set by the first player")
	submitCmd.Flags().IntSliceVar(&player2Sets, "sets2", nil, "Games won per set by the second player")
	submitCmd.Flags().StringVar(&winnerID, "winner", "", "ID of the winning player")
	submitCmd.Flags().StringVar(&challengeID, "challenge", "", "Optional challenge ID this result completes")
	rootCmd.AddCommand(submitCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "List the current ladder standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/standings")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the ladder store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List reported match results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/results")
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Trigger a full recompute of ladder positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/recompute-positions", nil)
	},
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "List challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/challenges")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a match result for settlement",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"challenge_id": challengeID,
			"player1_id":   player1ID,
			"player2_id":   player2ID,
			"player1_sets": player1Sets,
			"player2_sets": player2Sets,
			"winner_id":    winnerID,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		return performPostRequest("/results", body)
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
