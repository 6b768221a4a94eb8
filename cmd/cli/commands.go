package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	sweepCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report the matches that would be completed")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(scoreboardCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the active matches of the member",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches")
	},
}

var matchCmd = &cobra.Command{
	Use:   "match [code]",
	Short: "Show a match by its join code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/code/"+args[0])
	},
}

var scoreboardCmd = &cobra.Command{
	Use:   "scoreboard [match id]",
	Short: "Show the live scoreboard of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/"+args[0]+"/scoreboard")
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking [match id]",
	Short: "Show the equalized ranking of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/"+args[0]+"/ranking")
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete stale matches now (administrators only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/sweep"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(http.MethodPost, endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

func performRequest(method, endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if memberID != "" {
		req.Header.Set("X-Member-ID", memberID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
