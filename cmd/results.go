package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"soclisten/internal/models"
)

var resultsServer string

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Fetch the accumulated analysis history from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 15 * time.Second}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, resultsServer+"/api/results", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching results from %s: %w", resultsServer, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}

		var results []models.AnalysisResult
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return fmt.Errorf("decoding results: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No results analyzed yet.")
			return nil
		}
		renderResults(os.Stdout, results)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().StringVar(&resultsServer, "server", "http://localhost:8000", "base URL of the running soclisten server")
}
