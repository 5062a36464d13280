package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"soclisten/internal/models"
)

var (
	analyzeKeywords []string
	analyzeLimit    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot analysis from the command line",
	Long: `Runs the same search-and-classify pipeline the API serves, printing
progress to stderr and the final aggregate as a table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if len(analyzeKeywords) == 0 {
			return fmt.Errorf("at least one --keyword is required")
		}
		limit := analyzeLimit
		if limit == 0 {
			limit = appInstance.Config.Search.DefaultLimit
		}
		if limit < 1 {
			return fmt.Errorf("limit must be >= 1, got %d", limit)
		}

		req := models.AnalysisRequest{Keywords: analyzeKeywords, Limit: limit}

		var final *models.AggregatedResult
		var failure string
		appInstance.Orchestrator.Run(cmd.Context(), req, func(ev models.StreamEvent) {
			switch ev.Status {
			case models.StatusProgress:
				fmt.Fprintln(os.Stderr, ev.Message)
			case models.StatusComplete:
				final = ev.Data
			case models.StatusError:
				failure = ev.Message
			}
		})

		if failure != "" {
			return fmt.Errorf("analysis failed: %s", failure)
		}
		if final == nil {
			return fmt.Errorf("analysis produced no summary")
		}

		renderAggregate(os.Stdout, *final)
		if final.TotalAnalyzed > 0 {
			fmt.Println()
			renderResults(os.Stdout, final.RecentResults)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVarP(&analyzeKeywords, "keyword", "k", nil, "keyword to search for (repeatable)")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "l", 0, "maximum posts to analyze (defaults to config)")
}

func rateString(rate float64) string {
	s := fmt.Sprintf("%.1f%%", rate*100)
	if rate >= 0.5 {
		return color.RedString(s)
	}
	if rate > 0 {
		return color.YellowString(s)
	}
	return color.GreenString(s)
}
