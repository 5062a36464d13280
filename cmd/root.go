package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soclisten/internal/app"
	"soclisten/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "soclisten",
	Short: "Social listening analysis service",
	Long: `soclisten searches Reddit for keyword-matched posts and classifies them
for vaccine hesitancy signals through an LLM provider, either as a streaming
HTTP API (serve) or as a one-shot CLI run (analyze).`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "results" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// contextKey keeps the app instance out of collision range of other context
// values.
type contextKey string

const appKey contextKey = "app"

func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}
