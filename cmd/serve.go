package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"soclisten/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the social listening HTTP API server",
	Long: `Starts the HTTP server exposing the analysis pipeline. POST /api/analyze
streams newline-delimited progress and result records; GET /api/results
returns everything analyzed since the process started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default()
		router.Use(apihandlers.CORSMiddleware())

		apiHandler := apihandlers.NewAPIHandler(appInstance)

		router.GET("/", apiHandler.RootHandler)
		router.GET("/health", apiHandler.HealthHandler)

		api := router.Group("/api")
		{
			api.POST("/analyze", apiHandler.AnalyzeHandler)
			api.GET("/results", apiHandler.ResultsHandler)
		}

		addr := serveAddr
		if addr == "" {
			addr = appInstance.Config.Server.Addr
		}
		port := servePort
		if port == "" {
			port = appInstance.Config.Server.Port
		}

		listenAddr := fmt.Sprintf("%s:%s", addr, port)
		log.Infof("starting social listening API server on http://%s", listenAddr)

		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (defaults to config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (defaults to config)")
}
