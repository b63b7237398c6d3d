package cli

import (
	"fmt"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mixsight/mixsight/internal/analysis"
	"github.com/mixsight/mixsight/internal/config"
	"github.com/mixsight/mixsight/internal/handlers"
	"github.com/mixsight/mixsight/internal/logging"
	"github.com/mixsight/mixsight/internal/mixpanel"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	Long: `Start the HTTP server that accepts analysis requests and returns funnel
reports.

Credentials must be configured before starting:

  MIXPANEL_PROJECT_ID   numeric project id
  MIXPANEL_TOKEN        authorization header value for the export API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// Configuration errors are fatal before any processing starts.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("missing credentials: %w", err)
	}

	svc := analysis.NewService(mixpanel.New(cfg))

	app := fiber.New(createFiberConfig("mixsight"))
	app.Use(fiberzap.New(fiberzap.Config{Logger: logging.L()}))
	registerRoutes(app, svc)

	logging.L().Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("export_base_url", cfg.BaseURL))

	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func registerRoutes(app *fiber.App, svc *analysis.Service) {
	h := handlers.NewAnalysis(svc)
	app.Post("/api/analysis", h.HandleRun)
	app.Get("/api/health", handlers.HandleHealth)
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides config)")
	RootCmd.AddCommand(serveCmd)
}
