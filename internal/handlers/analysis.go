package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/mixsight/mixsight/internal/analysis"
	"github.com/mixsight/mixsight/internal/logging"
)

// Analysis exposes the funnel pipeline over HTTP.
type Analysis struct {
	svc *analysis.Service
}

// NewAnalysis wires the handler to an analysis service.
func NewAnalysis(svc *analysis.Service) *Analysis {
	return &Analysis{svc: svc}
}

// HandleRun runs one funnel analysis and returns the full report.
// POST /api/analysis
func (h *Analysis) HandleRun(c fiber.Ctx) error {
	var req analysis.Request
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}

	result, err := h.svc.Run(c.Context(), &req)
	if err != nil {
		// Run only fails on request validation; upstream trouble degrades to
		// empty datasets inside the pipeline.
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.L().Debug("analysis served", zap.String("run_id", result.RunID))
	return c.JSON(result)
}

// HandleHealth is a liveness probe.
// GET /api/health
func HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
