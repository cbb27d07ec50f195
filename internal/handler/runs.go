package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/domain"
	"github.com/runsapi/runs-api/internal/dto"
)

// RunService is the run recording and listing service
type RunService interface {
	Create(ctx context.Context, scope, target string) (*domain.Run, error)
	List(ctx context.Context, scope string) ([]domain.Run, error)
}

// RunsHandler handles run endpoints
type RunsHandler struct {
	runService RunService
	logger     *zap.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(runService RunService, logger *zap.Logger) *RunsHandler {
	return &RunsHandler{
		runService: runService,
		logger:     logger,
	}
}

// CreateRun handles POST /runs/:scope
func (h *RunsHandler) CreateRun(c *fiber.Ctx) error {
	var req dto.CreateRunRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	scope := utils.CopyString(c.Params("scope"))

	run, err := h.runService.Create(c.UserContext(), scope, *req.Target)
	if err != nil {
		return err
	}

	h.logger.Debug("run created",
		zap.String("scope", scope),
		zap.Int64("id", run.ID),
		zap.String("category", string(run.Category)),
	)

	return c.JSON(run)
}

// ListRuns handles GET /runs/:scope
func (h *RunsHandler) ListRuns(c *fiber.Ctx) error {
	runs, err := h.runService.List(c.UserContext(), utils.CopyString(c.Params("scope")))
	if err != nil {
		return err
	}

	return c.JSON(runs)
}
