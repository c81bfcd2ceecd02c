package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// PlanRunIDHeader carries the planning run ID of a production plan response
const PlanRunIDHeader = "X-Plan-Run-ID"

// Planner produces a production plan as of a run date
type Planner interface {
	Assemble(ctx context.Context, runDate time.Time) (*dto.PlanResult, error)
	Location() *time.Location
}

// PlanHandler serves the production plan
type PlanHandler struct {
	planner Planner
	timeout time.Duration
	now     func() time.Time
}

// NewPlanHandler creates a plan handler; a zero timeout means no per-request deadline
func NewPlanHandler(planner Planner, timeout time.Duration) *PlanHandler {
	return &PlanHandler{
		planner: planner,
		timeout: timeout,
		now:     time.Now,
	}
}

// RegisterRoutes registers the plan routes
func (h *PlanHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	v1.GET("/production-plan", h.HandleGetProductionPlan)
}

// HandleGetProductionPlan runs one planning pass and returns the plan with its
// procurement schedule. The optional date query parameter overrides today.
func (h *PlanHandler) HandleGetProductionPlan(c *gin.Context) {
	loc := h.planner.Location()
	runDate := h.now().In(loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(entities.DateLayout, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
			return
		}
		runDate = parsed
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.planner.Assemble(ctx, runDate)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, orchestration.ErrSnapshotUnavailable) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		log.Error().Err(err).Int("status", status).Msg("production plan request failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header(PlanRunIDHeader, result.RunID)
	c.JSON(http.StatusOK, dto.NewProductionPlanResponse(result))
}
