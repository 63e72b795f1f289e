package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dhanarakshak/goals-backend/internal/apperrors"
	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/core/services"
	"github.com/dhanarakshak/goals-backend/internal/dto"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// milestoneHandler handles HTTP requests for a goal's milestones.
type milestoneHandler struct {
	milestoneService portssvc.MilestoneSvcFacade
}

func newMilestoneHandler(ms portssvc.MilestoneSvcFacade) *milestoneHandler {
	return &milestoneHandler{
		milestoneService: ms,
	}
}

// registerMilestoneRoutes registers milestone routes under the goals group.
func registerMilestoneRoutes(goals *gin.RouterGroup, milestoneService portssvc.MilestoneSvcFacade) {
	h := newMilestoneHandler(milestoneService)

	goals.GET("/:id/milestones", h.listMilestones)
	goals.POST("/:id/milestones", h.createMilestone)
	goals.PUT("/:id/milestones/:milestoneID/achievement", h.overrideAchievement)
}

// listMilestones godoc
// @Summary List a goal's milestones
// @Description Retrieves all milestones for a goal, ordered by target amount
// @Tags milestones
// @Produce  json
// @Param   id path string true "Goal ID"
// @Success 200 {array} dto.MilestoneResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Goal not found"
// @Failure 500 {object} ErrorResponse "Failed to list milestones"
// @Security BearerAuth
// @Router /goals/{id}/milestones [get]
func (h *milestoneHandler) listMilestones(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	milestones, err := h.milestoneService.ListMilestones(c.Request.Context(), goalID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Goal not found"})
		} else {
			logger.Error("Failed to list milestones", slog.String("error", err.Error()), slog.String("goal_id", goalID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list milestones"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneResponses(milestones))
}

// createMilestone godoc
// @Summary Add a milestone to a goal
// @Description Creates a milestone; if the goal's saved amount already covers it, it is recorded as achieved immediately
// @Tags milestones
// @Accept  json
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   milestone body dto.CreateMilestoneRequest true "Milestone details"
// @Success 201 {object} dto.MilestoneResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Goal not found"
// @Failure 409 {object} ErrorResponse "Goal is in a terminal state"
// @Failure 500 {object} ErrorResponse "Failed to create milestone"
// @Security BearerAuth
// @Router /goals/{id}/milestones [post]
func (h *milestoneHandler) createMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalID := c.Param("id")

	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMilestone", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	milestone, err := h.milestoneService.CreateMilestone(c.Request.Context(), goalID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Goal not found"})
		case errors.Is(err, services.ErrInvalidGoalState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrTargetAmountNotPositive), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to create milestone", slog.String("error", err.Error()), slog.String("goal_id", goalID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create milestone"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToMilestoneResponse(milestone))
}

// overrideAchievement godoc
// @Summary Override a milestone's achievement state
// @Description Administrative correction path; the only way achievement can be reverted
// @Tags milestones
// @Accept  json
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   milestoneID path string true "Milestone ID"
// @Param   override body dto.OverrideMilestoneRequest true "Desired achievement state"
// @Success 200 {object} dto.MilestoneResponse
// @Failure 400 {object} ErrorResponse "Invalid input or missing achievedDate"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Goal or milestone not found"
// @Failure 500 {object} ErrorResponse "Failed to override milestone"
// @Security BearerAuth
// @Router /goals/{id}/milestones/{milestoneID}/achievement [put]
func (h *milestoneHandler) overrideAchievement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalID := c.Param("id")
	milestoneID := c.Param("milestoneID")

	var req dto.OverrideMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	milestone, err := h.milestoneService.AchieveOverride(c.Request.Context(), goalID, milestoneID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Milestone not found"})
		case errors.Is(err, services.ErrAchievedDateRequired), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to override milestone achievement", slog.String("error", err.Error()),
				slog.String("goal_id", goalID), slog.String("milestone_id", milestoneID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to override milestone"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneResponse(milestone))
}
