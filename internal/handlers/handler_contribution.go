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

// contributionHandler handles HTTP requests for a goal's ledger.
type contributionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newContributionHandler(ls portssvc.LedgerSvcFacade) *contributionHandler {
	return &contributionHandler{
		ledgerService: ls,
	}
}

// registerContributionRoutes registers ledger routes under the goals group.
func registerContributionRoutes(goals *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newContributionHandler(ledgerService)

	goals.POST("/:id/contributions", h.addContribution)
	goals.GET("/:id/contributions", h.listContributions)
}

// addContribution godoc
// @Summary Record a contribution
// @Description Appends a ledger entry to the goal, updates its cached progress, evaluates milestones and auto-completes the goal when the target is reached
// @Tags contributions
// @Accept  json
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   contribution body dto.AddContributionRequest true "Contribution details"
// @Success 201 {object} dto.AddContributionResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or zero amount"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Goal not found"
// @Failure 409 {object} ErrorResponse "Goal is completed or cancelled"
// @Failure 500 {object} ErrorResponse "Failed to record contribution"
// @Security BearerAuth
// @Router /goals/{id}/contributions [post]
func (h *contributionHandler) addContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalID := c.Param("id")

	var req dto.AddContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddContribution", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.ledgerService.AddContribution(c.Request.Context(), goalID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Goal not found"})
		case errors.Is(err, services.ErrInvalidGoalState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrZeroAmount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to add contribution", slog.String("error", err.Error()), slog.String("goal_id", goalID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record contribution"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// listContributions godoc
// @Summary List a goal's contributions
// @Description Retrieves a paginated list of the goal's ledger entries, most recent first
// @Tags contributions
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListContributionsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Goal not found"
// @Failure 500 {object} ErrorResponse "Failed to list contributions"
// @Security BearerAuth
// @Router /goals/{id}/contributions [get]
func (h *contributionHandler) listContributions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListContributionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListContributions(c.Request.Context(), goalID, userID, params)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Goal not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to list contributions", slog.String("error", err.Error()), slog.String("goal_id", goalID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list contributions"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
