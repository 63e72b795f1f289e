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

// reminderHandler handles HTTP requests related to reminders.
type reminderHandler struct {
	reminderService portssvc.ReminderSvcFacade
}

func newReminderHandler(rs portssvc.ReminderSvcFacade) *reminderHandler {
	return &reminderHandler{
		reminderService: rs,
	}
}

// registerReminderRoutes registers routes related to reminders.
func registerReminderRoutes(rg *gin.RouterGroup, reminderService portssvc.ReminderSvcFacade) {
	h := newReminderHandler(reminderService)

	reminders := rg.Group("/reminders")
	{
		reminders.GET("/due", h.listDueReminders)
		reminders.POST("/sweep", h.sweepReminders)
		reminders.POST("/:id/sent", h.markSent)
	}
}

// listDueReminders godoc
// @Summary List due reminders
// @Description Retrieves the user's unsent reminders whose date has arrived
// @Tags reminders
// @Produce  json
// @Success 200 {array} dto.ReminderResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list reminders"
// @Security BearerAuth
// @Router /reminders/due [get]
func (h *reminderHandler) listDueReminders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	reminders, err := h.reminderService.ListDueReminders(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list due reminders", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list reminders"})
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderResponses(reminders))
}

// sweepReminders godoc
// @Summary Run a reminder sweep
// @Description Computes due deadline and cadence reminders across active goals and creates them idempotently. The same pass runs periodically in the background; this endpoint triggers it on demand.
// @Tags reminders
// @Produce  json
// @Success 200 {object} dto.SweepRemindersResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Sweep failed"
// @Security BearerAuth
// @Router /reminders/sweep [post]
func (h *reminderHandler) sweepReminders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.reminderService.SweepReminders(c.Request.Context())
	if err != nil {
		logger.Error("Reminder sweep failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Sweep failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// markSent godoc
// @Summary Mark a reminder as sent
// @Description Acknowledges delivery of a reminder exactly once; repeated calls fail
// @Tags reminders
// @Produce  json
// @Param   id path string true "Reminder ID"
// @Success 200 {object} dto.ReminderResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Reminder not found"
// @Failure 409 {object} ErrorResponse "Reminder already sent"
// @Failure 500 {object} ErrorResponse "Failed to mark reminder"
// @Security BearerAuth
// @Router /reminders/{id}/sent [post]
func (h *reminderHandler) markSent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reminderID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	reminder, err := h.reminderService.MarkSent(c.Request.Context(), reminderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Reminder not found"})
		case errors.Is(err, services.ErrAlreadySent), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Reminder already sent"})
		default:
			logger.Error("Failed to mark reminder sent", slog.String("error", err.Error()), slog.String("reminder_id", reminderID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to mark reminder"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderResponse(reminder))
}
