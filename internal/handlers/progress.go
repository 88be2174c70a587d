package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/service"
)

const (
	msgMarkedCompleted  = "Habit marked as completed"
	msgMarkedIncomplete = "Habit marked as incomplete"
	msgNoProgress       = "No progress was recorded for this date"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new habit progress handler
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// MarkCompleted handles POST /api/v1/habits/:id/complete
func (h *ProgressHandler) MarkCompleted(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID := c.Param("id")

	var req models.MarkCompletedRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	progress, _, err := h.progressService.MarkCompleted(c.Request.Context(), userID, habitID, date, req.ActualValue)
	if err != nil {
		writeError(c, err, "habit", habitID)
		return
	}

	resp := models.NewProgressResponse(progress)
	c.JSON(http.StatusOK, models.MarkResponse{
		Success:  true,
		Message:  msgMarkedCompleted,
		Progress: &resp,
	})
}

// MarkIncomplete handles POST /api/v1/habits/:id/incomplete
func (h *ProgressHandler) MarkIncomplete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID := c.Param("id")

	var req models.MarkIncompleteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	progress, updated, err := h.progressService.MarkIncomplete(c.Request.Context(), userID, habitID, date)
	if err != nil {
		writeError(c, err, "habit", habitID)
		return
	}

	// nothing to update is a success, not a 404
	if !updated {
		c.JSON(http.StatusOK, models.MarkResponse{Success: true, Message: msgNoProgress})
		return
	}

	resp := models.NewProgressResponse(progress)
	c.JSON(http.StatusOK, models.MarkResponse{
		Success:  true,
		Message:  msgMarkedIncomplete,
		Progress: &resp,
	})
}

// GetProgress handles GET /api/v1/habits/:id/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID := c.Param("id")

	report, err := h.progressService.GetProgressReport(c.Request.Context(), userID, habitID)
	if err != nil {
		writeError(c, err, "habit", habitID)
		return
	}

	c.JSON(http.StatusOK, report)
}
