package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/service"
)

type NutritionHandler struct {
	nutritionService service.NutritionService
}

// NewNutritionHandler creates a new nutrition stats handler
func NewNutritionHandler(nutritionService service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

// GetDaily handles GET /api/v1/nutrition/daily?date=
func (h *NutritionHandler) GetDaily(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	raw := c.Query("date")
	date, ok := optionalDate(c, "date", &raw)
	if !ok {
		return
	}

	summary, err := h.nutritionService.DailySummary(c.Request.Context(), userID, date)
	if err != nil {
		writeError(c, err, "nutrition", userID)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetWeeklyAverage handles GET /api/v1/nutrition/weekly-average?weeks_back=
func (h *NutritionHandler) GetWeeklyAverage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	weeksBack, ok := intQuery(c, "weeks_back", service.DefaultWeeksBack)
	if !ok {
		return
	}

	averages, err := h.nutritionService.WeeklyAverages(c.Request.Context(), userID, weeksBack)
	if err != nil {
		writeError(c, err, "nutrition", userID)
		return
	}

	c.JSON(http.StatusOK, averages)
}
