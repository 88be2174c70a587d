package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/service"
)

type StatsHandler struct {
	statsService      service.StatsService
	dailyStatsService service.DailyStatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService service.StatsService, dailyStatsService service.DailyStatsService) *StatsHandler {
	return &StatsHandler{
		statsService:      statsService,
		dailyStatsService: dailyStatsService,
	}
}

// GetSummary handles GET /api/v1/stats/summary
func (h *StatsHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.statsService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetUserStats handles GET /api/v1/stats/user
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetOrCreateUserStats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Refresh handles POST /api/v1/stats/refresh
func (h *StatsHandler) Refresh(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.Refresh(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWeekly handles GET /api/v1/stats/weekly?weeks_back=
func (h *StatsHandler) GetWeekly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	weeksBack, ok := intQuery(c, "weeks_back", service.DefaultWeeksBack)
	if !ok {
		return
	}

	series, err := h.statsService.WeeklySeries(c.Request.Context(), userID, weeksBack)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, series)
}

// GetMonthly handles GET /api/v1/stats/monthly?months_back=
func (h *StatsHandler) GetMonthly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	monthsBack, ok := intQuery(c, "months_back", service.DefaultMonthsBack)
	if !ok {
		return
	}

	series, err := h.statsService.MonthlySeries(c.Request.Context(), userID, monthsBack)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, series)
}

// GetAggregate handles GET /api/v1/stats/aggregate?type=&start_date=&end_date=
func (h *StatsHandler) GetAggregate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entity, valid := models.ParseEntityType(c.Query("type"))
	if !valid {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: "type", Message: "must be one of workouts, nutrition, habit_progress", Code: service.CodeInvalidType},
		}))
		return
	}
	start, ok := requiredDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := requiredDateQuery(c, "end_date")
	if !ok {
		return
	}

	agg, err := h.statsService.Aggregate(c.Request.Context(), userID, entity, start, end)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, agg)
}

// GetDashboard handles GET /api/v1/stats/dashboard
func (h *StatsHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.statsService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// RebuildDaily handles POST /api/v1/stats/daily/rebuild
func (h *StatsHandler) RebuildDaily(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.RebuildDailyStatsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	daily, err := h.dailyStatsService.Rebuild(c.Request.Context(), userID, date)
	if err != nil {
		writeError(c, err, "stats", userID)
		return
	}

	c.JSON(http.StatusOK, daily)
}
