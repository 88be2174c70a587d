package handlers

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything mounted under /api/v1
type Handlers struct {
	Progress  *ProgressHandler
	Stats     *StatsHandler
	Nutrition *NutritionHandler
}

// Register mounts the API routes on v1. auth runs on every route; mutate runs
// additionally on the habit mark endpoints (idempotency, stricter rate limit).
func (h *Handlers) Register(v1 gin.IRouter, auth gin.HandlerFunc, mutate ...gin.HandlerFunc) {
	withMutate := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(mutate), handler)
	}

	protected := v1.Group("")
	protected.Use(auth)

	habits := protected.Group("/habits")
	{
		habits.POST("/:id/complete", withMutate(h.Progress.MarkCompleted)...)
		habits.POST("/:id/incomplete", withMutate(h.Progress.MarkIncomplete)...)
		habits.GET("/:id/progress", h.Progress.GetProgress)
	}

	stats := protected.Group("/stats")
	{
		stats.GET("/summary", h.Stats.GetSummary)
		stats.GET("/user", h.Stats.GetUserStats)
		stats.POST("/refresh", h.Stats.Refresh)
		stats.GET("/weekly", h.Stats.GetWeekly)
		stats.GET("/monthly", h.Stats.GetMonthly)
		stats.GET("/aggregate", h.Stats.GetAggregate)
		stats.GET("/dashboard", h.Stats.GetDashboard)
		stats.POST("/daily/rebuild", h.Stats.RebuildDaily)
	}

	nutrition := protected.Group("/nutrition")
	{
		nutrition.GET("/daily", h.Nutrition.GetDaily)
		nutrition.GET("/weekly-average", h.Nutrition.GetWeeklyAverage)
	}
}
