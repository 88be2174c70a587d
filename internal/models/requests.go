package models

// MarkCompletedRequest is the body of POST /habits/:id/complete.
// Both fields are optional: date defaults to today, actual_value to the habit target.
type MarkCompletedRequest struct {
	Date        *string  `json:"date"`
	ActualValue *float64 `json:"actual_value" binding:"omitempty,gte=0"`
}

// MarkIncompleteRequest is the body of POST /habits/:id/incomplete
type MarkIncompleteRequest struct {
	Date *string `json:"date"`
}

// RebuildDailyStatsRequest is the body of POST /stats/daily/rebuild
type RebuildDailyStatsRequest struct {
	Date *string `json:"date"`
}

// ProgressResponse is the trimmed progress record returned by the mark endpoints
type ProgressResponse struct {
	ID          string  `json:"id"`
	Date        Date    `json:"date"`
	Completed   bool    `json:"completed"`
	ActualValue float64 `json:"actual_value"`
}

// NewProgressResponse trims a progress row for the wire
func NewProgressResponse(p *HabitProgress) ProgressResponse {
	return ProgressResponse{
		ID:          p.ID,
		Date:        p.Date,
		Completed:   p.Completed,
		ActualValue: p.ActualValue,
	}
}

// MarkResponse is returned by both mark endpoints. Progress is absent when
// mark-incomplete found nothing to update.
type MarkResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Progress *ProgressResponse `json:"progress,omitempty"`
}
