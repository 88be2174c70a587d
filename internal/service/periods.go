package service

import (
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

// MonthEnd returns the last day of d's month. Day 28 plus 4 days always lands
// in the next month; stepping back by that date's day-of-month gives the last
// day of d's month whatever its length.
func MonthEnd(d models.Date) models.Date {
	nextMonth := models.NewDate(d.Year(), d.Month(), 28).AddDays(4)
	return nextMonth.AddDays(-nextMonth.Day())
}

// WeekBounds returns the Monday..Sunday ISO week containing d
func WeekBounds(d models.Date) (models.Date, models.Date) {
	start := d.AddDays(-d.Weekday())
	return start, start.AddDays(6)
}

// MonthBounds returns the first and last day of d's calendar month
func MonthBounds(d models.Date) (models.Date, models.Date) {
	return models.NewDate(d.Year(), d.Month(), 1), MonthEnd(d)
}

// weekBucket returns the week k weeks before the one containing today
func weekBucket(today models.Date, k int) (models.Date, models.Date) {
	return WeekBounds(today.AddDays(-7 * k))
}

// monthBucket returns the calendar month k months before today's
func monthBucket(today models.Date, k int) (models.Date, models.Date) {
	// NewDate normalizes a zero or negative month into the previous year
	first := models.NewDate(today.Year(), today.Month()-time.Month(k), 1)
	return MonthBounds(first)
}

func weekLabel(start models.Date) string {
	return start.String()
}

func monthLabel(start models.Date) string {
	return start.Time().Format("2006-01")
}
