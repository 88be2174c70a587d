// Package clock provides the reference clock used to decide what "today" is.
//
// Every date-sensitive computation (streaks, period buckets, default dates)
// takes its notion of today from a Clock so tests can pin it.
package clock

import (
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

// Clock reports the current instant
type Clock interface {
	Now() time.Time
}

// Today returns the calendar date of c.Now() in the clock's own location
func Today(c Clock) models.Date {
	return models.DateOf(c.Now())
}

type systemClock struct {
	loc *time.Location
}

// System returns a wall clock evaluated in loc. A nil loc means the process
// local zone.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// LoadLocation resolves a configured zone name; empty means process local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// FixedClock always reports the same instant
type FixedClock struct {
	T time.Time
}

// Fixed returns a clock pinned to t
func Fixed(t time.Time) *FixedClock {
	return &FixedClock{T: t}
}

// FixedDate returns a clock pinned to noon of the given date
func FixedDate(d models.Date) *FixedClock {
	return &FixedClock{T: d.Time().Add(12 * time.Hour)}
}

func (c *FixedClock) Now() time.Time {
	return c.T
}

// Set moves the pinned instant
func (c *FixedClock) Set(t time.Time) {
	c.T = t
}
