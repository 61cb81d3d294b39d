package shift

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Shift is an organization's working-time template.
type Shift struct {
	ID                    string
	OrganizationID        string
	Name                  string
	StartTime             string // HH:MM, local to Timezone
	EndTime               string // HH:MM, local to Timezone
	BreakHours            float64
	LateThresholdMinutes  int
	EarlyThresholdMinutes int
	DurationHours         float64
	WeeklyOffs            []string // weekday names, e.g. "Saturday", "Sunday"
	Timezone              string
	Site                  *Site
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Site is the geofence a shift is worked from.
type Site struct {
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

// ParseClock parses an HH:MM wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// IsOvernight reports whether the shift ends on the calendar day after it starts.
func (s Shift) IsOvernight() bool {
	sh, sm, err := ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	eh, em, err := ParseClock(s.EndTime)
	if err != nil {
		return false
	}
	return eh*60+em <= sh*60+sm
}

// Location returns the shift's time zone, UTC when unset or unknown.
func (s Shift) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s Shift) IsWeeklyOff(day time.Weekday) bool {
	return slices.ContainsFunc(s.WeeklyOffs, func(name string) bool {
		return strings.EqualFold(name, day.String())
	})
}

// StartOn returns the shift start on the calendar date of day. Only the
// year, month and day of day are used.
func (s Shift) StartOn(day time.Time) (time.Time, error) {
	h, m, err := ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, s.Location()), nil
}

// EndOn returns the shift end for a shift starting on the calendar date of day.
func (s Shift) EndOn(day time.Time) (time.Time, error) {
	h, m, err := ParseClock(s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	end := time.Date(y, mo, d, h, m, 0, 0, s.Location())
	if s.IsOvernight() {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

// Holiday is an organization calendar entry.
type Holiday struct {
	ID             string
	OrganizationID string
	Date           time.Time
	Name           string
	ShiftIDs       []string // empty applies to every shift
	IsOptional     bool
}

// AppliesTo reports whether the holiday covers the given shift. A nil shift
// only matches organization-wide holidays.
func (h Holiday) AppliesTo(shiftID *string) bool {
	if len(h.ShiftIDs) == 0 {
		return true
	}
	if shiftID == nil {
		return false
	}
	return slices.Contains(h.ShiftIDs, *shiftID)
}

// Assignment binds an employee to a shift over a date range.
type Assignment struct {
	ID         string
	EmployeeID string
	ShiftID    string
	StartDate  time.Time
	EndDate    *time.Time
}

func (a Assignment) Covers(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !date.After(*a.EndDate)
}
