package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
)

const (
	DefaultBreakHours   = 1.0
	NoShiftHalfDayHours = 4.0
)

// PunchInput is everything the punch computation looks at.
type PunchInput struct {
	Date     time.Time // calendar date of the record, only Y/M/D is used
	PunchIn  *time.Time
	PunchOut *time.Time
	Shift    *shift.Shift
	Holidays []shift.Holiday
}

// PunchFacts are the flags and hours derived from one day's punches.
type PunchFacts struct {
	TotalHours     float64
	EffectiveHours float64
	IsLate         bool
	IsEarlyLeave   bool
	IsHalfDay      bool
	IsWeekend      bool
	IsHoliday      bool
}

// ComputePunch derives the day facts from scratch. Hours and the half-day and
// early-leave flags need both punches; lateness needs a punch-in and a shift.
func ComputePunch(in PunchInput) PunchFacts {
	var facts PunchFacts

	weekday := in.Date.Weekday()
	if in.Shift != nil {
		facts.IsWeekend = in.Shift.IsWeeklyOff(weekday)
	} else {
		facts.IsWeekend = weekday == time.Sunday
	}

	var shiftID *string
	if in.Shift != nil {
		shiftID = &in.Shift.ID
	}
	for _, h := range in.Holidays {
		if sameDate(h.Date, in.Date) && h.AppliesTo(shiftID) {
			facts.IsHoliday = true
			break
		}
	}

	if in.PunchIn != nil && in.Shift != nil {
		if start, err := in.Shift.StartOn(in.Date); err == nil {
			limit := start.Add(time.Duration(in.Shift.LateThresholdMinutes) * time.Minute)
			facts.IsLate = in.PunchIn.After(limit)
		}
	}

	if in.PunchIn == nil || in.PunchOut == nil || !in.PunchOut.After(*in.PunchIn) {
		return facts
	}

	total := in.PunchOut.Sub(*in.PunchIn).Hours()
	breakHours := DefaultBreakHours
	if in.Shift != nil {
		breakHours = in.Shift.BreakHours
	}
	effective := total - breakHours
	if effective < 0 {
		effective = 0
	}
	facts.TotalHours = utils.RoundTo(total, 2)
	facts.EffectiveHours = utils.RoundTo(effective, 2)

	halfDayHours := NoShiftHalfDayHours
	if in.Shift != nil && in.Shift.DurationHours > 0 {
		halfDayHours = in.Shift.DurationHours / 2
	}
	facts.IsHalfDay = facts.EffectiveHours < halfDayHours

	if in.Shift != nil {
		facts.IsEarlyLeave = isEarlyLeave(*in.Shift, in.Date, *in.PunchIn, *in.PunchOut)
	}

	return facts
}

// isEarlyLeave compares punch-out with the shift end. Overnight shifts are only
// checked when punch-out lands on the calendar day after punch-in.
func isEarlyLeave(s shift.Shift, date, punchIn, punchOut time.Time) bool {
	loc := s.Location()
	if s.IsOvernight() {
		nextDay := utils.DateOf(punchIn.In(loc)).AddDate(0, 0, 1)
		if !sameDate(utils.DateOf(punchOut.In(loc)), nextDay) {
			return false
		}
	}

	end, err := s.EndOn(date)
	if err != nil {
		return false
	}
	limit := end.Add(-time.Duration(s.EarlyThresholdMinutes) * time.Minute)
	return punchOut.Before(limit)
}

// applyFacts copies computed facts onto a record.
func applyFacts(r *attendance.Record, f PunchFacts) {
	r.TotalHours = f.TotalHours
	r.EffectiveHours = f.EffectiveHours
	r.IsLate = f.IsLate
	r.IsEarlyLeave = f.IsEarlyLeave
	r.IsHalfDay = f.IsHalfDay
	r.IsWeekend = f.IsWeekend
	r.IsHoliday = f.IsHoliday
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
