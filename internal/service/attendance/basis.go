package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

var half = decimal.RequireFromString("0.5")

// BasisInput is the loaded state one employee-month is resolved from.
type BasisInput struct {
	Month    int
	Year     int
	Shift    *shift.Shift
	Holidays []shift.Holiday
	Records  []attendance.Record
	Override *attendance.MonthlyOverride
}

// ComputeBasis resolves working, payable and loss-of-pay days for a month.
//
// A monthly override replaces the aggregated counts as a whole. Without an
// override and without any attendance activity the month is treated as fully
// attended, so organizations that do not track attendance still get paid.
func ComputeBasis(in BasisInput) attendance.Basis {
	first, last := utils.MonthRange(in.Month, in.Year)
	daysInMonth := last.Day()

	nonWorking := nonWorkingDays(first, daysInMonth, in.Shift, in.Holidays)
	working := decimal.NewFromInt(int64(daysInMonth - len(nonWorking)))

	basis := attendance.Basis{
		Month:       in.Month,
		Year:        in.Year,
		WorkingDays: working,
	}

	present, halfDays, leave := 0, 0, 0
	totalHours := decimal.Zero
	for _, r := range in.Records {
		totalHours = totalHours.Add(decimal.NewFromFloat(r.EffectiveHours))

		day := utils.DateOf(r.Date)
		if day.Year() != in.Year || int(day.Month()) != in.Month {
			continue
		}
		if nonWorking[day.Day()] {
			continue
		}
		// an unfinished punch carries no hours yet
		if r.IsOpen() && !r.OnLeave && !r.IsAbsent && !r.IsHoliday {
			continue
		}

		switch {
		case r.OnLeave:
			leave++
		case r.IsAbsent:
			// loss of pay
		case r.IsHoliday:
			// optional holiday observed on a working day
			leave++
		case r.IsHalfDay:
			halfDays++
		case r.PunchIn != nil:
			present++
		}

		if r.IsLate && !r.IsAbsent && r.PunchIn != nil {
			basis.LateCount++
		}
	}
	basis.TotalHours = totalHours.Round(2)
	basis.PresentDays = decimal.NewFromInt(int64(present))
	basis.HalfDays = decimal.NewFromInt(int64(halfDays))
	basis.PaidLeaveDays = decimal.NewFromInt(int64(leave))

	var explicitLOP *decimal.Decimal
	hasActivity := present+halfDays+leave > 0
	if o := in.Override; o != nil {
		basis.PresentDays = o.PresentDays
		basis.HalfDays = o.HalfDays
		basis.PaidLeaveDays = o.LeaveDays
		basis.LateCount = o.LateCount
		basis.OverrideApplied = true
		src := o.Source
		basis.OverrideSource = &src
		explicitLOP = o.AbsentDays
		hasActivity = true
	}

	lop := decimal.Zero
	switch {
	case explicitLOP != nil:
		lop = *explicitLOP
	case hasActivity:
		attended := basis.PresentDays.Add(basis.HalfDays.Mul(half)).Add(basis.PaidLeaveDays)
		lop = decimal.Max(working.Sub(attended), decimal.Zero)
	}
	lop = decimal.Min(decimal.Max(lop, decimal.Zero), working)

	basis.LOPDays = lop
	basis.PayableDays = decimal.Max(working.Sub(lop), decimal.Zero)

	return basis
}

// nonWorkingDays returns the days of the month (1-based) that are weekly offs
// or non-optional holidays applicable to the shift.
func nonWorkingDays(first time.Time, daysInMonth int, s *shift.Shift, holidays []shift.Holiday) map[int]bool {
	var shiftID *string
	if s != nil {
		shiftID = &s.ID
	}

	off := make(map[int]bool)
	for d := 1; d <= daysInMonth; d++ {
		weekday := first.AddDate(0, 0, d-1).Weekday()
		if s != nil {
			if s.IsWeeklyOff(weekday) {
				off[d] = true
			}
		} else if weekday == time.Sunday {
			off[d] = true
		}
	}

	for _, h := range holidays {
		if h.IsOptional || !h.AppliesTo(shiftID) {
			continue
		}
		if h.Date.Year() == first.Year() && h.Date.Month() == first.Month() {
			off[h.Date.Day()] = true
		}
	}

	return off
}
