// Package constraint implements the hard-rule evaluator for duty slots.
// The engine is a pure function of its inputs: it never mutates the schedule
// and never returns an error, only pass/fail with the accumulated reasons.
package constraint

import (
	"fmt"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// Engine checks candidates against the hard constraints.
type Engine struct {
	settings *config.Settings
	ngDates  *config.NGConfig
}

// NewEngine builds an engine over validated configuration.
func NewEngine(settings *config.Settings, ngDates *config.NGConfig) *Engine {
	return &Engine{settings: settings, ngDates: ngDates}
}

// Validate runs every hard constraint for the candidate and slot, collecting
// all failing reasons rather than stopping at the first.
//
// targetDate is the weekend date for day slots or the Monday week start for
// night slots.
func (e *Engine) Validate(
	member string,
	targetDate time.Time,
	shiftType models.ShiftType,
	index int,
	schedule *models.Schedule,
	stats models.StatsMap,
) (bool, []string) {
	var reasons []string

	if shiftType == models.ShiftDay {
		if ok, msg := e.checkDayIndexTrack(member, index, stats); !ok {
			reasons = append(reasons, msg)
		}
	} else {
		if ok, msg := e.checkNightIndexTrack(member, index, stats); !ok {
			reasons = append(reasons, msg)
		}
	}

	if ok, msg := e.checkOverlap(member, targetDate, shiftType, schedule); !ok {
		reasons = append(reasons, msg)
	}

	if shiftType == models.ShiftDay {
		if ok, msg := e.checkNightToDayGap(member, targetDate, schedule); !ok {
			reasons = append(reasons, msg)
		}
		if ok, msg := e.checkMinIntervalDay(member, targetDate, index, schedule); !ok {
			reasons = append(reasons, msg)
		}
	} else {
		if ok, msg := e.checkMinIntervalNight(member, targetDate, schedule); !ok {
			reasons = append(reasons, msg)
		}
	}

	if excluded, msg := e.ngDates.MemberExcluded(member, targetDate); excluded {
		reasons = append(reasons, msg)
	}

	return len(reasons) == 0, reasons
}

// checkDayIndexTrack enforces the historical index track: members who held
// day index 1 or 2 stay off index 3, and vice versa. Only the historical
// record is consulted, never assignments made earlier in the same build.
func (e *Engine) checkDayIndexTrack(member string, index int, stats models.StatsMap) (bool, string) {
	st, ok := stats[member]
	if !ok {
		return true, ""
	}
	has12 := false
	has3 := false
	for _, i := range st.DayIndexes {
		if i == 1 || i == 2 {
			has12 = true
		}
		if i == 3 {
			has3 = true
		}
	}
	if index == 3 && has12 {
		return false, fmt.Sprintf("%s has held day index 1,2 and cannot take index 3", member)
	}
	if (index == 1 || index == 2) && has3 {
		return false, fmt.Sprintf("%s has held day index 3 and cannot take index %d", member, index)
	}
	return true, ""
}

// checkNightIndexTrack is the night-side track rule: index 1 vs index 2.
func (e *Engine) checkNightIndexTrack(member string, index int, stats models.StatsMap) (bool, string) {
	st, ok := stats[member]
	if !ok {
		return true, ""
	}
	has1 := false
	has2 := false
	for _, i := range st.NightIndexes {
		if i == 1 {
			has1 = true
		}
		if i == 2 {
			has2 = true
		}
	}
	if index == 2 && has1 {
		return false, fmt.Sprintf("%s has held night index 1 and cannot take index 2", member)
	}
	if index == 1 && has2 {
		return false, fmt.Sprintf("%s has held night index 2 and cannot take index 1", member)
	}
	return true, ""
}

// checkOverlap forbids a day slot inside a night week the member already
// works in this build, and a night week containing a day slot they hold.
func (e *Engine) checkOverlap(member string, targetDate time.Time, shiftType models.ShiftType, schedule *models.Schedule) (bool, string) {
	if shiftType == models.ShiftDay {
		for weekStart, indexes := range schedule.Night {
			weekEnd := weekStart.AddDate(0, 0, 6)
			if targetDate.Before(weekStart) || targetDate.After(weekEnd) {
				continue
			}
			for _, assigned := range indexes {
				if assigned == member {
					return false, fmt.Sprintf("%s works the night week %s..%s, day duty on %s conflicts",
						member, dateutil.FormatDate(weekStart), dateutil.FormatDate(weekEnd), dateutil.FormatDate(targetDate))
				}
			}
		}
		return true, ""
	}

	weekStart := targetDate
	weekEnd := weekStart.AddDate(0, 0, 6)
	for dayDate, indexes := range schedule.Day {
		if dayDate.Before(weekStart) || dayDate.After(weekEnd) {
			continue
		}
		for _, assigned := range indexes {
			if assigned == member {
				return false, fmt.Sprintf("%s works day duty on %s, night week %s..%s conflicts",
					member, dateutil.FormatDate(dayDate), dateutil.FormatDate(weekStart), dateutil.FormatDate(weekEnd))
			}
		}
	}
	return true, ""
}

// checkNightToDayGap keeps day slots at least the configured number of days
// after the Sunday ending any night week the member works in this build.
func (e *Engine) checkNightToDayGap(member string, targetDate time.Time, schedule *models.Schedule) (bool, string) {
	gap := e.settings.Constraints.NightToDayGap.MinDays
	for weekStart, indexes := range schedule.Night {
		for _, assigned := range indexes {
			if assigned != member {
				continue
			}
			nightEnd := weekStart.AddDate(0, 0, 6)
			daysSince := dateutil.DaysBetween(nightEnd, targetDate)
			if daysSince > 0 && daysSince < gap {
				return false, fmt.Sprintf("%s finished a night week on %s, day duty requires a %d-day gap (%d more needed)",
					member, dateutil.FormatDate(nightEnd), gap, gap-daysSince)
			}
		}
	}
	return true, ""
}

// checkMinIntervalDay enforces the in-build spacing between day assignments.
// Index 3 carries its own relaxed minimum; otherwise the per-member override
// or the day default applies. Pre-build history is deliberately ignored:
// interval enforcement resets at the start of each build.
func (e *Engine) checkMinIntervalDay(member string, targetDate time.Time, index int, schedule *models.Schedule) (bool, string) {
	minDays := e.settings.MinDaysDay(member)
	if index == 3 {
		minDays = e.settings.Constraints.Interval.MinDaysBetweenSamePersonDayIndex3
	}

	last, ok := schedule.LastAssignment(member, models.ShiftDay)
	if !ok {
		return true, ""
	}
	daysSince := dateutil.DaysBetween(last, targetDate)
	if daysSince < minDays {
		return false, fmt.Sprintf("%s last worked day duty on %s, %d days ago but %d required (%d more needed)",
			member, dateutil.FormatDate(last), daysSince, minDays, minDays-daysSince)
	}
	return true, ""
}

// checkMinIntervalNight enforces the in-build spacing between night weeks,
// measured between week starts.
func (e *Engine) checkMinIntervalNight(member string, targetWeekStart time.Time, schedule *models.Schedule) (bool, string) {
	minDays := e.settings.MinDaysNight(member)

	last, ok := schedule.LastAssignment(member, models.ShiftNight)
	if !ok {
		return true, ""
	}
	daysSince := dateutil.DaysBetween(last, targetWeekStart)
	if daysSince < minDays {
		return false, fmt.Sprintf("%s last worked a night week starting %s, %d days ago but %d required (%d more needed)",
			member, dateutil.FormatDate(last), daysSince, minDays, minDays-daysSince)
	}
	return true, ""
}

// MatsudaWeek reports whether the week starting at weekStart matches the
// even-parity biweekly rule against the configured reference date. The
// reference is snapped to the Monday of its own week so the difference is an
// exact multiple of 7 and the parity is stable.
func (e *Engine) MatsudaWeek(weekStart time.Time) bool {
	if !e.settings.MatsudaSchedule.Enabled {
		return false
	}
	ref := e.settings.MatsudaReference()
	sinceMonday := (int(ref.Weekday()) + 6) % 7
	refMonday := ref.AddDate(0, 0, -sinceMonday)
	weeks := dateutil.DaysBetween(refMonday, weekStart) / 7
	return weeks%2 == 0
}
