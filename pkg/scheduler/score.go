package scheduler

import (
	"math"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// Scorer ranks constraint-passing candidates for a slot. Higher is more
// eligible. The scorer never mutates its inputs.
type Scorer struct {
	settings *config.Settings
	stats    models.StatsMap
}

// NewScorer builds a scorer over the run's settings and history.
func NewScorer(settings *config.Settings, stats models.StatsMap) *Scorer {
	return &Scorer{settings: settings, stats: stats}
}

// Score blends three normalized terms and an optional soft penalty:
//   - load (0.5): inverse of the member's count of this shift type in the
//     current build
//   - recency (0.3): days since the last assignment of this type, capped at
//     30 days; the in-build schedule takes precedence over history, and a
//     member never assigned gets the maximal term
//   - historical frequency (0.2): inverse of the member's historical count
//   - day-to-night soft penalty (night slots only, subtracted) when enabled
//
// targetDate is the day date or the night week start; recency is measured
// against it so identical inputs always score identically.
func (sc *Scorer) Score(member string, shiftType models.ShiftType, targetDate time.Time, schedule *models.Schedule) float64 {
	score := 0.0

	currentCount := schedule.CountAssignments(member, shiftType)
	score += (1.0 / float64(currentCount+1)) * 0.5

	if last, ok := sc.lastAssignment(member, shiftType, schedule); ok {
		daysSince := float64(dateutil.DaysBetween(last, targetDate))
		score += math.Min(math.Max(daysSince, 0)/30.0, 1.0) * 0.3
	} else {
		score += 1.0 * 0.3
	}

	pastCount := sc.stats.CountFor(member, shiftType)
	score += (1.0 / float64(pastCount+1)) * 0.2

	if shiftType == models.ShiftNight {
		score -= sc.dayToNightPenalty(member, targetDate, schedule)
	}

	return score
}

// lastAssignment prefers the in-build schedule and falls back to the
// historical last date.
func (sc *Scorer) lastAssignment(member string, shiftType models.ShiftType, schedule *models.Schedule) (time.Time, bool) {
	if last, ok := schedule.LastAssignment(member, shiftType); ok {
		return last, true
	}
	if st, ok := sc.stats[member]; ok && st.LastDate != nil {
		return *st.LastDate, true
	}
	return time.Time{}, false
}

// dayToNightPenalty discourages a night week starting shortly after the
// member's most recent in-build day assignment.
func (sc *Scorer) dayToNightPenalty(member string, weekStart time.Time, schedule *models.Schedule) float64 {
	soft := sc.settings.Constraints.SoftConstraints.DayToNightGap
	if !soft.Enabled {
		return 0
	}
	lastDay, ok := schedule.LastAssignment(member, models.ShiftDay)
	if !ok {
		return 0
	}
	gap := dateutil.DaysBetween(lastDay, weekStart)
	switch {
	case gap > 0 && gap <= soft.DaysThresholdStrong:
		return soft.PenaltyStrong
	case gap > soft.DaysThresholdStrong && gap <= soft.DaysThresholdWeak:
		return soft.PenaltyWeak
	default:
		return 0
	}
}
