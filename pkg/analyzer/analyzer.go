// Package analyzer independently re-verifies a generated schedule. It does
// not trust the constraint engine: the overlap check is a regression oracle
// that should come back empty whenever the engine is correct.
package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// DefaultCloseIntervalDays flags same-member assignments this close together.
const DefaultCloseIntervalDays = 7

// Analyzer inspects one schedule against the supplied history.
type Analyzer struct {
	schedule  *models.Schedule
	stats     models.StatsMap
	threshold int
}

// New builds an analyzer with the default close-interval threshold.
func New(schedule *models.Schedule, stats models.StatsMap) *Analyzer {
	return NewWithThreshold(schedule, stats, DefaultCloseIntervalDays)
}

// NewWithThreshold builds an analyzer with a custom close-interval threshold
// in days.
func NewWithThreshold(schedule *models.Schedule, stats models.StatsMap, thresholdDays int) *Analyzer {
	if stats == nil {
		stats = models.StatsMap{}
	}
	if thresholdDays <= 0 {
		thresholdDays = DefaultCloseIntervalDays
	}
	return &Analyzer{schedule: schedule, stats: stats, threshold: thresholdDays}
}

// Analyze runs every check and aggregates the report.
func (a *Analyzer) Analyze() *models.AnalysisReport {
	return &models.AnalysisReport{
		Overlaps:       a.checkOverlaps(),
		CloseIntervals: a.checkCloseIntervals(),
		MemberCounts:   a.calculateCounts(),
	}
}

// checkOverlaps lists member/date pairs where a day assignment falls inside
// a night week the same member also works.
func (a *Analyzer) checkOverlaps() []models.Overlap {
	overlaps := []models.Overlap{}

	for _, nightStart := range a.schedule.SortedNightWeeks() {
		nightEnd := nightStart.AddDate(0, 0, 6)
		for _, nightMember := range a.schedule.Night[nightStart] {
			for _, dayDate := range a.schedule.SortedDayDates() {
				if dayDate.Before(nightStart) || dayDate.After(nightEnd) {
					continue
				}
				for _, dayMember := range a.schedule.Day[dayDate] {
					if dayMember == nightMember {
						overlaps = append(overlaps, models.Overlap{
							Member: nightMember,
							Date:   dayDate,
							Details: fmt.Sprintf("night (week of %s) & day (%s)",
								dateutil.FormatDate(nightStart), dateutil.FormatDate(dayDate)),
						})
					}
				}
			}
		}
	}
	return overlaps
}

type interval struct {
	start time.Time
	end   time.Time
	desc  string
}

// checkCloseIntervals scans each member's sorted (start, end) intervals and
// flags consecutive pairs with 0 < nextStart-currentEnd <= threshold days,
// across day/day, day/night, night/day and night/night combinations. A gap
// of zero or less is an overlap, which the overlap check owns.
func (a *Analyzer) checkCloseIntervals() []models.CloseInterval {
	byMember := make(map[string][]interval)

	for _, dayDate := range a.schedule.SortedDayDates() {
		for _, member := range a.schedule.Day[dayDate] {
			byMember[member] = append(byMember[member], interval{
				start: dayDate,
				end:   dayDate,
				desc:  fmt.Sprintf("day (%s)", dateutil.FormatDate(dayDate)),
			})
		}
	}
	for _, weekStart := range a.schedule.SortedNightWeeks() {
		weekEnd := weekStart.AddDate(0, 0, 6)
		for _, member := range a.schedule.Night[weekStart] {
			byMember[member] = append(byMember[member], interval{
				start: weekStart,
				end:   weekEnd,
				desc:  fmt.Sprintf("night (week of %s)", dateutil.FormatDate(weekStart)),
			})
		}
	}

	members := make([]string, 0, len(byMember))
	for m := range byMember {
		members = append(members, m)
	}
	sort.Strings(members)

	closeIntervals := []models.CloseInterval{}
	for _, member := range members {
		intervals := byMember[member]
		sort.SliceStable(intervals, func(i, j int) bool {
			return intervals[i].start.Before(intervals[j].start)
		})
		for i := 0; i+1 < len(intervals); i++ {
			gap := dateutil.DaysBetween(intervals[i].end, intervals[i+1].start)
			if gap > 0 && gap <= a.threshold {
				closeIntervals = append(closeIntervals, models.CloseInterval{
					Member: member,
					Gap:    gap,
					From:   intervals[i].desc,
					To:     intervals[i+1].desc,
				})
			}
		}
	}
	return closeIntervals
}

// calculateCounts totals historical plus new assignments per member, split
// by shift type and sorted by name. Members with no duty at all are omitted.
func (a *Analyzer) calculateCounts() []models.MemberCount {
	all := make(map[string]bool)
	for member := range a.stats {
		all[member] = true
	}
	for _, indexes := range a.schedule.Day {
		for _, member := range indexes {
			all[member] = true
		}
	}
	for _, indexes := range a.schedule.Night {
		for _, member := range indexes {
			all[member] = true
		}
	}

	counts := []models.MemberCount{}
	for member := range all {
		pastDay := 0
		pastNight := 0
		if st, ok := a.stats[member]; ok {
			pastDay = st.DayCount
			pastNight = st.NightCount
		}
		newDay := a.schedule.CountAssignments(member, models.ShiftDay)
		newNight := a.schedule.CountAssignments(member, models.ShiftNight)

		if pastDay+newDay == 0 && pastNight+newNight == 0 {
			continue
		}
		counts = append(counts, models.MemberCount{
			Name:       member,
			TotalDay:   pastDay + newDay,
			TotalNight: pastNight + newNight,
			NewDay:     newDay,
			NewNight:   newNight,
			PastDay:    pastDay,
			PastNight:  pastNight,
		})
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts
}
