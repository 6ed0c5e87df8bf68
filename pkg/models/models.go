package models

import (
	"sort"
	"time"
)

// ShiftType distinguishes weekend day duty from weekly night duty.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// MemberStats holds the historical record for one member, produced by the
// history loader. Read-only to the scheduling core.
type MemberStats struct {
	TotalCount   int        `json:"total_count"`
	DayCount     int        `json:"day_count"`
	NightCount   int        `json:"night_count"`
	DayIndexes   []int      `json:"day_indexes"`
	NightIndexes []int      `json:"night_indexes"`
	FirstDate    *time.Time `json:"first_date,omitempty"`
	LastDate     *time.Time `json:"last_date,omitempty"`
}

// StatsMap maps member name to historical stats.
type StatsMap map[string]MemberStats

// CountFor returns the historical count for the given shift type, zero for
// unknown members.
func (s StatsMap) CountFor(member string, shiftType ShiftType) int {
	st, ok := s[member]
	if !ok {
		return 0
	}
	if shiftType == ShiftDay {
		return st.DayCount
	}
	return st.NightCount
}

// Schedule is the output of one build: weekend dates to day assignments and
// Monday week starts to night assignments. Keys are UTC midnight dates.
type Schedule struct {
	Day   map[time.Time]map[int]string `json:"day"`
	Night map[time.Time]map[int]string `json:"night"`
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		Day:   make(map[time.Time]map[int]string),
		Night: make(map[time.Time]map[int]string),
	}
}

// SortedDayDates returns the day dates in ascending order.
func (s *Schedule) SortedDayDates() []time.Time {
	dates := make([]time.Time, 0, len(s.Day))
	for d := range s.Day {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// SortedNightWeeks returns the night week starts in ascending order.
func (s *Schedule) SortedNightWeeks() []time.Time {
	weeks := make([]time.Time, 0, len(s.Night))
	for w := range s.Night {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// CountAssignments returns how many slots of the given type the member holds
// in this schedule.
func (s *Schedule) CountAssignments(member string, shiftType ShiftType) int {
	count := 0
	for _, indexes := range s.byType(shiftType) {
		for _, m := range indexes {
			if m == member {
				count++
			}
		}
	}
	return count
}

// LastAssignment returns the member's most recent date (day date or night
// week start) of the given type in this schedule, or false if none.
func (s *Schedule) LastAssignment(member string, shiftType ShiftType) (time.Time, bool) {
	var last time.Time
	found := false
	for d, indexes := range s.byType(shiftType) {
		for _, m := range indexes {
			if m == member && (!found || d.After(last)) {
				last = d
				found = true
			}
		}
	}
	return last, found
}

func (s *Schedule) byType(shiftType ShiftType) map[time.Time]map[int]string {
	if shiftType == ShiftDay {
		return s.Day
	}
	return s.Night
}

// Overlap is a member assigned a day shift inside a night week they also work.
type Overlap struct {
	Member  string    `json:"member"`
	Date    time.Time `json:"date"`
	Details string    `json:"details"`
}

// CloseInterval is a pair of same-member assignments closer together than the
// analyzer threshold.
type CloseInterval struct {
	Member string `json:"member"`
	Gap    int    `json:"gap"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// MemberCount aggregates historical and newly assigned duty counts.
type MemberCount struct {
	Name       string `json:"name"`
	TotalDay   int    `json:"total_day"`
	TotalNight int    `json:"total_night"`
	NewDay     int    `json:"new_day"`
	NewNight   int    `json:"new_night"`
	PastDay    int    `json:"past_day"`
	PastNight  int    `json:"past_night"`
}

// AnalysisReport is the analyzer output for one schedule.
type AnalysisReport struct {
	Overlaps       []Overlap       `json:"overlaps"`
	CloseIntervals []CloseInterval `json:"close_intervals"`
	MemberCounts   []MemberCount   `json:"member_counts"`
}

// GenerateRequest is the API input for a schedule generation run.
type GenerateRequest struct {
	Start    string `json:"start" binding:"required"`
	Variants int    `json:"variants"`
	TopK     int    `json:"top_k"`
}

// VariantResult is one variant's outcome within a generation run.
type VariantResult struct {
	Variant  int             `json:"variant"`
	Schedule *Schedule       `json:"schedule,omitempty"`
	Analysis *AnalysisReport `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// GenerateResponse is the API output for a schedule generation run.
type GenerateResponse struct {
	RunID    string          `json:"run_id"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Variants []VariantResult `json:"variants"`
	Warnings []string        `json:"warnings,omitempty"`
}
