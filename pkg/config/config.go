// Package config parses and validates the settings and NG-date YAML files
// into typed structures. Parsing happens once at the boundary; the scheduling
// core only ever sees the typed values.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
)

// Defaults applied when the YAML omits a constraint parameter.
const (
	DefaultMinDaysDay       = 14
	DefaultMinDaysNight     = 21
	DefaultMinDaysDayIndex3 = 7
	DefaultNightToDayGap    = 7

	DefaultSoftThresholdStrong = 3
	DefaultSoftThresholdWeak   = 7
	DefaultSoftPenaltyStrong   = 0.30
	DefaultSoftPenaltyWeak     = 0.15
)

// FixedPatternBiweekly marks the member the biweekly rule targets.
const FixedPatternBiweekly = "biweekly"

// Member is one entry in a shift group list.
type Member struct {
	Name         string `yaml:"name"`
	Active       *bool  `yaml:"active,omitempty"`
	MinDaysDay   *int   `yaml:"min_days_day,omitempty"`
	MinDaysNight *int   `yaml:"min_days_night,omitempty"`
	FixedPattern string `yaml:"fixed_pattern,omitempty"`
}

// IsActive treats a missing active flag as true.
func (m Member) IsActive() bool {
	return m.Active == nil || *m.Active
}

// DayShiftGroups holds the weekend-duty member groups.
type DayShiftGroups struct {
	Index12Group []Member `yaml:"index_1_2_group"`
	Index3Group  []Member `yaml:"index_3_group"`
}

// NightShiftGroups holds the night-duty member groups.
type NightShiftGroups struct {
	Index1Group []Member `yaml:"index_1_group"`
	Index2Group []Member `yaml:"index_2_group"`
}

// Members groups the full membership configuration.
type Members struct {
	DayShift   DayShiftGroups   `yaml:"day_shift"`
	NightShift NightShiftGroups `yaml:"night_shift"`
}

// MatsudaSchedule configures the fixed biweekly assignment.
type MatsudaSchedule struct {
	Enabled       bool   `yaml:"enabled"`
	Index         int    `yaml:"index"`
	Pattern       string `yaml:"pattern"`
	ReferenceDate string `yaml:"reference_date"`
}

// Interval holds the minimum-spacing parameters.
type Interval struct {
	MinDaysBetweenSamePersonDay       int `yaml:"min_days_between_same_person_day"`
	MinDaysBetweenSamePersonNight     int `yaml:"min_days_between_same_person_night"`
	MinDaysBetweenSamePersonDayIndex3 int `yaml:"min_days_between_same_person_day_index3"`
}

// NightToDayGap holds the post-night-week cooldown for day slots.
type NightToDayGap struct {
	MinDays int `yaml:"min_days"`
}

// DayToNightGap is the optional soft penalty for a night week starting soon
// after a day assignment.
type DayToNightGap struct {
	Enabled             bool    `yaml:"enabled"`
	DaysThresholdStrong int     `yaml:"days_threshold_strong"`
	DaysThresholdWeak   int     `yaml:"days_threshold_weak"`
	PenaltyStrong       float64 `yaml:"penalty_strong"`
	PenaltyWeak         float64 `yaml:"penalty_weak"`
}

// SoftConstraints groups the soft (score-only) rules.
type SoftConstraints struct {
	DayToNightGap DayToNightGap `yaml:"day_to_night_gap"`
}

// Constraints groups all constraint parameters.
type Constraints struct {
	Interval        Interval        `yaml:"interval"`
	NightToDayGap   NightToDayGap   `yaml:"night_to_day_gap"`
	SoftConstraints SoftConstraints `yaml:"soft_constraints"`
}

// Settings is the typed form of settings.yaml.
type Settings struct {
	Members         Members         `yaml:"members"`
	MatsudaSchedule MatsudaSchedule `yaml:"matsuda_schedule"`
	Constraints     Constraints     `yaml:"constraints"`

	matsudaReference time.Time
	matsudaMember    string
	memberConfigs    map[string]Member
}

// LoadSettings reads and validates settings.yaml.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings parses settings YAML content and validates it.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) normalize() error {
	iv := &s.Constraints.Interval
	if iv.MinDaysBetweenSamePersonDay <= 0 {
		iv.MinDaysBetweenSamePersonDay = DefaultMinDaysDay
	}
	if iv.MinDaysBetweenSamePersonNight <= 0 {
		iv.MinDaysBetweenSamePersonNight = DefaultMinDaysNight
	}
	if iv.MinDaysBetweenSamePersonDayIndex3 <= 0 {
		iv.MinDaysBetweenSamePersonDayIndex3 = DefaultMinDaysDayIndex3
	}
	if s.Constraints.NightToDayGap.MinDays <= 0 {
		s.Constraints.NightToDayGap.MinDays = DefaultNightToDayGap
	}

	soft := &s.Constraints.SoftConstraints.DayToNightGap
	if soft.Enabled {
		if soft.DaysThresholdStrong <= 0 {
			soft.DaysThresholdStrong = DefaultSoftThresholdStrong
		}
		if soft.DaysThresholdWeak <= 0 {
			soft.DaysThresholdWeak = DefaultSoftThresholdWeak
		}
		if soft.PenaltyStrong <= 0 {
			soft.PenaltyStrong = DefaultSoftPenaltyStrong
		}
		if soft.PenaltyWeak <= 0 {
			soft.PenaltyWeak = DefaultSoftPenaltyWeak
		}
		if soft.DaysThresholdWeak < soft.DaysThresholdStrong {
			return errors.New("soft day_to_night_gap: weak threshold must be >= strong threshold")
		}
	}

	// Merge per-member settings across group lists. The same member may
	// appear in several groups; later entries fill attributes the first
	// entry lacks.
	s.memberConfigs = make(map[string]Member)
	for _, group := range [][]Member{
		s.Members.DayShift.Index12Group,
		s.Members.DayShift.Index3Group,
		s.Members.NightShift.Index1Group,
		s.Members.NightShift.Index2Group,
	} {
		for _, m := range group {
			if m.Name == "" {
				return errors.New("member entry with empty name")
			}
			existing, ok := s.memberConfigs[m.Name]
			if !ok {
				s.memberConfigs[m.Name] = m
				continue
			}
			if existing.MinDaysDay == nil {
				existing.MinDaysDay = m.MinDaysDay
			}
			if existing.MinDaysNight == nil {
				existing.MinDaysNight = m.MinDaysNight
			}
			if existing.FixedPattern == "" {
				existing.FixedPattern = m.FixedPattern
			}
			s.memberConfigs[m.Name] = existing
		}
	}

	if s.MatsudaSchedule.Enabled {
		if s.MatsudaSchedule.Index == 0 {
			s.MatsudaSchedule.Index = 2
		}
		if s.MatsudaSchedule.Index != 2 {
			return fmt.Errorf("matsuda_schedule: unsupported index %d", s.MatsudaSchedule.Index)
		}
		ref := s.MatsudaSchedule.ReferenceDate
		if ref == "" {
			ref = "2025-02-20"
		}
		parsed, err := dateutil.ParseDate(ref)
		if err != nil {
			return fmt.Errorf("matsuda_schedule: bad reference_date %q: %w", ref, err)
		}
		s.matsudaReference = parsed

		for _, m := range s.Members.NightShift.Index2Group {
			if m.FixedPattern == FixedPatternBiweekly && m.IsActive() {
				s.matsudaMember = m.Name
				break
			}
		}
		if s.matsudaMember == "" {
			return errors.New("matsuda_schedule enabled but no active night index_2_group member has fixed_pattern: biweekly")
		}
	}

	return nil
}

// ActiveNames filters a group down to the names of its active members,
// preserving list order.
func ActiveNames(group []Member) []string {
	names := make([]string, 0, len(group))
	for _, m := range group {
		if m.IsActive() {
			names = append(names, m.Name)
		}
	}
	return names
}

// MinDaysDay returns the member's day-interval override, or the default.
func (s *Settings) MinDaysDay(member string) int {
	if cfg, ok := s.memberConfigs[member]; ok && cfg.MinDaysDay != nil {
		return *cfg.MinDaysDay
	}
	return s.Constraints.Interval.MinDaysBetweenSamePersonDay
}

// MinDaysNight returns the member's night-interval override, or the default.
func (s *Settings) MinDaysNight(member string) int {
	if cfg, ok := s.memberConfigs[member]; ok && cfg.MinDaysNight != nil {
		return *cfg.MinDaysNight
	}
	return s.Constraints.Interval.MinDaysBetweenSamePersonNight
}

// AllMemberNames returns every configured member name across all groups,
// sorted.
func (s *Settings) AllMemberNames() []string {
	names := make([]string, 0, len(s.memberConfigs))
	for name := range s.memberConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatsudaReference returns the parsed biweekly reference date. Only valid
// when MatsudaSchedule.Enabled.
func (s *Settings) MatsudaReference() time.Time {
	return s.matsudaReference
}

// MatsudaMember returns the fixed biweekly member's name. Only valid when
// MatsudaSchedule.Enabled.
func (s *Settings) MatsudaMember() string {
	return s.matsudaMember
}

// Period is an inclusive exclusion date range with a reason label.
type Period struct {
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end" json:"end"`
	Reason string `yaml:"reason" json:"reason"`
}

// rawNGConfig mirrors ng_dates.yaml before date parsing.
type rawNGConfig struct {
	NGDates struct {
		Global   []string            `yaml:"global"`
		ByMember map[string][]string `yaml:"by_member"`
		ByPeriod map[string][]Period `yaml:"by_period"`
	} `yaml:"ng_dates"`
}

// ParsedPeriod is a Period with parsed bounds.
type ParsedPeriod struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// NGConfig is the typed form of ng_dates.yaml.
type NGConfig struct {
	Global   map[time.Time]bool
	ByMember map[string][]time.Time
	ByPeriod map[string][]ParsedPeriod
}

// EmptyNGConfig returns a config excluding nothing.
func EmptyNGConfig() *NGConfig {
	return &NGConfig{
		Global:   make(map[time.Time]bool),
		ByMember: make(map[string][]time.Time),
		ByPeriod: make(map[string][]ParsedPeriod),
	}
}

// LoadNGConfig reads and validates ng_dates.yaml.
func LoadNGConfig(path string) (*NGConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ng dates: %w", err)
	}
	return ParseNGConfig(data)
}

// ParseNGConfig parses NG-date YAML content and validates every date.
func ParseNGConfig(data []byte) (*NGConfig, error) {
	var raw rawNGConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ng dates: %w", err)
	}

	cfg := EmptyNGConfig()
	for _, s := range raw.NGDates.Global {
		d, err := dateutil.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("ng_dates.global: bad date %q: %w", s, err)
		}
		cfg.Global[d] = true
	}
	for member, dates := range raw.NGDates.ByMember {
		for _, s := range dates {
			d, err := dateutil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("ng_dates.by_member[%s]: bad date %q: %w", member, s, err)
			}
			cfg.ByMember[member] = append(cfg.ByMember[member], d)
		}
	}
	for member, periods := range raw.NGDates.ByPeriod {
		for _, p := range periods {
			start, err := dateutil.ParseDate(p.Start)
			if err != nil {
				return nil, fmt.Errorf("ng_dates.by_period[%s]: bad start %q: %w", member, p.Start, err)
			}
			end, err := dateutil.ParseDate(p.End)
			if err != nil {
				return nil, fmt.Errorf("ng_dates.by_period[%s]: bad end %q: %w", member, p.End, err)
			}
			if end.Before(start) {
				return nil, fmt.Errorf("ng_dates.by_period[%s]: end %s before start %s", member, p.End, p.Start)
			}
			cfg.ByPeriod[member] = append(cfg.ByPeriod[member], ParsedPeriod{
				Start:  start,
				End:    end,
				Reason: p.Reason,
			})
		}
	}
	return cfg, nil
}

// IsGlobalNG reports whether the whole day is excluded for everyone.
func (c *NGConfig) IsGlobalNG(date time.Time) bool {
	return c.Global[dateutil.DateOnly(date)]
}

// MemberExcluded reports whether the member is personally excluded on the
// date, either by a single NG date or a period, with the reason.
func (c *NGConfig) MemberExcluded(member string, date time.Time) (bool, string) {
	date = dateutil.DateOnly(date)
	for _, d := range c.ByMember[member] {
		if d.Equal(date) {
			return true, fmt.Sprintf("%s has an NG date on %s", member, dateutil.FormatDate(date))
		}
	}
	for _, p := range c.ByPeriod[member] {
		if !date.Before(p.Start) && !date.After(p.End) {
			reason := p.Reason
			if reason == "" {
				reason = "NG period"
			}
			return true, fmt.Sprintf("%s is in an NG period on %s (%s)", member, dateutil.FormatDate(date), reason)
		}
	}
	return false, ""
}
