// Package scheduler builds duty rotations with a single-pass greedy fill.
// Night weeks are committed before weekend days because the day-side
// constraints (overlap, night-to-day gap) read the night assignments. The
// fill order is part of the contract: reordering it changes which constraint
// checks see which assignments.
package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/constraint"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/logging"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// State tracks a build's progress through the fixed fill order.
type State string

const (
	StateEmpty       State = "empty"
	StateNightFilled State = "night_filled"
	StateComplete    State = "complete"
	StateFailed      State = "failed"
)

// Builder orchestrates slot generation for one rotation period. It is the
// only stateful component: the engine, scorer and sampler are pure.
type Builder struct {
	settings *config.Settings
	ngDates  *config.NGConfig
	stats    models.StatsMap
	engine   *constraint.Engine
	scorer   *Scorer
	logger   logging.Logger

	dayIndex12  []string
	dayIndex3   []string
	nightIndex1 []string
	nightIndex2 []string

	state    State
	warnings []string
}

// NewBuilder wires a builder from validated configuration and history.
func NewBuilder(settings *config.Settings, ngDates *config.NGConfig, stats models.StatsMap, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	b := &Builder{
		settings:    settings,
		ngDates:     ngDates,
		stats:       stats,
		engine:      constraint.NewEngine(settings, ngDates),
		scorer:      NewScorer(settings, stats),
		logger:      logger,
		dayIndex12:  config.ActiveNames(settings.Members.DayShift.Index12Group),
		dayIndex3:   config.ActiveNames(settings.Members.DayShift.Index3Group),
		nightIndex1: config.ActiveNames(settings.Members.NightShift.Index1Group),
		nightIndex2: config.ActiveNames(settings.Members.NightShift.Index2Group),
		state:       StateEmpty,
	}
	logger.Info("builder initialized",
		"day_index_1_2", len(b.dayIndex12),
		"day_index_3", len(b.dayIndex3),
		"night_index_1", len(b.nightIndex1),
		"night_index_2", len(b.nightIndex2))
	return b
}

// State returns the current build state.
func (b *Builder) State() State {
	return b.state
}

// Warnings returns non-fatal events recorded during the last build, such as
// fixed-member substitutions.
func (b *Builder) Warnings() []string {
	return b.warnings
}

// Build generates one schedule for the rotation period. variantIndex 0 is
// the greedy baseline; higher indexes cycle through top-K alternatives at
// every slot. On the first slot with no valid candidate the build fails with
// an *UnfillableSlotError and no schedule is returned.
func (b *Builder) Build(start, end time.Time, variantIndex, topK int) (*models.Schedule, error) {
	start = dateutil.DateOnly(start)
	end = dateutil.DateOnly(end)
	b.state = StateEmpty
	b.warnings = nil

	b.logger.Info("build started",
		"start", dateutil.FormatDate(start),
		"end", dateutil.FormatDate(end),
		"variant", variantIndex)

	schedule := models.NewSchedule()

	if err := b.assignNightShifts(schedule, start, end, variantIndex, topK); err != nil {
		b.state = StateFailed
		return nil, err
	}
	b.state = StateNightFilled

	if err := b.assignDayShifts(schedule, start, end, variantIndex, topK); err != nil {
		b.state = StateFailed
		return nil, err
	}
	b.state = StateComplete

	b.logger.Info("build complete",
		"night_weeks", len(schedule.Night),
		"day_dates", len(schedule.Day))
	return schedule, nil
}

// assignNightShifts fills index 1 then index 2 for every night week in the
// period, earliest week first. Weeks whose five weekdays are all globally
// excluded get no slot at all.
func (b *Builder) assignNightShifts(schedule *models.Schedule, start, end time.Time, variantIndex, topK int) error {
	mondays := dateutil.MondaysIn(start, end)
	b.logger.Info("assigning night weeks", "count", len(mondays))

	for _, monday := range mondays {
		if b.isFullHolidayWeek(monday) {
			b.logger.Info("skipping night week, all weekdays globally excluded",
				"week_start", dateutil.FormatDate(monday))
			continue
		}

		schedule.Night[monday] = make(map[int]string)

		selected, err := b.fillSlot(schedule, b.nightIndex1, monday, models.ShiftNight, 1, variantIndex, topK)
		if err != nil {
			return err
		}
		schedule.Night[monday][1] = selected

		if err := b.assignNightIndex2(schedule, monday, variantIndex, topK); err != nil {
			return err
		}
	}
	return nil
}

// assignNightIndex2 fills night index 2, giving the fixed biweekly member
// first refusal on matching weeks and falling back to the normal pool when
// that member fails a constraint.
func (b *Builder) assignNightIndex2(schedule *models.Schedule, monday time.Time, variantIndex, topK int) error {
	if b.settings.MatsudaSchedule.Enabled && b.engine.MatsudaWeek(monday) {
		fixed := b.settings.MatsudaMember()
		ok, violations := b.engine.Validate(fixed, monday, models.ShiftNight, 2, schedule, b.stats)
		if ok {
			schedule.Night[monday][2] = fixed
			b.logger.Debug("night index 2 filled by fixed biweekly member",
				"week_start", dateutil.FormatDate(monday), "member", fixed)
			return nil
		}

		warning := fmt.Sprintf("fixed member %s unavailable for night week %s: %v",
			fixed, dateutil.FormatDate(monday), violations)
		b.warnings = append(b.warnings, warning)
		b.logger.Warn("fixed biweekly member substituted",
			"week_start", dateutil.FormatDate(monday),
			"member", fixed,
			"violations", violations)

		pool := make([]string, 0, len(b.nightIndex2))
		for _, m := range b.nightIndex2 {
			if m != fixed {
				pool = append(pool, m)
			}
		}
		selected, err := b.fillSlot(schedule, pool, monday, models.ShiftNight, 2, variantIndex, topK)
		if err != nil {
			return err
		}
		schedule.Night[monday][2] = selected
		return nil
	}

	selected, err := b.fillSlot(schedule, b.nightIndex2, monday, models.ShiftNight, 2, variantIndex, topK)
	if err != nil {
		return err
	}
	schedule.Night[monday][2] = selected
	return nil
}

// assignDayShifts fills indexes 1, 2 and 3 for every weekend date in the
// period, earliest first, skipping globally excluded dates.
func (b *Builder) assignDayShifts(schedule *models.Schedule, start, end time.Time, variantIndex, topK int) error {
	weekends := dateutil.WeekendsIn(start, end)
	b.logger.Info("assigning day dates", "count", len(weekends))

	for _, date := range weekends {
		if b.ngDates.IsGlobalNG(date) {
			b.logger.Info("skipping day date, globally excluded",
				"date", dateutil.FormatDate(date))
			continue
		}

		schedule.Day[date] = make(map[int]string)

		for _, index := range []int{1, 2, 3} {
			pool := b.dayIndex12
			if index == 3 {
				pool = b.dayIndex3
			}
			selected, err := b.fillSlot(schedule, pool, date, models.ShiftDay, index, variantIndex, topK)
			if err != nil {
				return err
			}
			schedule.Day[date][index] = selected
		}
	}
	return nil
}

// fillSlot validates and scores the pool for one slot, then samples the
// ranked list for the requested variant.
func (b *Builder) fillSlot(
	schedule *models.Schedule,
	pool []string,
	targetDate time.Time,
	shiftType models.ShiftType,
	index int,
	variantIndex, topK int,
) (string, error) {
	var valid []ScoredCandidate
	for _, candidate := range pool {
		ok, violations := b.engine.Validate(candidate, targetDate, shiftType, index, schedule, b.stats)
		if !ok {
			b.logger.Debug("candidate rejected",
				"candidate", candidate,
				"date", dateutil.FormatDate(targetDate),
				"violations", violations)
			continue
		}
		score := b.scorer.Score(candidate, shiftType, targetDate, schedule)
		valid = append(valid, ScoredCandidate{Name: candidate, Score: score})
	}

	ranked := RankCandidates(valid)
	selected, ok := PickVariant(ranked, variantIndex, topK)
	if !ok {
		return "", b.unfillable(schedule, pool, targetDate, shiftType, index)
	}

	b.logger.Debug("slot filled",
		"date", dateutil.FormatDate(targetDate),
		"shift", shiftType,
		"index", index,
		"member", selected)
	return selected, nil
}

// unfillable builds the diagnostic error for a slot with no valid candidate,
// re-running validation for up to five pool members to name every violated
// rule.
func (b *Builder) unfillable(schedule *models.Schedule, pool []string, targetDate time.Time, shiftType models.ShiftType, index int) error {
	err := &UnfillableSlotError{
		Date:      targetDate,
		ShiftType: shiftType,
		Index:     index,
	}
	for i, candidate := range pool {
		if i >= maxDiagnosedCandidates {
			break
		}
		_, violations := b.engine.Validate(candidate, targetDate, shiftType, index, schedule, b.stats)
		err.Candidates = append(err.Candidates, CandidateDiagnosis{
			Name:       candidate,
			Violations: violations,
		})
	}
	b.logger.Error("unfillable slot",
		"date", dateutil.FormatDate(targetDate),
		"shift", shiftType,
		"index", index)
	return err
}

// isFullHolidayWeek reports whether all five weekdays of the week are in the
// global exclusion set.
func (b *Builder) isFullHolidayWeek(monday time.Time) bool {
	for i := 0; i < 5; i++ {
		if !b.ngDates.IsGlobalNG(monday.AddDate(0, 0, i)) {
			return false
		}
	}
	return true
}

// BuildResult is the outcome of one variant in a multi-variant run.
type BuildResult struct {
	Variant  int
	Schedule *models.Schedule
	Warnings []string
	Err      error
}

// BuildVariants runs count independent builds with variant indexes
// 0..count-1. Individual failures are collected in the results; the returned
// error is non-nil only when every variant failed (for count 1 it is that
// variant's error directly).
func (b *Builder) BuildVariants(start, end time.Time, count, topK int) ([]BuildResult, error) {
	if count < 1 {
		count = 1
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	results := make([]BuildResult, 0, count)
	succeeded := 0
	for variant := 0; variant < count; variant++ {
		schedule, err := b.Build(start, end, variant, topK)
		warnings := make([]string, len(b.warnings))
		copy(warnings, b.warnings)
		results = append(results, BuildResult{
			Variant:  variant,
			Schedule: schedule,
			Warnings: warnings,
			Err:      err,
		})
		if err == nil {
			succeeded++
		}
	}

	if succeeded == 0 {
		if count == 1 {
			return results, results[0].Err
		}
		return results, fmt.Errorf("all %d variants failed: %w", count, results[0].Err)
	}
	return results, nil
}
