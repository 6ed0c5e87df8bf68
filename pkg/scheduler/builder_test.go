package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/duty-rotation-go/pkg/analyzer"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/logging"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

const fullRosterSettings = `
members:
  day_shift:
    index_1_2_group:
      - name: Tanaka
      - name: Suzuki
      - name: Takahashi
      - name: Watanabe
      - name: Ito
      - name: Yamamoto
      - name: Nakamura
      - name: Kobayashi
    index_3_group:
      - name: Kato
      - name: Yoshida
      - name: Yamada
  night_shift:
    index_1_group:
      - name: Sato
      - name: Saito
      - name: Inoue
      - name: Kimura
    index_2_group:
      - name: Hayashi
      - name: Shimizu
      - name: Mori
      - name: Abe
`

func rosterBuilder(t *testing.T, settingsYAML string, ngYAML string) *Builder {
	t.Helper()
	settings, err := config.ParseSettings([]byte(settingsYAML))
	require.NoError(t, err)
	ng := config.EmptyNGConfig()
	if ngYAML != "" {
		ng, err = config.ParseNGConfig([]byte(ngYAML))
		require.NoError(t, err)
	}
	return NewBuilder(settings, ng, models.StatsMap{}, logging.Nop())
}

func TestBuildFullRotation(t *testing.T) {
	b := rosterBuilder(t, fullRosterSettings, "")
	start, end := dateutil.RotationPeriod(dateutil.MustDate("2025-03-21"))

	schedule, err := b.Build(start, end, 0, DefaultTopK)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, b.State())

	// Nine night weeks, each with both indexes.
	assert.Len(t, schedule.Night, 9)
	for week, indexes := range schedule.Night {
		assert.NotEmpty(t, indexes[1], "night week %s index 1", dateutil.FormatDate(week))
		assert.NotEmpty(t, indexes[2], "night week %s index 2", dateutil.FormatDate(week))
	}

	// Eighteen weekend dates, each with all three indexes.
	assert.Len(t, schedule.Day, 18)
	for date, indexes := range schedule.Day {
		for _, i := range []int{1, 2, 3} {
			assert.NotEmpty(t, indexes[i], "day %s index %d", dateutil.FormatDate(date), i)
		}
	}

	// The analyzer's independent overlap check agrees with the engine.
	report := analyzer.New(schedule, models.StatsMap{}).Analyze()
	assert.Empty(t, report.Overlaps)
}

func TestBuildRespectsIntervals(t *testing.T) {
	b := rosterBuilder(t, fullRosterSettings, "")
	start, end := dateutil.RotationPeriod(dateutil.MustDate("2025-03-21"))

	schedule, err := b.Build(start, end, 0, DefaultTopK)
	require.NoError(t, err)

	// Consecutive same-member day dates are at least the index 3 minimum
	// apart; night week starts at least the night minimum.
	dayDates := make(map[string][]time.Time)
	for _, date := range schedule.SortedDayDates() {
		for _, member := range schedule.Day[date] {
			dayDates[member] = append(dayDates[member], date)
		}
	}
	for member, dates := range dayDates {
		for i := 0; i+1 < len(dates); i++ {
			gap := dateutil.DaysBetween(dates[i], dates[i+1])
			assert.GreaterOrEqual(t, gap, 7, "member %s day dates %s and %s",
				member, dateutil.FormatDate(dates[i]), dateutil.FormatDate(dates[i+1]))
		}
	}

	nightWeeks := make(map[string][]time.Time)
	for _, week := range schedule.SortedNightWeeks() {
		for _, member := range schedule.Night[week] {
			nightWeeks[member] = append(nightWeeks[member], week)
		}
	}
	for member, weeks := range nightWeeks {
		for i := 0; i+1 < len(weeks); i++ {
			gap := dateutil.DaysBetween(weeks[i], weeks[i+1])
			assert.GreaterOrEqual(t, gap, 21, "member %s night weeks %s and %s",
				member, dateutil.FormatDate(weeks[i]), dateutil.FormatDate(weeks[i+1]))
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	start, end := dateutil.RotationPeriod(dateutil.MustDate("2025-03-21"))

	first, err := rosterBuilder(t, fullRosterSettings, "").Build(start, end, 0, DefaultTopK)
	require.NoError(t, err)
	second, err := rosterBuilder(t, fullRosterSettings, "").Build(start, end, 0, DefaultTopK)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildUnfillableSlot(t *testing.T) {
	// A single index 3 member cannot cover two weekend dates one day apart.
	b := rosterBuilder(t, `
members:
  day_shift:
    index_1_2_group:
      - name: Tanaka
      - name: Suzuki
      - name: Takahashi
      - name: Watanabe
    index_3_group:
      - name: Kato
  night_shift:
    index_1_group:
      - name: Sato
    index_2_group:
      - name: Hayashi
`, "")

	schedule, err := b.Build(dateutil.MustDate("2025-03-21"), dateutil.MustDate("2025-03-25"), 0, DefaultTopK)
	require.Error(t, err)
	assert.Nil(t, schedule)
	assert.Equal(t, StateFailed, b.State())

	var unfillable *UnfillableSlotError
	require.True(t, errors.As(err, &unfillable))
	assert.Equal(t, dateutil.MustDate("2025-03-23"), unfillable.Date)
	assert.Equal(t, models.ShiftDay, unfillable.ShiftType)
	assert.Equal(t, 3, unfillable.Index)
	require.Len(t, unfillable.Candidates, 1)
	assert.Equal(t, "Kato", unfillable.Candidates[0].Name)
	assert.NotEmpty(t, unfillable.Candidates[0].Violations)

	msg := err.Error()
	assert.Contains(t, msg, "no valid candidate")
	assert.Contains(t, msg, "remediation")
}

func TestBuildSkipsFullHolidayWeek(t *testing.T) {
	b := rosterBuilder(t, fullRosterSettings, `
ng_dates:
  global:
    - "2025-03-24"
    - "2025-03-25"
    - "2025-03-26"
    - "2025-03-27"
    - "2025-03-28"
    - "2025-03-29"
`)

	schedule, err := b.Build(dateutil.MustDate("2025-03-21"), dateutil.MustDate("2025-03-30"), 0, DefaultTopK)
	require.NoError(t, err)

	// The only night week has all five weekdays excluded: no slot at all.
	assert.Empty(t, schedule.Night)

	// The globally excluded Saturday is skipped; the other weekend dates fill.
	_, ok := schedule.Day[dateutil.MustDate("2025-03-29")]
	assert.False(t, ok)
	assert.Len(t, schedule.Day, 3)
}

const matsudaSettings = `
members:
  day_shift:
    index_1_2_group:
      - name: Tanaka
      - name: Suzuki
      - name: Takahashi
      - name: Watanabe
      - name: Ito
      - name: Yamamoto
      - name: Nakamura
      - name: Kobayashi
    index_3_group:
      - name: Kato
      - name: Yoshida
      - name: Yamada
  night_shift:
    index_1_group:
      - name: Sato
    index_2_group:
      - name: Matsuda
        fixed_pattern: biweekly
      - name: Hayashi
matsuda_schedule:
  enabled: true
  reference_date: "2025-02-20"
`

func TestBuildFixedBiweeklyMember(t *testing.T) {
	b := rosterBuilder(t, matsudaSettings, "")

	// 2025-03-03 is an even week relative to the reference.
	schedule, err := b.Build(dateutil.MustDate("2025-03-01"), dateutil.MustDate("2025-03-09"), 0, DefaultTopK)
	require.NoError(t, err)

	assert.Equal(t, "Matsuda", schedule.Night[dateutil.MustDate("2025-03-03")][2])
	assert.Empty(t, b.Warnings())
}

func TestBuildFixedMemberSubstituted(t *testing.T) {
	b := rosterBuilder(t, matsudaSettings, `
ng_dates:
  by_member:
    Matsuda:
      - "2025-03-03"
`)

	schedule, err := b.Build(dateutil.MustDate("2025-03-01"), dateutil.MustDate("2025-03-09"), 0, DefaultTopK)
	require.NoError(t, err)

	// The fixed member fails their NG date; the rest of the pool covers.
	assert.Equal(t, "Hayashi", schedule.Night[dateutil.MustDate("2025-03-03")][2])
	require.Len(t, b.Warnings(), 1)
	assert.Contains(t, b.Warnings()[0], "Matsuda")
}

func TestBuildVariants(t *testing.T) {
	b := rosterBuilder(t, fullRosterSettings, "")
	start := dateutil.MustDate("2025-03-21")
	end := dateutil.MustDate("2025-04-06")

	results, err := b.BuildVariants(start, end, 3, DefaultTopK)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.NoError(t, r.Err, "variant %d", r.Variant)
		require.NotNil(t, r.Schedule, "variant %d", r.Variant)
		assert.Len(t, r.Schedule.Night, 2)
		assert.Len(t, r.Schedule.Day, 6)
	}

	// Variant 0 is the greedy baseline: identical to a plain build.
	baseline, err := rosterBuilder(t, fullRosterSettings, "").Build(start, end, 0, DefaultTopK)
	require.NoError(t, err)
	assert.Equal(t, baseline, results[0].Schedule)

	// Higher variants actually diverge from the baseline.
	assert.NotEqual(t, results[0].Schedule, results[1].Schedule)
}

func TestBuildVariantsAllFail(t *testing.T) {
	b := rosterBuilder(t, `
members:
  day_shift:
    index_1_2_group:
      - name: Tanaka
      - name: Suzuki
      - name: Takahashi
      - name: Watanabe
    index_3_group:
      - name: Kato
  night_shift:
    index_1_group:
      - name: Sato
    index_2_group:
      - name: Hayashi
`, "")

	results, err := b.BuildVariants(dateutil.MustDate("2025-03-21"), dateutil.MustDate("2025-03-25"), 2, DefaultTopK)
	require.Error(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
		assert.Nil(t, r.Schedule)
	}
}

func TestBuildVariantsNormalizesArguments(t *testing.T) {
	b := rosterBuilder(t, fullRosterSettings, "")

	results, err := b.BuildVariants(dateutil.MustDate("2025-03-21"), dateutil.MustDate("2025-03-30"), 0, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
