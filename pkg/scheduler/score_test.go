package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

func scorerSettings(t *testing.T, yaml string) *config.Settings {
	t.Helper()
	s, err := config.ParseSettings([]byte(yaml))
	require.NoError(t, err)
	return s
}

func TestScoreNeverAssigned(t *testing.T) {
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{})
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-03-22"), models.NewSchedule())
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreInBuildLoadAndRecency(t *testing.T) {
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{})
	schedule := models.NewSchedule()
	schedule.Day[dateutil.MustDate("2025-03-22")] = map[int]string{1: "Tanaka"}

	// One in-build assignment 14 days ago:
	// load 0.5/2 + recency 14/30*0.3 + history 0.2
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-04-05"), schedule)
	assert.InDelta(t, 0.25+0.14+0.2, score, 1e-9)
}

func TestScoreHistoricalRecency(t *testing.T) {
	last := dateutil.MustDate("2025-03-08")
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{
		"Tanaka": {DayCount: 2, LastDate: &last},
	})

	// No in-build assignments; history supplies the last date and the count.
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-03-22"), models.NewSchedule())
	assert.InDelta(t, 0.5+0.14+0.2/3.0, score, 1e-9)
}

func TestScoreRecencyCapped(t *testing.T) {
	last := dateutil.MustDate("2024-01-01")
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{
		"Tanaka": {LastDate: &last},
	})

	// More than 30 days since the last assignment caps the recency term.
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-03-22"), models.NewSchedule())
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreInBuildWinsOverHistory(t *testing.T) {
	histLast := dateutil.MustDate("2024-01-01")
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{
		"Tanaka": {LastDate: &histLast},
	})
	schedule := models.NewSchedule()
	schedule.Day[dateutil.MustDate("2025-03-19")] = map[int]string{1: "Tanaka"}

	// The in-build date (3 days ago) overrides the stale history date.
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-03-22"), schedule)
	assert.InDelta(t, 0.25+0.1*0.3+0.2, score, 1e-9)
}

func TestDayToNightPenalty(t *testing.T) {
	settings := scorerSettings(t, `
constraints:
  soft_constraints:
    day_to_night_gap:
      enabled: true
`)
	sc := NewScorer(settings, models.StatsMap{})
	schedule := models.NewSchedule()
	schedule.Day[dateutil.MustDate("2025-03-22")] = map[int]string{1: "Tanaka"}

	base := 0.5 + 0.3 + 0.2 // no night assignments yet

	// 2 days after the day shift: strong penalty.
	score := sc.Score("Tanaka", models.ShiftNight, dateutil.MustDate("2025-03-24"), schedule)
	assert.InDelta(t, base-config.DefaultSoftPenaltyStrong, score, 1e-9)

	// 5 days after: weak penalty.
	score = sc.Score("Tanaka", models.ShiftNight, dateutil.MustDate("2025-03-27"), schedule)
	assert.InDelta(t, base-config.DefaultSoftPenaltyWeak, score, 1e-9)

	// 8 days after: no penalty.
	score = sc.Score("Tanaka", models.ShiftNight, dateutil.MustDate("2025-03-30"), schedule)
	assert.InDelta(t, base, score, 1e-9)
}

func TestDayToNightPenaltyDisabled(t *testing.T) {
	sc := NewScorer(scorerSettings(t, ""), models.StatsMap{})
	schedule := models.NewSchedule()
	schedule.Day[dateutil.MustDate("2025-03-22")] = map[int]string{1: "Tanaka"}

	score := sc.Score("Tanaka", models.ShiftNight, dateutil.MustDate("2025-03-24"), schedule)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestDayToNightPenaltyDayOnly(t *testing.T) {
	settings := scorerSettings(t, `
constraints:
  soft_constraints:
    day_to_night_gap:
      enabled: true
`)
	sc := NewScorer(settings, models.StatsMap{})
	schedule := models.NewSchedule()
	schedule.Day[dateutil.MustDate("2025-03-22")] = map[int]string{1: "Tanaka"}

	// Day slots never take the penalty.
	score := sc.Score("Tanaka", models.ShiftDay, dateutil.MustDate("2025-04-05"), schedule)
	assert.InDelta(t, 0.25+0.14+0.2, score, 1e-9)
}
