package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationPeriod(t *testing.T) {
	start, end := RotationPeriod(MustDate("2025-03-21"))
	assert.Equal(t, MustDate("2025-03-21"), start)
	assert.Equal(t, MustDate("2025-05-20"), end)

	// End-of-month starts still land on the day before, two months out.
	start, end = RotationPeriod(MustDate("2025-01-31"))
	assert.Equal(t, MustDate("2025-01-31"), start)
	assert.Equal(t, MustDate("2025-03-30"), end)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-21")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-03-21", FormatDate(d))

	_, err = ParseDate("21/03/2025")
	assert.Error(t, err)
}

func TestMondaysIn(t *testing.T) {
	mondays := MondaysIn(MustDate("2025-03-21"), MustDate("2025-04-10"))
	want := []time.Time{
		MustDate("2025-03-24"),
		MustDate("2025-03-31"),
		MustDate("2025-04-07"),
	}
	assert.Equal(t, want, mondays)

	// A range without any Monday yields nothing.
	assert.Empty(t, MondaysIn(MustDate("2025-03-25"), MustDate("2025-03-28")))
}

func TestWeekendsIn(t *testing.T) {
	weekends := WeekendsIn(MustDate("2025-03-21"), MustDate("2025-03-31"))
	want := []time.Time{
		MustDate("2025-03-22"),
		MustDate("2025-03-23"),
		MustDate("2025-03-29"),
		MustDate("2025-03-30"),
	}
	assert.Equal(t, want, weekends)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(MustDate("2025-03-22")))  // Saturday
	assert.True(t, IsWeekend(MustDate("2025-03-23")))  // Sunday
	assert.False(t, IsWeekend(MustDate("2025-03-24"))) // Monday
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(MustDate("2025-03-21"), MustDate("2025-03-21")))
	assert.Equal(t, 7, DaysBetween(MustDate("2025-03-21"), MustDate("2025-03-28")))
	assert.Equal(t, -7, DaysBetween(MustDate("2025-03-28"), MustDate("2025-03-21")))
}

func TestWeekRange(t *testing.T) {
	start, end := WeekRange(MustDate("2025-03-24"))
	assert.Equal(t, MustDate("2025-03-24"), start)
	assert.Equal(t, MustDate("2025-03-30"), end)
}
