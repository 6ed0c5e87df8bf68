package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

const sampleCSV = `date,person_name,shift_category,shift_index
2025-01-11,Tanaka,Day,1
2025-01-11,Suzuki,Day,2
2025-01-11,Suzuki,Day,2
2025-01-12,-,Day,1
2025-01-12,変更→,Day,2
2025-01-13,person_name,Day,1
2025-01-13,,Day,2
2025-01-06,Sato,Night,1
2025-02-08,Tanaka,Day,1
`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Nine rows: one duplicate, four placeholder names.
	require.Len(t, records, 4)

	names := make(map[string]int)
	for _, r := range records {
		names[r.PersonName]++
	}
	assert.Equal(t, 2, names["Tanaka"])
	assert.Equal(t, 1, names["Suzuki"])
	assert.Equal(t, 1, names["Sato"])

	assert.Equal(t, models.ShiftNight, records[2].Category)
	assert.Equal(t, dateutil.MustDate("2025-01-06"), records[2].Date)
	assert.Equal(t, 1, records[2].Index)
}

func TestParseColumnOrderIndependent(t *testing.T) {
	csv := `shift_index,date,shift_category,person_name
1,2025-01-11,Day,Tanaka
`
	records, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tanaka", records[0].PersonName)
}

func TestParseMissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("date,person_name,shift_category\n2025-01-11,Tanaka,Day\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shift_index")
}

func TestParseBadRows(t *testing.T) {
	_, err := Parse(strings.NewReader("date,person_name,shift_category,shift_index\nnot-a-date,Tanaka,Day,1\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("date,person_name,shift_category,shift_index\n2025-01-11,Tanaka,Evening,1\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("date,person_name,shift_category,shift_index\n2025-01-11,Tanaka,Day,one\n"))
	assert.Error(t, err)
}

func TestRecent(t *testing.T) {
	records := []Record{
		{Date: dateutil.MustDate("2024-10-01"), PersonName: "Old"},
		{Date: dateutil.MustDate("2025-01-06"), PersonName: "Kept"},
		{Date: dateutil.MustDate("2025-02-08"), PersonName: "Newest"},
	}

	// Two months (60 days) before the newest record, 2025-02-08, is
	// 2024-12-10: the October row falls out.
	recent := Recent(records, 2, time.Time{})
	require.Len(t, recent, 2)
	assert.Equal(t, "Kept", recent[0].PersonName)
	assert.Equal(t, "Newest", recent[1].PersonName)

	// An explicit reference date shifts the window.
	recent = Recent(records, 1, dateutil.MustDate("2025-01-10"))
	require.Len(t, recent, 2)
	assert.Equal(t, "Kept", recent[0].PersonName)

	recent = Recent(records, 2, dateutil.MustDate("2025-06-15"))
	assert.Empty(t, recent)

	assert.Nil(t, Recent(nil, 2, time.Time{}))
}

func TestAnalyze(t *testing.T) {
	records := []Record{
		{Date: dateutil.MustDate("2025-01-11"), PersonName: "Tanaka", Category: models.ShiftDay, Index: 1},
		{Date: dateutil.MustDate("2025-01-25"), PersonName: "Tanaka", Category: models.ShiftDay, Index: 2},
		{Date: dateutil.MustDate("2025-02-03"), PersonName: "Tanaka", Category: models.ShiftNight, Index: 1},
		{Date: dateutil.MustDate("2025-01-06"), PersonName: "Sato", Category: models.ShiftNight, Index: 2},
	}

	stats := Analyze(records)
	require.Len(t, stats, 2)

	tanaka := stats["Tanaka"]
	assert.Equal(t, 3, tanaka.TotalCount)
	assert.Equal(t, 2, tanaka.DayCount)
	assert.Equal(t, 1, tanaka.NightCount)
	assert.Equal(t, []int{1, 2}, tanaka.DayIndexes)
	assert.Equal(t, []int{1}, tanaka.NightIndexes)
	require.NotNil(t, tanaka.FirstDate)
	require.NotNil(t, tanaka.LastDate)
	assert.Equal(t, dateutil.MustDate("2025-01-11"), *tanaka.FirstDate)
	assert.Equal(t, dateutil.MustDate("2025-02-03"), *tanaka.LastDate)

	sato := stats["Sato"]
	assert.Equal(t, []int{2}, sato.NightIndexes)
	assert.Empty(t, sato.DayIndexes)
}

func TestLoadStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	stats, err := LoadStats(path, 2)
	require.NoError(t, err)

	// All sample dates fall within two months of the newest row.
	assert.Len(t, stats, 3)
	assert.Equal(t, 2, stats["Tanaka"].DayCount)
}

func TestLoadStatsMissingFile(t *testing.T) {
	_, err := LoadStats(filepath.Join(t.TempDir(), "nope.csv"), 2)
	assert.Error(t, err)
}
