// Package loader ingests the historical duty-roster CSV and reduces it to
// per-member statistics for the scheduling core.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// DefaultLookbackMonths bounds how much history feeds the statistics.
const DefaultLookbackMonths = 2

// Record is one cleaned row of the duty history.
type Record struct {
	Date       time.Time
	PersonName string
	Category   models.ShiftType
	Index      int
}

// Placeholder values that appear in the person_name column of exported
// rosters and must be dropped: blanks, the change marker, and re-exported
// header rows.
var invalidNames = map[string]bool{
	"-":           true,
	"変更→":         true,
	"person_name": true,
}

// Load reads, parses and cleans the history CSV. Rows are deduplicated and
// placeholder names removed, mirroring the exported-roster quirks.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads history CSV content from a reader.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read history header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		cols[h] = i
	}
	for _, required := range []string{"date", "person_name", "shift_category", "shift_index"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("history CSV missing column %q", required)
		}
	}

	var records []Record
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history row: %w", err)
		}

		name := row[cols["person_name"]]
		if name == "" || invalidNames[name] {
			continue
		}

		key := row[cols["date"]] + "|" + name + "|" + row[cols["shift_category"]] + "|" + row[cols["shift_index"]]
		if seen[key] {
			continue
		}
		seen[key] = true

		date, err := dateutil.ParseDate(row[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("history row: bad date %q: %w", row[cols["date"]], err)
		}
		index, err := strconv.Atoi(row[cols["shift_index"]])
		if err != nil {
			return nil, fmt.Errorf("history row: bad shift_index %q: %w", row[cols["shift_index"]], err)
		}

		var category models.ShiftType
		switch row[cols["shift_category"]] {
		case "Day", "day":
			category = models.ShiftDay
		case "Night", "night":
			category = models.ShiftNight
		default:
			return nil, fmt.Errorf("history row: unknown shift_category %q", row[cols["shift_category"]])
		}

		records = append(records, Record{
			Date:       date,
			PersonName: name,
			Category:   category,
			Index:      index,
		})
	}
	return records, nil
}

// Recent keeps the records within months*30 days of the newest record (or of
// referenceDate when non-zero).
func Recent(records []Record, months int, referenceDate time.Time) []Record {
	if len(records) == 0 {
		return nil
	}
	if referenceDate.IsZero() {
		for _, r := range records {
			if r.Date.After(referenceDate) {
				referenceDate = r.Date
			}
		}
	}
	cutoff := referenceDate.AddDate(0, 0, -months*30)

	var recent []Record
	for _, r := range records {
		if !r.Date.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	return recent
}

// Analyze aggregates records into per-member statistics: counts by type, the
// distinct index values held (sorted), and the first/last assignment dates.
func Analyze(records []Record) models.StatsMap {
	type agg struct {
		total, day, night   int
		dayIdx, nightIdx    map[int]bool
		firstDate, lastDate time.Time
	}
	byMember := make(map[string]*agg)

	for _, r := range records {
		a, ok := byMember[r.PersonName]
		if !ok {
			a = &agg{
				dayIdx:    make(map[int]bool),
				nightIdx:  make(map[int]bool),
				firstDate: r.Date,
				lastDate:  r.Date,
			}
			byMember[r.PersonName] = a
		}
		a.total++
		if r.Category == models.ShiftDay {
			a.day++
			a.dayIdx[r.Index] = true
		} else {
			a.night++
			a.nightIdx[r.Index] = true
		}
		if r.Date.Before(a.firstDate) {
			a.firstDate = r.Date
		}
		if r.Date.After(a.lastDate) {
			a.lastDate = r.Date
		}
	}

	stats := make(models.StatsMap, len(byMember))
	for member, a := range byMember {
		first := a.firstDate
		last := a.lastDate
		stats[member] = models.MemberStats{
			TotalCount:   a.total,
			DayCount:     a.day,
			NightCount:   a.night,
			DayIndexes:   sortedKeys(a.dayIdx),
			NightIndexes: sortedKeys(a.nightIdx),
			FirstDate:    &first,
			LastDate:     &last,
		}
	}
	return stats
}

// LoadStats is the one-call path: load, restrict to the lookback window and
// aggregate.
func LoadStats(path string, lookbackMonths int) (models.StatsMap, error) {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultLookbackMonths
	}
	records, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Analyze(Recent(records, lookbackMonths, time.Time{})), nil
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
