// Package formatter renders schedules as text tables and CSV. The CSV layout
// matches the history loader's input columns, so a generated roster can be
// appended to the history file for the next rotation.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// FormatScheduleTable renders the day and night tables for terminal output.
func FormatScheduleTable(schedule *models.Schedule) string {
	var b strings.Builder

	b.WriteString("\nDay schedule\n")
	b.WriteString(formatDayTable(schedule))
	b.WriteString("\nNight schedule\n")
	b.WriteString(formatNightTable(schedule))

	return b.String()
}

func formatDayTable(schedule *models.Schedule) string {
	if len(schedule.Day) == 0 {
		return "(none)\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tWeekday\tIndex 1\tIndex 2\tIndex 3")
	for _, date := range schedule.SortedDayDates() {
		indexes := schedule.Day[date]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			dateutil.FormatDate(date),
			date.Weekday().String()[:3],
			orDash(indexes[1]),
			orDash(indexes[2]),
			orDash(indexes[3]))
	}
	w.Flush()
	return b.String()
}

func formatNightTable(schedule *models.Schedule) string {
	if len(schedule.Night) == 0 {
		return "(none)\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Week start\tPeriod\tIndex 1\tIndex 2")
	for _, weekStart := range schedule.SortedNightWeeks() {
		indexes := schedule.Night[weekStart]
		_, weekEnd := dateutil.WeekRange(weekStart)
		fmt.Fprintf(w, "%s\t%02d/%02d - %02d/%02d\t%s\t%s\n",
			dateutil.FormatDate(weekStart),
			weekStart.Month(), weekStart.Day(),
			weekEnd.Month(), weekEnd.Day(),
			orDash(indexes[1]),
			orDash(indexes[2]))
	}
	w.Flush()
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatCountsTable renders the analyzer's per-member totals.
func FormatCountsTable(counts []models.MemberCount) string {
	if len(counts) == 0 {
		return "(none)\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Member\tNew day\tNew night\tTotal day\tTotal night")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", c.Name, c.NewDay, c.NewNight, c.TotalDay, c.TotalNight)
	}
	w.Flush()
	return b.String()
}

// Fairness summarizes how evenly the new assignments spread across members.
type Fairness struct {
	MaxCount       int     `json:"max_count"`
	MinCount       int     `json:"min_count"`
	AvgCount       float64 `json:"avg_count"`
	DeviationRatio float64 `json:"deviation_ratio"` // (max-min)/min; negative when min is 0
}

// CalculateFairness computes the spread of total new assignments per member.
func CalculateFairness(schedule *models.Schedule) Fairness {
	totals := make(map[string]int)
	for _, indexes := range schedule.Day {
		for _, member := range indexes {
			totals[member]++
		}
	}
	for _, indexes := range schedule.Night {
		for _, member := range indexes {
			totals[member]++
		}
	}
	if len(totals) == 0 {
		return Fairness{}
	}

	maxCount := 0
	minCount := -1
	sum := 0
	for _, n := range totals {
		if n > maxCount {
			maxCount = n
		}
		if minCount < 0 || n < minCount {
			minCount = n
		}
		sum += n
	}

	f := Fairness{
		MaxCount: maxCount,
		MinCount: minCount,
		AvgCount: float64(sum) / float64(len(totals)),
	}
	if minCount > 0 {
		f.DeviationRatio = float64(maxCount-minCount) / float64(minCount)
	} else {
		f.DeviationRatio = -1
	}
	return f
}

// WriteCSV writes the schedule as date,shift_category,shift_index,person_name
// rows sorted by date.
func WriteCSV(schedule *models.Schedule, w io.Writer) error {
	type record struct {
		date     string
		category string
		index    int
		member   string
	}

	var records []record
	for _, date := range schedule.SortedDayDates() {
		for _, index := range sortedIndexes(schedule.Day[date]) {
			records = append(records, record{
				date:     dateutil.FormatDate(date),
				category: "Day",
				index:    index,
				member:   schedule.Day[date][index],
			})
		}
	}
	for _, weekStart := range schedule.SortedNightWeeks() {
		for _, index := range sortedIndexes(schedule.Night[weekStart]) {
			records = append(records, record{
				date:     dateutil.FormatDate(weekStart),
				category: "Night",
				index:    index,
				member:   schedule.Night[weekStart][index],
			})
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].date < records[j].date })

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "shift_category", "shift_index", "person_name"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.date, r.category, strconv.Itoa(r.index), r.member}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVString renders the schedule CSV in memory.
func CSVString(schedule *models.Schedule) (string, error) {
	var b strings.Builder
	if err := WriteCSV(schedule, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SaveCSV writes the schedule CSV to a file.
func SaveCSV(schedule *models.Schedule, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	return WriteCSV(schedule, f)
}

func sortedIndexes(assignments map[int]string) []int {
	indexes := make([]int, 0, len(assignments))
	for i := range assignments {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes
}
