// Command dutyroster generates duty rotations from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/duty-rotation-go/pkg/analyzer"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/formatter"
	"github.com/arnavshah/duty-rotation-go/pkg/loader"
	"github.com/arnavshah/duty-rotation-go/pkg/logging"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
)

var (
	flagStart    string
	flagVariants int
	flagTopK     int
	flagSettings string
	flagNGDates  string
	flagHistory  string
	flagOutput   string
	flagDebug    bool
)

func main() {
	root := &cobra.Command{
		Use:   "dutyroster",
		Short: "Duty rotation generator",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a duty rotation for a two-month period",
		RunE:  runGenerate,
	}
	generate.Flags().StringVar(&flagStart, "start", "", "rotation start date (YYYY-MM-DD, the 21st is customary)")
	generate.Flags().IntVar(&flagVariants, "variants", 1, "number of schedule variants to generate")
	generate.Flags().IntVar(&flagTopK, "top-k", scheduler.DefaultTopK, "alternative pool width for variant sampling")
	generate.Flags().StringVar(&flagSettings, "settings", "config/settings.yaml", "settings file")
	generate.Flags().StringVar(&flagNGDates, "ng-dates", "config/ng_dates.yaml", "NG date file")
	generate.Flags().StringVar(&flagHistory, "history", "data/duty_roster.csv", "duty history CSV")
	generate.Flags().StringVar(&flagOutput, "output", "", "write the first successful variant as CSV to this path")
	generate.Flags().BoolVar(&flagDebug, "debug", false, "verbose logging")
	_ = generate.MarkFlagRequired("start")

	root.AddCommand(generate)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := logging.NewText(level)

	if flagVariants < 1 {
		return fmt.Errorf("--variants must be >= 1")
	}
	if flagTopK < 1 {
		return fmt.Errorf("--top-k must be >= 1")
	}

	start, err := dateutil.ParseDate(flagStart)
	if err != nil {
		return fmt.Errorf("bad --start date %q: %w", flagStart, err)
	}
	start, end := dateutil.RotationPeriod(start)

	settings, err := config.LoadSettings(flagSettings)
	if err != nil {
		return err
	}
	ngDates, err := config.LoadNGConfig(flagNGDates)
	if err != nil {
		return err
	}
	stats, err := loader.LoadStats(flagHistory, loader.DefaultLookbackMonths)
	if err != nil {
		return err
	}

	builder := scheduler.NewBuilder(settings, ngDates, stats, logger)
	results, buildErr := builder.BuildVariants(start, end, flagVariants, flagTopK)
	if buildErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), buildErr)
		return fmt.Errorf("no variant produced a feasible schedule")
	}

	fmt.Printf("\nDuty rotation %s .. %s\n", dateutil.FormatDate(start), dateutil.FormatDate(end))

	var firstSuccess *scheduler.BuildResult
	for i := range results {
		r := results[i]
		if r.Err != nil {
			fmt.Printf("\n--- Variant %d: FAILED ---\n%v\n", r.Variant, r.Err)
			continue
		}
		if firstSuccess == nil {
			firstSuccess = &results[i]
		}

		fmt.Printf("\n--- Variant %d ---\n", r.Variant)
		fmt.Print(formatter.FormatScheduleTable(r.Schedule))

		report := analyzer.New(r.Schedule, stats).Analyze()
		fmt.Println("\nMember totals (history + new)")
		fmt.Print(formatter.FormatCountsTable(report.MemberCounts))

		if len(report.Overlaps) > 0 {
			fmt.Printf("\nWARNING: %d day/night overlaps detected\n", len(report.Overlaps))
		}
		for _, ci := range report.CloseIntervals {
			fmt.Printf("note: %s has a %d-day gap between %s and %s\n", ci.Member, ci.Gap, ci.From, ci.To)
		}
		for _, w := range r.Warnings {
			fmt.Printf("note: %s\n", w)
		}

		fairness := formatter.CalculateFairness(r.Schedule)
		fmt.Printf("\nFairness: max %d, min %d, avg %.2f\n", fairness.MaxCount, fairness.MinCount, fairness.AvgCount)
	}

	if flagOutput != "" && firstSuccess != nil {
		if err := formatter.SaveCSV(firstSuccess.Schedule, flagOutput); err != nil {
			return err
		}
		logger.Info("schedule saved", "path", flagOutput, "variant", firstSuccess.Variant)
	}
	return nil
}
