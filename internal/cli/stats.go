package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/daemon"
)

func init() {
	statsCmd.Flags().Int64Var(&statsUserID, "user", 0, "User id to report on (required)")
	statsCmd.Flags().IntVar(&statsDays, "days", 28, "Trend window in days")
	statsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(statsCmd)
}

var (
	statsUserID int64
	statsDays   int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a user's streak and weekly trend",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now().UTC()

	dates, err := d.DB.ListSuccessDates(statsUserID, 0)
	if err != nil {
		return err
	}
	streak := insight.ComputeStreak(dates, now)
	fmt.Printf("Current streak: %d days\nLongest streak: %d days\n\n", streak.CurrentRun, streak.LongestRun)

	start := insight.DayOf(now).AddDate(0, 0, -(statsDays - 1))
	events, err := d.DB.ListEvents(statsUserID, 0, start, now)
	if err != nil {
		return err
	}
	trend, err := insight.Aggregate(events, start, now, insight.Weekly, insight.Options{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WEEK\tEVENTS\tSUCCESS\tRATE")
	for _, b := range trend {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.0f%%\n", b.PeriodKey, b.TotalEvents, b.SuccessEvents, b.CompletionRate*100)
	}
	return w.Flush()
}
