package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxis-labs/praxis/internal/daemon"
)

func init() {
	remindCmd.Flags().StringVar(&remindNow, "now", "", "Run the sweep as of this RFC3339 time instead of the wall clock")
	rootCmd.AddCommand(remindCmd)
}

var remindNow string

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder sweep immediately",
	Long: `Run the daily and inactivity reminder sweeps once and exit.
Useful for cron setups that prefer not to keep the server's scheduler running.`,
	RunE: runRemind,
}

func runRemind(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	if remindNow != "" {
		now, err = time.Parse(time.RFC3339, remindNow)
		if err != nil {
			return fmt.Errorf("--now must be RFC3339: %w", err)
		}
	}

	daily, err := d.Notify.SweepDaily(now)
	if err != nil {
		return err
	}
	inactive, err := d.Notify.SweepInactive(now)
	if err != nil {
		return err
	}

	fmt.Printf("Sweep complete as of %s: %d daily, %d inactivity reminders fired.\n",
		now.Format(time.RFC3339), daily, inactive)
	return nil
}
