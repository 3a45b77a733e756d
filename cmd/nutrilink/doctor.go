package nutrilink

import (
	"fmt"

	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			report, err := service.RunDoctor(gdb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Drifted log totals: %d\n", report.DriftedLogs)
			fmt.Fprintf(out, "Duplicate day logs: %d\n", report.DuplicateDayLogs)
			fmt.Fprintf(out, "Orphan entries: %d\n", report.OrphanEntries)
			fmt.Fprintf(out, "Dangling coach links: %d\n", report.DanglingCoachLinks)
			if doctorFix {
				fmt.Fprintf(out, "Merged logs: %d\nRemoved entries: %d\nCleared coach links: %d\nFixed totals: %d\n",
					report.MergedLogs, report.RemovedEntries, report.ClearedCoachLinks, report.FixedLogs)
				report, err = service.RunDoctor(gdb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
