package nutrilink

import (
	"fmt"
	"time"

	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo coaches, clients, and a month of logs into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			if seedReset {
				if err := service.ClearAllData(gdb); err != nil {
					return err
				}
			}
			report, seeded, err := service.PreloadIfNeeded(gdb, time.Now(), nil)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Store already has data; nothing seeded (use --reset to start over)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d coaches, %d accounts, %d daily logs\n", report.Coaches, report.Accounts, report.Logs)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete all accounts, coaches, and logs first")
}
