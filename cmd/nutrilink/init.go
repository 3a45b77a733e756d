package nutrilink

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the NutriLink database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			if cfg.DBType != "sqlite" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s database %s on %s\n", cfg.DBType, cfg.DBName, cfg.DBHost)
				return nil
			}
			path, err := resolveDBPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized NutriLink database at %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
