package nutrilink

import (
	"fmt"
	"os"

	"github.com/JacobDiB/NutriLink/internal/config"
	"github.com/JacobDiB/NutriLink/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dbPath   string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nutrilink",
	Short: "nutrilink tracks daily nutrition for accounts and their coaches",
	Long:  "nutrilink keeps daily food logs for accounts, links accounts to coaches, aggregates intake over time, and looks foods up on the FatSecret platform API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		logging.Setup(cmd.ErrOrStderr(), loaded.LogLevel)
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides NUTRILINK_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides NUTRILINK_LOG_LEVEL)")
}
