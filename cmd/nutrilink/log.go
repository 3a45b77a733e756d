package nutrilink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JacobDiB/NutriLink/internal/provider/fatsecret"
	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log food and manage daily logs",
}

var (
	logName     string
	logCalories int
	logProtein  float64
	logCarbs    float64
	logFat      float64
	logDate     string
	logTime     string
	logPick     int
	logServing  int
	logRefresh  bool
)

var logAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Log a food entry entered by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		in := service.FoodEntryInput{
			Name:     logName,
			Calories: logCalories,
			Protein:  logProtein,
			Carbs:    logCarbs,
			Fat:      logFat,
			Date:     at,
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			entry, err := service.LogFood(gdb, acct.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d kcal) on %s as entry %s\n", entry.Name, entry.Calories, service.DayKey(entry.Date), entry.ID)
			return nil
		})
	},
}

var logFoodCmd = &cobra.Command{
	Use:   "food <email> <query>",
	Short: "Search FatSecret and log one serving of a result",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		searcher, err := newSearcher()
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")
		servingIndex := service.NoServingChoice
		if logServing > 0 {
			servingIndex = logServing - 1
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LookupTimeout)
			defer cancel()
			res, err := service.SearchFoods(ctx, gdb, searcher, query, service.SearchOptions{TTL: cfg.SearchCacheTTL, Refresh: logRefresh})
			if err != nil {
				return err
			}
			if len(res.Foods) == 0 {
				return fmt.Errorf("no foods found for %q", query)
			}
			if logPick < 1 || logPick > len(res.Foods) {
				return fmt.Errorf("--pick must be between 1 and %d", len(res.Foods))
			}
			food := res.Foods[logPick-1]
			entry, err := service.LogServing(gdb, acct.ID, food, servingIndex, at)
			if errors.Is(err, service.ErrServingChoiceRequired) {
				printServings(cmd, food)
				return fmt.Errorf("%w: rerun with --serving N", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s, %s (%d kcal) on %s as entry %s\n", entry.Name, entry.Serving, entry.Calories, service.DayKey(entry.Date), entry.ID)
			return nil
		})
	},
}

var logRemoveCmd = &cobra.Command{
	Use:   "rm <entry-id>",
	Short: "Remove a food entry and subtract its calories from the day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			if err := service.RemoveFoodEntry(gdb, strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", args[0])
			return nil
		})
	},
}

var logDeleteDayCmd = &cobra.Command{
	Use:   "delete-day <log-id>",
	Short: "Delete a daily log with all of its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			if err := service.DeleteDailyLog(gdb, strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted daily log %s\n", args[0])
			return nil
		})
	},
}

func printServings(cmd *cobra.Command, food fatsecret.Food) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s has %d servings:\n", food.Name, len(food.Servings))
	for i, s := range food.Servings {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d) %s: %s kcal | P %sg | C %sg | F %sg\n", i+1, s.Description, nutrient(s.Calories), nutrient(s.Protein), nutrient(s.Carbs), nutrient(s.Fat))
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logAddCmd, logFoodCmd, logRemoveCmd, logDeleteDayCmd)

	logAddCmd.Flags().StringVar(&logName, "name", "", "Food name")
	logAddCmd.Flags().IntVar(&logCalories, "calories", 0, "Calories")
	logAddCmd.Flags().Float64Var(&logProtein, "protein", 0, "Protein grams")
	logAddCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "Carbs grams")
	logAddCmd.Flags().Float64Var(&logFat, "fat", 0, "Fat grams")
	_ = logAddCmd.MarkFlagRequired("name")
	_ = logAddCmd.MarkFlagRequired("calories")

	for _, c := range []*cobra.Command{logAddCmd, logFoodCmd} {
		c.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default now)")
		c.Flags().StringVar(&logTime, "time", "", "Time HH:MM")
	}
	logFoodCmd.Flags().IntVar(&logPick, "pick", 1, "Search result to log (1-based)")
	logFoodCmd.Flags().IntVar(&logServing, "serving", 0, "Serving to log (1-based); required when a food has several")
	logFoodCmd.Flags().BoolVar(&logRefresh, "refresh", false, "Bypass the lookup cache")
}
