package nutrilink

import (
	"fmt"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	reportDate  string
	reportJSON  bool
	reportDays  int
	historyDays int
)

var todayCmd = &cobra.Command{
	Use:   "today <email>",
	Short: "Show today's entries, macro totals, and goal progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseDateOrToday(reportDate)
		if err != nil {
			return err
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			progress := service.TodayGoalProgress(acct, target)
			entries := service.TodayEntries(acct, target)
			if reportJSON {
				return printJSON(cmd, map[string]any{"progress": progress, "entries": entryRows(entries)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", progress.Date)
			for _, e := range entries {
				fmt.Fprintf(out, "  %s  %-30s %5d kcal  %s\n", e.Date.Format("15:04"), e.Name, e.Calories, e.ID)
			}
			fmt.Fprintf(out, "Intake: %d kcal\n", progress.Intake.Calories)
			fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", progress.Intake.Protein, progress.Intake.Carbs, progress.Intake.Fat)
			if progress.HasGoal {
				fmt.Fprintf(out, "Goal: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", progress.Goal.Calories, progress.Goal.Protein, progress.Goal.Carbs, progress.Goal.Fat)
				fmt.Fprintf(out, "Remaining: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", progress.Remaining.Calories, progress.Remaining.Protein, progress.Remaining.Carbs, progress.Remaining.Fat)
			} else {
				fmt.Fprintln(out, "Goal: not set")
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <email>",
	Short: "List daily logs newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			logs := service.History(acct)
			if historyDays > 0 && len(logs) > historyDays {
				logs = logs[:historyDays]
			}
			if reportJSON {
				rows := make([]map[string]any, 0, len(logs))
				for _, l := range logs {
					rows = append(rows, map[string]any{"id": l.ID, "day": l.Day, "calories": l.Calories, "entries": entryRows(l.FoodEntries)})
				}
				return printJSON(cmd, rows)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DAY\tCALORIES\tENTRIES\tID")
			for _, l := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%s\n", l.Day, l.Calories, len(l.FoodEntries), l.ID)
			}
			return nil
		})
	},
}

var averageCmd = &cobra.Command{
	Use:   "average <email>",
	Short: "Average calories over the most recent daily logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			avg, ok := service.AverageCalories(acct, reportDays)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Average: no data")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Average over last %d logs: %d kcal\n", reportDays, avg)
			return nil
		})
	},
}

var windowCmd = &cobra.Command{
	Use:   "window <email> <week|month|year>",
	Short: "Show daily logs within a calendar window ending today",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := service.ParseWindow(args[1])
		if err != nil {
			return err
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			now := time.Now()
			logs := service.LogsInWindow(acct, w, now)
			total := 0
			for _, l := range logs {
				total += l.Calories
			}
			if reportJSON {
				return printJSON(cmd, map[string]any{
					"window": w.String(),
					"start":  service.DayKey(w.Start(now)),
					"logs":   len(logs),
					"total":  total,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Window: %s since %s\n", w, service.DayKey(w.Start(now)))
			for _, l := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", l.Day, l.Calories)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logs: %d | Total: %d kcal\n", len(logs), total)
			return nil
		})
	},
}

func entryRows(entries []model.FoodEntry) []map[string]any {
	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{
			"id":         e.ID,
			"name":       e.Name,
			"calories":   e.Calories,
			"protein_g":  e.Protein,
			"carbs_g":    e.Carbs,
			"fat_g":      e.Fat,
			"date":       e.Date,
			"source_ref": e.SourceRef,
			"serving":    e.Serving,
		})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(todayCmd, historyCmd, averageCmd, windowCmd)
	todayCmd.Flags().StringVar(&reportDate, "date", "", "Date YYYY-MM-DD (default today)")
	for _, c := range []*cobra.Command{todayCmd, historyCmd, windowCmd} {
		c.Flags().BoolVar(&reportJSON, "json", false, "Output JSON")
	}
	historyCmd.Flags().IntVar(&historyDays, "limit", 0, "Show at most N days")
	averageCmd.Flags().IntVar(&reportDays, "days", 7, "Number of most recent logs")
}
