package nutrilink

import (
	"errors"
	"fmt"

	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var (
	accountEmail    string
	accountPassword string
	accountUsername string
	accountJSON     bool
	goalCalories    string
	goalProtein     string
	goalCarbs       string
	goalFat         string
)

var accountRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.AccountInput{
			Email:    accountEmail,
			Password: accountPassword,
			Username: accountUsername,
			Goals:    goalsFromFlags(),
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.CreateAccount(gdb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered account %s (%s)\n", acct.Email, acct.ID)
			return nil
		})
	},
}

var accountShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show an account profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			if accountJSON {
				return printJSON(cmd, map[string]any{
					"id":            acct.ID,
					"email":         acct.Email,
					"username":      acct.Username,
					"goal_calories": acct.GoalCalories,
					"goal_protein":  acct.GoalProtein,
					"goal_carbs":    acct.GoalCarbs,
					"goal_fat":      acct.GoalFat,
					"meal_plan":     acct.MealPlan,
					"coach_notes":   acct.CoachNotes,
					"coach_id":      acct.CoachID,
					"daily_logs":    len(acct.DailyLogs),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Email: %s\nUsername: %s\n", acct.Email, acct.Username)
			fmt.Fprintf(out, "Goals: %s kcal | P %s | C %s | F %s\n", orDash(acct.GoalCalories), orDash(acct.GoalProtein), orDash(acct.GoalCarbs), orDash(acct.GoalFat))
			if acct.Coach != nil {
				fmt.Fprintf(out, "Coach: %s <%s>\n", acct.Coach.Name, acct.Coach.Email)
			} else {
				fmt.Fprintln(out, "Coach: none")
			}
			if acct.MealPlan != "" {
				fmt.Fprintf(out, "Meal plan: %s\n", acct.MealPlan)
			}
			if acct.CoachNotes != "" {
				fmt.Fprintf(out, "Coach notes: %s\n", acct.CoachNotes)
			}
			fmt.Fprintf(out, "Daily logs: %d\n", len(acct.DailyLogs))
			return nil
		})
	},
}

var accountGoalsCmd = &cobra.Command{
	Use:   "goals <email>",
	Short: "Replace an account's own calorie and macro goals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			if err := service.UpdateGoals(gdb, acct.ID, goalsFromFlags()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated goals for %s\n", acct.Email)
			return nil
		})
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete an account with all of its logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			if err := service.DeleteAccount(gdb, acct.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", acct.Email)
			return nil
		})
	},
}

var loginEmail, loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials and report whether they belong to an account or a coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			p, err := service.FindByCredentials(gdb, loginEmail, loginPassword)
			if errors.Is(err, service.ErrNotFound) {
				return fmt.Errorf("invalid email or password")
			}
			if err != nil {
				return err
			}
			switch p.Role {
			case service.RoleCoach:
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as coach %s (%d clients)\n", p.Coach.Name, len(p.Coach.Clients))
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as account %s (%d daily logs)\n", p.Account.Username, len(p.Account.DailyLogs))
			}
			return nil
		})
	},
}

func goalsFromFlags() service.Goals {
	return service.Goals{Calories: goalCalories, Protein: goalProtein, Carbs: goalCarbs, Fat: goalFat}
}

func addGoalFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&goalCalories, "calories", "", "Calorie goal, e.g. 2000")
	cmd.Flags().StringVar(&goalProtein, "protein", "", "Protein goal in grams")
	cmd.Flags().StringVar(&goalCarbs, "carbs", "", "Carbs goal in grams")
	cmd.Flags().StringVar(&goalFat, "fat", "", "Fat goal in grams")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(accountCmd, loginCmd)
	accountCmd.AddCommand(accountRegisterCmd, accountShowCmd, accountGoalsCmd, accountDeleteCmd)

	accountRegisterCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
	accountRegisterCmd.Flags().StringVar(&accountPassword, "password", "", "Account password")
	accountRegisterCmd.Flags().StringVar(&accountUsername, "username", "", "Display name")
	_ = accountRegisterCmd.MarkFlagRequired("email")
	_ = accountRegisterCmd.MarkFlagRequired("password")
	addGoalFlags(accountRegisterCmd)
	addGoalFlags(accountGoalsCmd)
	accountShowCmd.Flags().BoolVar(&accountJSON, "json", false, "Output JSON")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
