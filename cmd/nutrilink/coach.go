package nutrilink

import (
	"fmt"
	"time"

	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Manage coaches and their clients",
}

var (
	coachEmail    string
	coachPassword string
	coachName     string
	coachBio      string
	coachJSON     bool
	planMealPlan  string
	planNotes     string
)

var coachRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.CoachInput{Email: coachEmail, Password: coachPassword, Name: coachName, Bio: coachBio}
		return withDB(cmd, func(gdb *gorm.DB) error {
			coach, err := service.CreateCoach(gdb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered coach %s (%s)\n", coach.Email, coach.ID)
			return nil
		})
	},
}

var coachListCmd = &cobra.Command{
	Use:   "list",
	Short: "List coaches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			coaches, err := service.ListCoaches(gdb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "NAME\tEMAIL\tBIO")
			for _, c := range coaches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.Name, c.Email, c.Bio)
			}
			return nil
		})
	},
}

var coachClientsCmd = &cobra.Command{
	Use:   "clients <coach-email>",
	Short: "Show each client's goal, today's intake, and 7-day average",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			coach, err := service.GetCoachByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			rows := service.ClientSummaries(coach, time.Now())
			if coachJSON {
				return printJSON(cmd, rows)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "EMAIL\tUSERNAME\tGOAL\tTODAY\tAVG7\tLAST_LOG")
			for _, r := range rows {
				avg := "no data"
				if r.HasWeekAverage {
					avg = fmt.Sprintf("%d", r.WeekAverage)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%s\t%s\n", r.Email, r.Username, orDash(r.GoalCalories), r.TodayCalories, avg, orDash(r.LastLogDay))
			}
			return nil
		})
	},
}

var coachPlanCmd = &cobra.Command{
	Use:   "plan <coach-email> <client-email>",
	Short: "Update a client's goals, meal plan, or notes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := service.ClientPlan{}
		flags := cmd.Flags()
		if flags.Changed("calories") || flags.Changed("protein") || flags.Changed("carbs") || flags.Changed("fat") {
			goals := goalsFromFlags()
			plan.Goals = &goals
		}
		if flags.Changed("meal-plan") {
			plan.MealPlan = &planMealPlan
		}
		if flags.Changed("notes") {
			plan.CoachNotes = &planNotes
		}
		return withDB(cmd, func(gdb *gorm.DB) error {
			coach, err := service.GetCoachByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			acct, err := service.GetAccountByEmail(gdb, args[1])
			if err != nil {
				return err
			}
			if err := service.UpdateClientPlan(gdb, coach.ID, acct.ID, plan); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated plan for %s\n", acct.Email)
			return nil
		})
	},
}

var coachConnectCmd = &cobra.Command{
	Use:   "connect <client-email> <coach-email>",
	Short: "Link an account to a coach",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			coach, err := service.GetCoachByEmail(gdb, args[1])
			if err != nil {
				return err
			}
			if err := service.Connect(gdb, &acct, &coach); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected %s to coach %s (%d clients)\n", acct.Email, coach.Email, len(coach.Clients))
			return nil
		})
	},
}

var coachDisconnectCmd = &cobra.Command{
	Use:   "disconnect <client-email>",
	Short: "Unlink an account from its coach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			acct, err := service.GetAccountByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			if acct.CoachID == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no coach\n", acct.Email)
				return nil
			}
			if err := service.Disconnect(gdb, &acct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disconnected %s\n", acct.Email)
			return nil
		})
	},
}

var coachDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete a coach; clients are kept without a coach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			coach, err := service.GetCoachByEmail(gdb, args[0])
			if err != nil {
				return err
			}
			if err := service.DeleteCoach(gdb, coach.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted coach %s\n", coach.Email)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(coachCmd)
	coachCmd.AddCommand(coachRegisterCmd, coachListCmd, coachClientsCmd, coachPlanCmd, coachConnectCmd, coachDisconnectCmd, coachDeleteCmd)

	coachRegisterCmd.Flags().StringVar(&coachEmail, "email", "", "Coach email")
	coachRegisterCmd.Flags().StringVar(&coachPassword, "password", "", "Coach password")
	coachRegisterCmd.Flags().StringVar(&coachName, "name", "", "Display name")
	coachRegisterCmd.Flags().StringVar(&coachBio, "bio", "", "Short bio")
	_ = coachRegisterCmd.MarkFlagRequired("email")
	_ = coachRegisterCmd.MarkFlagRequired("password")

	coachClientsCmd.Flags().BoolVar(&coachJSON, "json", false, "Output JSON")

	addGoalFlags(coachPlanCmd)
	coachPlanCmd.Flags().StringVar(&planMealPlan, "meal-plan", "", "Meal plan text")
	coachPlanCmd.Flags().StringVar(&planNotes, "notes", "", "Coach notes")
}
