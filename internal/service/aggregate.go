package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
)

// Window is a calendar span ending today.
type Window int

const (
	WindowWeek Window = iota
	WindowMonth
	WindowYear
)

func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weekly", "7d":
		return WindowWeek, nil
	case "month", "monthly", "30d":
		return WindowMonth, nil
	case "year", "yearly", "365d":
		return WindowYear, nil
	default:
		return 0, fmt.Errorf("unknown window %q (expected week, month, or year)", s)
	}
}

func (w Window) String() string {
	switch w {
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	case WindowYear:
		return "year"
	}
	return "unknown"
}

// Start is the first instant included in the window.
func (w Window) Start(now time.Time) time.Time {
	today := StartOfDay(now)
	switch w {
	case WindowMonth:
		return today.AddDate(0, -1, 0)
	case WindowYear:
		return today.AddDate(-1, 0, 0)
	default:
		return today.AddDate(0, 0, -7)
	}
}

type MacroTotals struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
}

type GoalProgress struct {
	Date      string      `json:"date"`
	Intake    MacroTotals `json:"intake"`
	HasGoal   bool        `json:"has_goal"`
	Goal      MacroTotals `json:"goal"`
	Remaining MacroTotals `json:"remaining"`
}

type ClientSummary struct {
	AccountID      string `json:"account_id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	GoalCalories   string `json:"goal_calories"`
	TodayCalories  int    `json:"today_calories"`
	WeekAverage    int    `json:"week_average"`
	HasWeekAverage bool   `json:"has_week_average"`
	LastLogDay     string `json:"last_log_day,omitempty"`
}

// RecentLogs returns logs dated on or after the start of today minus n days,
// oldest first.
func RecentLogs(acct model.Account, n int, now time.Time) []model.DailyLog {
	return logsSince(acct.DailyLogs, StartOfDay(now).AddDate(0, 0, -n))
}

// LogsInWindow returns the logs of a week, month, or year window, oldest first.
func LogsInWindow(acct model.Account, w Window, now time.Time) []model.DailyLog {
	return logsSince(acct.DailyLogs, w.Start(now))
}

// AverageCalories averages the n most recent logs with integer division.
// ok is false when there is nothing to average.
func AverageCalories(acct model.Account, n int) (avg int, ok bool) {
	if n <= 0 || len(acct.DailyLogs) == 0 {
		return 0, false
	}
	logs := newestFirst(acct.DailyLogs)
	if len(logs) > n {
		logs = logs[:n]
	}
	sum := 0
	for _, l := range logs {
		sum += l.Calories
	}
	return sum / len(logs), true
}

// TodayLog finds the log for the calendar day containing now.
func TodayLog(acct model.Account, now time.Time) (model.DailyLog, bool) {
	key := DayKey(now)
	for _, l := range acct.DailyLogs {
		if l.Day == key {
			return l, true
		}
	}
	return model.DailyLog{}, false
}

// TodayMacroTotals sums today's entries. No log means zero totals.
func TodayMacroTotals(acct model.Account, now time.Time) MacroTotals {
	log, ok := TodayLog(acct, now)
	if !ok {
		return MacroTotals{}
	}
	return sumEntries(log.FoodEntries)
}

// TodayEntries lists today's entries by time.
func TodayEntries(acct model.Account, now time.Time) []model.FoodEntry {
	log, ok := TodayLog(acct, now)
	if !ok {
		return nil
	}
	return entriesByTime(log.FoodEntries)
}

// History lists logs newest first with each log's entries oldest first.
func History(acct model.Account) []model.DailyLog {
	logs := newestFirst(acct.DailyLogs)
	for i := range logs {
		logs[i].FoodEntries = entriesByTime(logs[i].FoodEntries)
	}
	return logs
}

func TodayGoalProgress(acct model.Account, now time.Time) GoalProgress {
	out := GoalProgress{
		Date:   DayKey(now),
		Intake: TodayMacroTotals(acct, now),
	}
	if cal, ok := parseGoal(acct.GoalCalories); ok {
		out.HasGoal = true
		out.Goal.Calories = int(cal)
	}
	if v, ok := parseGoal(acct.GoalProtein); ok {
		out.HasGoal = true
		out.Goal.Protein = v
	}
	if v, ok := parseGoal(acct.GoalCarbs); ok {
		out.HasGoal = true
		out.Goal.Carbs = v
	}
	if v, ok := parseGoal(acct.GoalFat); ok {
		out.HasGoal = true
		out.Goal.Fat = v
	}
	out.Remaining = MacroTotals{
		Calories: out.Goal.Calories - out.Intake.Calories,
		Protein:  out.Goal.Protein - out.Intake.Protein,
		Carbs:    out.Goal.Carbs - out.Intake.Carbs,
		Fat:      out.Goal.Fat - out.Intake.Fat,
	}
	return out
}

// ClientSummaries builds the coach dashboard rows in client order.
func ClientSummaries(coach model.Coach, now time.Time) []ClientSummary {
	out := make([]ClientSummary, 0, len(coach.Clients))
	for _, c := range coach.Clients {
		row := ClientSummary{
			AccountID:     c.ID,
			Email:         c.Email,
			Username:      c.Username,
			GoalCalories:  c.GoalCalories,
			TodayCalories: TodayMacroTotals(c, now).Calories,
		}
		row.WeekAverage, row.HasWeekAverage = AverageCalories(c, 7)
		if logs := newestFirst(c.DailyLogs); len(logs) > 0 {
			row.LastLogDay = logs[0].Day
		}
		out = append(out, row)
	}
	return out
}

func logsSince(logs []model.DailyLog, start time.Time) []model.DailyLog {
	out := make([]model.DailyLog, 0, len(logs))
	for _, l := range logs {
		if !l.Date.Before(start) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// newestFirst copies logs sorted by date descending; equal dates keep insertion order.
func newestFirst(logs []model.DailyLog) []model.DailyLog {
	out := make([]model.DailyLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func entriesByTime(entries []model.FoodEntry) []model.FoodEntry {
	out := make([]model.FoodEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func sumEntries(entries []model.FoodEntry) MacroTotals {
	var t MacroTotals
	for _, e := range entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fat += e.Fat
	}
	return t
}

// parseGoal reads a free-text goal such as "2000", "150g" or "1800 kcal".
func parseGoal(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "kcal"), "g"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
