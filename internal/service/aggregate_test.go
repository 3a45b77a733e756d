package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/service"
)

var aggregateNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.Local)

// accountWithDays builds an account whose i-th log sits i days before
// aggregateNow; calories[0] is today.
func accountWithDays(calories ...int) model.Account {
	acct := model.Account{ID: "acct", Email: "jason@example.com"}
	for i, cal := range calories {
		day := service.StartOfDay(aggregateNow).AddDate(0, 0, -i)
		acct.DailyLogs = append(acct.DailyLogs, model.DailyLog{
			ID:       fmt.Sprintf("log-%d", i),
			Day:      service.DayKey(day),
			Date:     day,
			Calories: cal,
			FoodEntries: []model.FoodEntry{
				{ID: fmt.Sprintf("e-%d", i), Name: "meal", Calories: cal, Date: day.Add(12 * time.Hour)},
			},
		})
	}
	return acct
}

func TestAverageCalories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		calories []int
		window   int
		wantAvg  int
		wantData bool
	}{
		{name: "no logs", calories: nil, window: 7, wantData: false},
		{name: "single log", calories: []int{1850}, window: 7, wantAvg: 1850, wantData: true},
		{name: "integer division truncates", calories: []int{2000, 2200, 2400, 1900, 2100, 2300, 2050}, window: 7, wantAvg: 2135, wantData: true},
		{name: "only most recent n count", calories: []int{1000, 1000, 1000, 1000, 1000, 1000, 1000, 9000, 9000, 9000}, window: 7, wantAvg: 1000, wantData: true},
		{name: "fewer logs than window", calories: []int{1000, 2001}, window: 7, wantAvg: 1500, wantData: true},
		{name: "non-positive window", calories: []int{1000}, window: 0, wantData: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			avg, ok := service.AverageCalories(accountWithDays(tc.calories...), tc.window)
			if ok != tc.wantData {
				t.Fatalf("expected data=%v, got %v", tc.wantData, ok)
			}
			if ok && avg != tc.wantAvg {
				t.Fatalf("expected average %d, got %d", tc.wantAvg, avg)
			}
		})
	}
}

func TestAverageCaloriesIgnoresInsertionOrder(t *testing.T) {
	t.Parallel()
	acct := accountWithDays(100, 200, 300, 400, 500, 600, 700, 800)
	for i, j := 0, len(acct.DailyLogs)-1; i < j; i, j = i+1, j-1 {
		acct.DailyLogs[i], acct.DailyLogs[j] = acct.DailyLogs[j], acct.DailyLogs[i]
	}
	avg, ok := service.AverageCalories(acct, 7)
	if !ok || avg != 400 {
		t.Fatalf("expected 400 from the seven newest logs, got %d (ok=%v)", avg, ok)
	}
}

func TestAverageCaloriesWithTiedDates(t *testing.T) {
	t.Parallel()
	acct := accountWithDays(1000, 2000)
	acct.DailyLogs[1].Date = acct.DailyLogs[0].Date

	first, ok := service.AverageCalories(acct, 1)
	if !ok {
		t.Fatalf("expected data")
	}
	again, _ := service.AverageCalories(acct, 1)
	if first != again {
		t.Fatalf("expected a stable pick among tied dates, got %d then %d", first, again)
	}
}

func TestRecentLogsIsInclusiveAndAscending(t *testing.T) {
	t.Parallel()
	acct := accountWithDays(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	got := service.RecentLogs(acct, 7, aggregateNow)
	if len(got) != 8 {
		t.Fatalf("expected today plus 7 prior days, got %d logs", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Fatalf("expected ascending dates, got %s before %s", got[i-1].Day, got[i].Day)
		}
	}
	if got[len(got)-1].Day != service.DayKey(aggregateNow) {
		t.Fatalf("expected today's log last, got %s", got[len(got)-1].Day)
	}
}

func TestLogsInWindow(t *testing.T) {
	t.Parallel()
	calories := make([]int, 400)
	for i := range calories {
		calories[i] = 2000
	}
	acct := accountWithDays(calories...)

	week := service.LogsInWindow(acct, service.WindowWeek, aggregateNow)
	if len(week) != 8 {
		t.Fatalf("expected 8 logs in the week window, got %d", len(week))
	}
	month := service.LogsInWindow(acct, service.WindowMonth, aggregateNow)
	if first := month[0].Date; first.Before(service.WindowMonth.Start(aggregateNow)) {
		t.Fatalf("month window leaked %s", first)
	}
	year := service.LogsInWindow(acct, service.WindowYear, aggregateNow)
	if len(year) <= len(month) || len(year) >= len(calories) {
		t.Fatalf("unexpected year window size %d", len(year))
	}
}

func TestParseWindow(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]service.Window{"week": service.WindowWeek, "Monthly": service.WindowMonth, " year ": service.WindowYear} {
		got, err := service.ParseWindow(in)
		if err != nil || got != want {
			t.Fatalf("ParseWindow(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := service.ParseWindow("fortnight"); err == nil {
		t.Fatalf("expected unknown window to fail")
	}
}

func TestTodayMacroTotals(t *testing.T) {
	t.Parallel()

	if got := service.TodayMacroTotals(model.Account{}, aggregateNow); got != (service.MacroTotals{}) {
		t.Fatalf("expected zero totals without a log, got %+v", got)
	}

	acct := accountWithDays(0)
	today := service.StartOfDay(aggregateNow)
	acct.DailyLogs[0].FoodEntries = []model.FoodEntry{
		{Name: "eggs", Calories: 150, Protein: 12, Fat: 10, Date: today.Add(8 * time.Hour)},
		{Name: "toast", Calories: 90, Protein: 3, Carbs: 15.5, Fat: 1, Date: today.Add(8*time.Hour + time.Minute)},
	}
	got := service.TodayMacroTotals(acct, aggregateNow)
	want := service.MacroTotals{Calories: 240, Protein: 15, Carbs: 15.5, Fat: 11}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestHistoryOrdering(t *testing.T) {
	t.Parallel()
	acct := accountWithDays(100, 200, 300)
	day := acct.DailyLogs[0].Date
	acct.DailyLogs[0].FoodEntries = []model.FoodEntry{
		{Name: "dinner", Date: day.Add(19 * time.Hour)},
		{Name: "breakfast", Date: day.Add(7 * time.Hour)},
	}

	got := service.History(acct)
	if got[0].Calories != 100 || got[2].Calories != 300 {
		t.Fatalf("expected newest log first, got %d..%d", got[0].Calories, got[2].Calories)
	}
	if got[0].FoodEntries[0].Name != "breakfast" {
		t.Fatalf("expected entries oldest first, got %s", got[0].FoodEntries[0].Name)
	}
	if acct.DailyLogs[0].FoodEntries[0].Name != "dinner" {
		t.Fatalf("History must not reorder the account's own slices")
	}
}

func TestTodayGoalProgress(t *testing.T) {
	t.Parallel()
	acct := accountWithDays(1500)
	acct.GoalCalories = "2000 kcal"
	acct.GoalProtein = "120g"

	got := service.TodayGoalProgress(acct, aggregateNow)
	if !got.HasGoal || got.Goal.Calories != 2000 || got.Goal.Protein != 120 {
		t.Fatalf("unexpected goals: %+v", got)
	}
	if got.Remaining.Calories != 500 {
		t.Fatalf("expected 500 remaining, got %d", got.Remaining.Calories)
	}

	if none := service.TodayGoalProgress(model.Account{}, aggregateNow); none.HasGoal {
		t.Fatalf("expected no goal for a blank account")
	}
}

func TestClientSummaries(t *testing.T) {
	t.Parallel()
	jason := accountWithDays(2000, 2200, 2400, 1900, 2100, 2300, 2050)
	emily := model.Account{ID: "emily", Email: "emily@example.com", GoalCalories: "1700"}
	coach := model.Coach{Clients: []model.Account{emily, jason}}

	rows := service.ClientSummaries(coach, aggregateNow)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].HasWeekAverage || rows[0].LastLogDay != "" {
		t.Fatalf("expected empty summary for a client without logs, got %+v", rows[0])
	}
	if rows[1].WeekAverage != 2135 || rows[1].TodayCalories != 2000 || rows[1].LastLogDay != service.DayKey(aggregateNow) {
		t.Fatalf("unexpected summary: %+v", rows[1])
	}
}
