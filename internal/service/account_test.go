package service_test

import (
	"errors"
	"testing"

	"github.com/JacobDiB/NutriLink/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)

	acct, err := service.CreateAccount(gdb, service.AccountInput{
		Email:    "  Emily@Example.com ",
		Password: "emily123",
		Username: "EmilyFit",
		Goals:    service.Goals{Calories: "1700"},
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acct.Email != "emily@example.com" {
		t.Fatalf("expected normalized email, got %q", acct.Email)
	}
	if acct.PasswordHash == "emily123" || acct.PasswordHash == "" {
		t.Fatalf("expected a password hash to be stored")
	}

	p, err := service.FindByCredentials(gdb, "EMILY@example.com", "emily123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.Role != service.RoleAccount || p.Account == nil || p.Account.ID != acct.ID {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if _, err := service.FindByCredentials(gdb, "emily@example.com", "wrong"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a wrong password, got %v", err)
	}
	if _, err := service.FindByCredentials(gdb, "nobody@example.com", "x"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown email, got %v", err)
	}
}

func TestCoachLogin(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	coach := mustCoach(t, gdb, "sarah.coach@nutrilink.com")

	p, err := service.FindByCredentials(gdb, "sarah.coach@nutrilink.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.Role != service.RoleCoach || p.Coach == nil || p.Coach.ID != coach.ID {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestEmailIsUniqueAcrossAccountsAndCoaches(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	mustAccount(t, gdb, "taken@example.com")
	mustCoach(t, gdb, "coach@example.com")

	if _, err := service.CreateAccount(gdb, service.AccountInput{Email: "TAKEN@example.com", Password: "x"}); !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for a second account, got %v", err)
	}
	if _, err := service.CreateCoach(gdb, service.CoachInput{Email: "taken@example.com", Password: "x"}); !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for a coach reusing an account email, got %v", err)
	}
	if _, err := service.CreateAccount(gdb, service.AccountInput{Email: "coach@example.com", Password: "x"}); !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for an account reusing a coach email, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)

	cases := []service.AccountInput{
		{Email: "", Password: "x"},
		{Email: "no-at-sign", Password: "x"},
		{Email: "a@example.com", Password: ""},
		{Email: "a@example.com", Password: "x", Goals: service.Goals{Calories: "lots"}},
		{Email: "a@example.com", Password: "x", Goals: service.Goals{Protein: "-5"}},
	}
	for _, in := range cases {
		if _, err := service.CreateAccount(gdb, in); err == nil {
			t.Fatalf("expected %+v to be rejected", in)
		}
	}
}

func TestUpdateGoals(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "goals@example.com")

	if err := service.UpdateGoals(gdb, acct.ID, service.Goals{Calories: "2200", Protein: "150g"}); err != nil {
		t.Fatalf("update goals: %v", err)
	}
	loaded := mustLoadAccount(t, gdb, acct.ID)
	if loaded.GoalCalories != "2200" || loaded.GoalProtein != "150g" {
		t.Fatalf("unexpected goals: %q %q", loaded.GoalCalories, loaded.GoalProtein)
	}
	if err := service.UpdateGoals(gdb, "missing", service.Goals{}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateClientPlanRequiresOwnClient(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "client@example.com")
	coach := mustCoach(t, gdb, "coach@example.com")
	stranger := mustCoach(t, gdb, "stranger@example.com")

	plan := "Oats and eggs"
	notes := "Great week"
	in := service.ClientPlan{Goals: &service.Goals{Calories: "1900"}, MealPlan: &plan, CoachNotes: &notes}

	if err := service.UpdateClientPlan(gdb, coach.ID, acct.ID, in); !errors.Is(err, service.ErrNotClient) {
		t.Fatalf("expected ErrNotClient before connecting, got %v", err)
	}
	if err := service.Connect(gdb, &acct, &coach); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := service.UpdateClientPlan(gdb, stranger.ID, acct.ID, in); !errors.Is(err, service.ErrNotClient) {
		t.Fatalf("expected ErrNotClient for another coach, got %v", err)
	}
	if err := service.UpdateClientPlan(gdb, coach.ID, acct.ID, in); err != nil {
		t.Fatalf("update plan: %v", err)
	}

	loaded := mustLoadAccount(t, gdb, acct.ID)
	if loaded.GoalCalories != "1900" || loaded.MealPlan != plan || loaded.CoachNotes != notes {
		t.Fatalf("unexpected plan: %+v", loaded)
	}
}

func TestListCoaches(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	mustCoach(t, gdb, "b@example.com")
	mustCoach(t, gdb, "a@example.com")

	coaches, err := service.ListCoaches(gdb)
	if err != nil {
		t.Fatalf("list coaches: %v", err)
	}
	if len(coaches) != 2 || coaches[0].Email != "a@example.com" {
		t.Fatalf("unexpected coaches: %+v", coaches)
	}
}
