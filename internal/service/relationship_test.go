package service_test

import (
	"errors"
	"testing"

	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/service"
)

func TestConnectLinksBothSides(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "client@example.com")
	coach := mustCoach(t, gdb, "coach@example.com")

	if err := service.Connect(gdb, &acct, &coach); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if acct.CoachID == nil || *acct.CoachID != coach.ID || acct.Coach != &coach {
		t.Fatalf("expected account side linked, got %v", acct.CoachID)
	}
	if len(coach.Clients) != 1 || coach.Clients[0].Email != acct.Email {
		t.Fatalf("expected coach side to list the client, got %d clients", len(coach.Clients))
	}

	stored, err := service.GetCoach(gdb, coach.ID)
	if err != nil {
		t.Fatalf("load coach: %v", err)
	}
	if len(stored.Clients) != 1 || stored.Clients[0].ID != acct.ID {
		t.Fatalf("expected stored coach to list the client")
	}
}

func TestConnectTwiceDoesNotDuplicate(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "twice@example.com")
	coach := mustCoach(t, gdb, "coach@example.com")

	for i := 0; i < 2; i++ {
		if err := service.Connect(gdb, &acct, &coach); err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
	}
	if len(coach.Clients) != 1 {
		t.Fatalf("expected one client after repeated connect, got %d", len(coach.Clients))
	}
}

func TestConnectMovesClientBetweenCoaches(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "mover@example.com")
	first := mustCoach(t, gdb, "first@example.com")
	second := mustCoach(t, gdb, "second@example.com")

	if err := service.Connect(gdb, &acct, &first); err != nil {
		t.Fatalf("connect first: %v", err)
	}
	if err := service.Connect(gdb, &acct, &second); err != nil {
		t.Fatalf("connect second: %v", err)
	}
	if len(first.Clients) != 0 || len(second.Clients) != 1 {
		t.Fatalf("expected client moved, got %d/%d", len(first.Clients), len(second.Clients))
	}
	stored, err := service.GetCoach(gdb, first.ID)
	if err != nil {
		t.Fatalf("load first coach: %v", err)
	}
	if len(stored.Clients) != 0 {
		t.Fatalf("expected stored first coach to have no clients")
	}
}

func TestDisconnectClearsBothSides(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "leaving@example.com")
	coach := mustCoach(t, gdb, "coach@example.com")

	if err := service.Connect(gdb, &acct, &coach); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := service.Disconnect(gdb, &acct); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if acct.CoachID != nil || acct.Coach != nil {
		t.Fatalf("expected account side cleared")
	}
	if len(coach.Clients) != 0 {
		t.Fatalf("expected coach side cleared, got %d clients", len(coach.Clients))
	}
	if loaded := mustLoadAccount(t, gdb, acct.ID); loaded.CoachID != nil {
		t.Fatalf("expected stored link cleared")
	}

	// A second disconnect is a no-op.
	if err := service.Disconnect(gdb, &acct); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
}

func TestDisconnectWithSeparatelyLoadedCopies(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "copy@example.com")
	other := mustAccount(t, gdb, "other@example.com")
	coach := mustCoach(t, gdb, "coach@example.com")
	for _, a := range []*model.Account{&acct, &other} {
		if err := service.Connect(gdb, a, &coach); err != nil {
			t.Fatalf("connect %s: %v", a.Email, err)
		}
	}

	loaded := mustLoadAccount(t, gdb, acct.ID)
	if loaded.Coach == nil {
		t.Fatalf("expected coach preloaded")
	}
	coachCopy, err := service.GetCoach(gdb, coach.ID)
	if err != nil {
		t.Fatalf("load coach: %v", err)
	}
	loaded.Coach = &coachCopy

	if err := service.Disconnect(gdb, &loaded); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(coachCopy.Clients) != 1 || coachCopy.Clients[0].Email != "other@example.com" {
		t.Fatalf("expected only the matching client removed, got %+v", coachCopy.Clients)
	}
}

func TestConnectUnknownCoachLeavesAccountUntouched(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "lonely@example.com")
	ghost := model.Coach{ID: "missing", Email: "ghost@example.com"}

	err := service.Connect(gdb, &acct, &ghost)
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if acct.CoachID != nil || len(ghost.Clients) != 0 {
		t.Fatalf("expected no in-memory change after a failed connect")
	}
	if loaded := mustLoadAccount(t, gdb, acct.ID); loaded.CoachID != nil {
		t.Fatalf("expected no stored link after a failed connect")
	}
}
