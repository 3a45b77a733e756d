package service_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/JacobDiB/NutriLink/internal/provider/fatsecret"
	"github.com/JacobDiB/NutriLink/internal/service"
)

func ptr(v float64) *float64 { return &v }

func TestChooseServing(t *testing.T) {
	t.Parallel()
	one := fatsecret.Food{Name: "Apple", Servings: []fatsecret.Serving{{Description: "1 medium", Calories: ptr(95)}}}
	many := fatsecret.Food{Name: "Rice", Servings: []fatsecret.Serving{
		{Description: "1 cup", Calories: ptr(205)},
		{Description: "100 g", Calories: ptr(130)},
	}}

	if s, err := service.ChooseServing(one, service.NoServingChoice); err != nil || s.Description != "1 medium" {
		t.Fatalf("expected the sole serving, got %+v, %v", s, err)
	}
	if _, err := service.ChooseServing(many, service.NoServingChoice); !errors.Is(err, service.ErrServingChoiceRequired) {
		t.Fatalf("expected ErrServingChoiceRequired, got %v", err)
	}
	if s, err := service.ChooseServing(many, 1); err != nil || s.Description != "100 g" {
		t.Fatalf("expected the chosen serving, got %+v, %v", s, err)
	}
	if _, err := service.ChooseServing(many, 2); err == nil {
		t.Fatalf("expected out of range index to fail")
	}

	var missing *service.MissingDataError
	if _, err := service.ChooseServing(fatsecret.Food{Name: "Mystery"}, service.NoServingChoice); !errors.As(err, &missing) {
		t.Fatalf("expected MissingDataError, got %v", err)
	}
}

func TestEntryFromServing(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 1, 13, 0, 0, 0, time.Local)
	food := fatsecret.Food{ID: "35718", Name: "Greek Yogurt", Brand: "Fage"}
	serving := fatsecret.Serving{
		Description:  "1 container",
		Calories:     ptr(130.5),
		Protein:      ptr(11.2),
		Fat:          ptr(4.1),
		Sodium:       ptr(65),
		MetricAmount: ptr(170),
		MetricUnit:   "g",
	}

	in, err := service.EntryFromServing(food, serving, at)
	if err != nil {
		t.Fatalf("entry from serving: %v", err)
	}
	if in.Calories != 131 {
		t.Fatalf("expected calories rounded to 131, got %d", in.Calories)
	}
	if in.Carbs != 0 || in.Protein != 11.2 {
		t.Fatalf("unexpected macros: %+v", in)
	}
	if in.SourceRef != "35718" || in.Serving != "1 container" || !in.Date.Equal(at) {
		t.Fatalf("unexpected source fields: %+v", in)
	}

	var meta map[string]any
	if err := json.Unmarshal(in.Metadata, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["brand"] != "Fage" || meta["metric_unit"] != "g" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
	if _, ok := meta["micronutrients"]; !ok {
		t.Fatalf("expected micronutrients in metadata: %v", meta)
	}

	serving.Calories = nil
	var missing *service.MissingDataError
	if _, err := service.EntryFromServing(food, serving, at); !errors.As(err, &missing) || missing.Field != "calorie" {
		t.Fatalf("expected missing calorie data, got %v", err)
	}
}

func TestLogServingAddsEntryToDay(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "search@example.com")
	at := time.Date(2026, 8, 2, 9, 15, 0, 0, time.Local)
	food := fatsecret.Food{ID: "1", Name: "Banana", Servings: []fatsecret.Serving{{Description: "1 medium", Calories: ptr(105), Carbs: ptr(27)}}}

	entry, err := service.LogServing(gdb, acct.ID, food, service.NoServingChoice, at)
	if err != nil {
		t.Fatalf("log serving: %v", err)
	}
	if entry.Calories != 105 || entry.SourceRef != "1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	loaded := mustLoadAccount(t, gdb, acct.ID)
	if len(loaded.DailyLogs) != 1 || loaded.DailyLogs[0].Calories != 105 {
		t.Fatalf("expected one log with 105 kcal, got %+v", loaded.DailyLogs)
	}
}
