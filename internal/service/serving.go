package service

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/provider/fatsecret"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NoServingChoice asks ChooseServing to pick only when the choice is forced.
const NoServingChoice = -1

// ChooseServing applies the serving policy: a single serving is used as-is,
// several require an explicit zero-based index.
func ChooseServing(food fatsecret.Food, index int) (fatsecret.Serving, error) {
	switch {
	case len(food.Servings) == 0:
		return fatsecret.Serving{}, &MissingDataError{Food: food.Name, Field: "serving"}
	case index == NoServingChoice:
		if s, ok := food.SoleServing(); ok {
			return s, nil
		}
		return fatsecret.Serving{}, fmt.Errorf("%s: %w", food.Name, ErrServingChoiceRequired)
	case index < 0 || index >= len(food.Servings):
		return fatsecret.Serving{}, fmt.Errorf("serving %d out of range (food has %d)", index+1, len(food.Servings))
	default:
		return food.Servings[index], nil
	}
}

// EntryFromServing turns a chosen serving into a loggable entry. Calories are
// required and rounded; missing macros count as zero.
func EntryFromServing(food fatsecret.Food, serving fatsecret.Serving, at time.Time) (FoodEntryInput, error) {
	if serving.Calories == nil {
		return FoodEntryInput{}, &MissingDataError{Food: food.Name, Field: "calorie"}
	}
	meta := map[string]any{
		"provider": "fatsecret",
	}
	if food.Brand != "" {
		meta["brand"] = food.Brand
	}
	if serving.MetricAmount != nil && serving.MetricUnit != "" {
		meta["metric_amount"] = *serving.MetricAmount
		meta["metric_unit"] = serving.MetricUnit
	}
	if micros := serving.Micronutrients(); len(micros) > 0 {
		meta["micronutrients"] = micros
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return FoodEntryInput{}, fmt.Errorf("marshal entry metadata: %w", err)
	}

	return FoodEntryInput{
		Name:      food.Name,
		Calories:  int(math.Round(*serving.Calories)),
		Protein:   valueOrZero(serving.Protein),
		Carbs:     valueOrZero(serving.Carbs),
		Fat:       valueOrZero(serving.Fat),
		Date:      at,
		SourceRef: food.ID,
		Serving:   serving.Description,
		Metadata:  datatypes.JSON(raw),
	}, nil
}

// LogServing materializes a search result as a food entry on the day of at.
func LogServing(db *gorm.DB, accountID string, food fatsecret.Food, servingIndex int, at time.Time) (model.FoodEntry, error) {
	serving, err := ChooseServing(food, servingIndex)
	if err != nil {
		return model.FoodEntry{}, err
	}
	in, err := EntryFromServing(food, serving, at)
	if err != nil {
		return model.FoodEntry{}, err
	}
	return LogFood(db, accountID, in)
}

func valueOrZero(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
