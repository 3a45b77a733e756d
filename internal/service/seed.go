package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"gorm.io/gorm"
)

type sampleCoach struct {
	in      CoachInput
	clients []AccountInput
}

var sampleData = []sampleCoach{
	{
		in: CoachInput{
			Email:    "sarah.coach@nutrilink.com",
			Password: "password123",
			Name:     "Sarah Johnson",
			Bio:      "Certified nutritionist and personal trainer with 6 years of experience.",
		},
		clients: []AccountInput{
			{Email: "emily@example.com", Password: "emily123", Username: "EmilyFit", Goals: Goals{Calories: "1700"}},
			{Email: "jason@example.com", Password: "jason456", Username: "JasonStrength", Goals: Goals{Calories: "2400"}},
		},
	},
	{
		in: CoachInput{
			Email:    "mike.t@nutrilink.com",
			Password: "pass456",
			Name:     "Mike Thompson",
			Bio:      "Strength coach specializing in muscle building and athletic performance.",
		},
		clients: []AccountInput{
			{Email: "anna@example.com", Password: "anna789", Username: "AnnaRunner", Goals: Goals{Calories: "1800"}},
			{Email: "tom@example.com", Password: "tom321", Username: "TomBulk", Goals: Goals{Calories: "2800"}},
		},
	},
}

const (
	sampleDays        = 30
	sampleMinCalories = 1800
	sampleMaxCalories = 2400
)

type SeedReport struct {
	Coaches  int `json:"coaches"`
	Accounts int `json:"accounts"`
	Logs     int `json:"logs"`
}

// PreloadIfNeeded loads the demo coaches and clients, each with a month of
// logs ending on now, but only into an empty store.
func PreloadIfNeeded(db *gorm.DB, now time.Time, rng *rand.Rand) (SeedReport, bool, error) {
	var accounts, coaches int64
	if err := db.Model(&model.Account{}).Count(&accounts).Error; err != nil {
		return SeedReport{}, false, fmt.Errorf("count accounts: %w", err)
	}
	if err := db.Model(&model.Coach{}).Count(&coaches).Error; err != nil {
		return SeedReport{}, false, fmt.Errorf("count coaches: %w", err)
	}
	if accounts > 0 || coaches > 0 {
		return SeedReport{}, false, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x5eed))
	}

	var report SeedReport
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sc := range sampleData {
			coach, err := CreateCoach(tx, sc.in)
			if err != nil {
				return fmt.Errorf("seed coach %s: %w", sc.in.Email, err)
			}
			report.Coaches++
			for _, in := range sc.clients {
				acct, err := CreateAccount(tx, in)
				if err != nil {
					return fmt.Errorf("seed account %s: %w", in.Email, err)
				}
				report.Accounts++
				if err := Connect(tx, &acct, &coach); err != nil {
					return fmt.Errorf("seed coach link for %s: %w", in.Email, err)
				}
				for offset := 0; offset < sampleDays; offset++ {
					at := StartOfDay(now).AddDate(0, 0, -offset).Add(12 * time.Hour)
					_, err := LogFood(tx, acct.ID, FoodEntryInput{
						Name:     "Daily intake",
						Calories: sampleMinCalories + rng.IntN(sampleMaxCalories-sampleMinCalories+1),
						Date:     at,
					})
					if err != nil {
						return fmt.Errorf("seed log for %s: %w", in.Email, err)
					}
					report.Logs++
				}
			}
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, false, err
	}
	return report, true, nil
}

// ClearAllData removes every account, coach, log and entry.
func ClearAllData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.FoodEntry{}, &model.DailyLog{}, &model.Account{}, &model.Coach{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}
