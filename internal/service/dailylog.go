package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FoodEntryInput struct {
	Name      string
	Calories  int
	Protein   float64
	Carbs     float64
	Fat       float64
	Date      time.Time
	SourceRef string
	Serving   string
	Metadata  datatypes.JSON
}

// DayKey is the calendar day of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format(model.DayLayout)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UpsertDailyLog returns the account's log for day, creating an empty one on
// first use. It is the only path that creates logs.
func UpsertDailyLog(db *gorm.DB, accountID string, day time.Time) (model.DailyLog, error) {
	var out model.DailyLog
	err := db.Transaction(func(tx *gorm.DB) error {
		log, err := upsertDailyLog(tx, accountID, day)
		if err != nil {
			return err
		}
		out = log
		return nil
	})
	return out, err
}

// AddFoodEntry appends an entry to a log and raises the log total by the
// entry's calories in the same transaction.
func AddFoodEntry(db *gorm.DB, logID string, in FoodEntryInput) (model.FoodEntry, error) {
	var out model.FoodEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		entry, err := addFoodEntry(tx, logID, in)
		if err != nil {
			return err
		}
		out = entry
		return nil
	})
	return out, err
}

// LogFood records an entry on the day of in.Date (now when zero), creating
// that day's log if needed, as one commit.
func LogFood(db *gorm.DB, accountID string, in FoodEntryInput) (model.FoodEntry, error) {
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	var out model.FoodEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		log, err := upsertDailyLog(tx, accountID, in.Date)
		if err != nil {
			return err
		}
		entry, err := addFoodEntry(tx, log.ID, in)
		if err != nil {
			return err
		}
		out = entry
		return nil
	})
	return out, err
}

// RemoveFoodEntry deletes an entry and lowers its log's total. An entry whose
// log is gone is still deleted and a total that would go negative is clamped
// to zero; both anomalies are logged.
func RemoveFoodEntry(db *gorm.DB, entryID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entry model.FoodEntry
		if err := tx.Where("id = ?", entryID).First(&entry).Error; err != nil {
			return notFound(fmt.Sprintf("food entry %s", entryID), err)
		}

		var log model.DailyLog
		err := tx.Select("id", "calories").Where("id = ?", entry.DailyLogID).First(&log).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			slog.Warn("food entry has no parent log", "entry_id", entry.ID, "daily_log_id", entry.DailyLogID)
		case err != nil:
			return fmt.Errorf("lookup parent log: %w", err)
		default:
			if log.Calories < entry.Calories {
				slog.Warn("log total below entry calories; clamping to zero",
					"daily_log_id", log.ID, "log_calories", log.Calories, "entry_id", entry.ID, "entry_calories", entry.Calories)
			}
			res := tx.Model(&model.DailyLog{}).
				Where("id = ?", log.ID).
				Update("calories", gorm.Expr("CASE WHEN calories >= ? THEN calories - ? ELSE 0 END", entry.Calories, entry.Calories))
			if res.Error != nil {
				return fmt.Errorf("decrement log calories: %w", res.Error)
			}
		}

		if err := tx.Delete(&model.FoodEntry{}, "id = ?", entry.ID).Error; err != nil {
			return fmt.Errorf("delete food entry: %w", err)
		}
		return nil
	})
}

func DeleteDailyLog(db *gorm.DB, logID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("daily_log_id = ?", logID).Delete(&model.FoodEntry{}).Error; err != nil {
			return fmt.Errorf("delete log entries: %w", err)
		}
		res := tx.Delete(&model.DailyLog{}, "id = ?", logID)
		if res.Error != nil {
			return fmt.Errorf("delete daily log: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("daily log %s: %w", logID, ErrNotFound)
		}
		return nil
	})
}

// DeleteAccount removes the account with all of its logs and entries.
func DeleteAccount(db *gorm.DB, accountID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		logIDs := tx.Model(&model.DailyLog{}).Select("id").Where("account_id = ?", accountID)
		if err := tx.Where("daily_log_id IN (?)", logIDs).Delete(&model.FoodEntry{}).Error; err != nil {
			return fmt.Errorf("delete account entries: %w", err)
		}
		if err := tx.Where("account_id = ?", accountID).Delete(&model.DailyLog{}).Error; err != nil {
			return fmt.Errorf("delete account logs: %w", err)
		}
		res := tx.Delete(&model.Account{}, "id = ?", accountID)
		if res.Error != nil {
			return fmt.Errorf("delete account: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		return nil
	})
}

// DeleteCoach detaches every client and removes the coach. Clients survive.
func DeleteCoach(db *gorm.DB, coachID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Account{}).Where("coach_id = ?", coachID).Update("coach_id", nil).Error; err != nil {
			return fmt.Errorf("detach coach clients: %w", err)
		}
		res := tx.Delete(&model.Coach{}, "id = ?", coachID)
		if res.Error != nil {
			return fmt.Errorf("delete coach: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("coach %s: %w", coachID, ErrNotFound)
		}
		return nil
	})
}

func upsertDailyLog(tx *gorm.DB, accountID string, day time.Time) (model.DailyLog, error) {
	if day.IsZero() {
		return model.DailyLog{}, fmt.Errorf("log day is required")
	}
	var n int64
	if err := tx.Model(&model.Account{}).Where("id = ?", accountID).Count(&n).Error; err != nil {
		return model.DailyLog{}, fmt.Errorf("check account: %w", err)
	}
	if n == 0 {
		return model.DailyLog{}, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}

	key := DayKey(day)
	candidate := model.DailyLog{AccountID: accountID, Day: key, Date: StartOfDay(day)}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		if isUniqueViolation(err) {
			return model.DailyLog{}, fmt.Errorf("second log for %s on %s: %w", accountID, key, ErrIntegrityViolation)
		}
		return model.DailyLog{}, fmt.Errorf("insert daily log: %w", err)
	}

	var log model.DailyLog
	err = tx.Preload("FoodEntries", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, created_at ASC")
	}).Where("account_id = ? AND day = ?", accountID, key).First(&log).Error
	if err != nil {
		return model.DailyLog{}, fmt.Errorf("load daily log %s: %w", key, err)
	}
	return log, nil
}

func addFoodEntry(tx *gorm.DB, logID string, in FoodEntryInput) (model.FoodEntry, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.FoodEntry{}, fmt.Errorf("food name is required")
	}
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return model.FoodEntry{}, err
	}
	for name, v := range map[string]float64{"protein": in.Protein, "carbs": in.Carbs, "fat": in.Fat} {
		if err := validateNonNegativeFloat(name, v); err != nil {
			return model.FoodEntry{}, err
		}
	}

	var log model.DailyLog
	if err := tx.Where("id = ?", logID).First(&log).Error; err != nil {
		return model.FoodEntry{}, notFound(fmt.Sprintf("daily log %s", logID), err)
	}

	at := in.Date
	if at.IsZero() {
		at = time.Now()
		if DayKey(at) != log.Day {
			day, err := time.ParseInLocation(model.DayLayout, log.Day, time.Local)
			if err != nil {
				return model.FoodEntry{}, fmt.Errorf("parse log day %q: %w", log.Day, err)
			}
			at = day.Add(12 * time.Hour)
		}
	}
	if DayKey(at) != log.Day {
		return model.FoodEntry{}, fmt.Errorf("entry time %s is outside log day %s: %w", at.Format(time.RFC3339), log.Day, ErrIntegrityViolation)
	}

	entry := model.FoodEntry{
		DailyLogID: log.ID,
		Name:       in.Name,
		Calories:   in.Calories,
		Protein:    in.Protein,
		Carbs:      in.Carbs,
		Fat:        in.Fat,
		Date:       at,
		SourceRef:  strings.TrimSpace(in.SourceRef),
		Serving:    strings.TrimSpace(in.Serving),
		Metadata:   in.Metadata,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return model.FoodEntry{}, fmt.Errorf("insert food entry: %w", err)
	}
	res := tx.Model(&model.DailyLog{}).
		Where("id = ?", log.ID).
		Update("calories", gorm.Expr("calories + ?", entry.Calories))
	if res.Error != nil {
		return model.FoodEntry{}, fmt.Errorf("increment log calories: %w", res.Error)
	}
	return entry, nil
}
