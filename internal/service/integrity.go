package service

import (
	"fmt"

	"github.com/JacobDiB/NutriLink/internal/model"
	"gorm.io/gorm"
)

type DoctorReport struct {
	DriftedLogs        int `json:"drifted_logs"`
	DuplicateDayLogs   int `json:"duplicate_day_logs"`
	OrphanEntries      int `json:"orphan_entries"`
	DanglingCoachLinks int `json:"dangling_coach_links"`
	FixedLogs          int `json:"fixed_logs,omitempty"`
	MergedLogs         int `json:"merged_logs,omitempty"`
	RemovedEntries     int `json:"removed_entries,omitempty"`
	ClearedCoachLinks  int `json:"cleared_coach_links,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.DriftedLogs == 0 && r.DuplicateDayLogs == 0 && r.OrphanEntries == 0 && r.DanglingCoachLinks == 0
}

type driftRow struct {
	ID         string
	Calories   int
	EntryTotal int
}

type dayGroup struct {
	AccountID string
	Day       string
	Logs      int
}

// RunDoctor checks the stored graph against its invariants. With fix it
// merges same-day logs, drops orphan entries, clears links to missing
// coaches and recomputes drifted totals, in that order, in one transaction.
func RunDoctor(db *gorm.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	groups, err := duplicateDayGroups(db)
	if err != nil {
		return report, err
	}
	for _, g := range groups {
		report.DuplicateDayLogs += g.Logs - 1
	}

	var orphans int64
	if err := db.Table("food_entries AS e").
		Joins("LEFT JOIN daily_logs l ON l.id = e.daily_log_id").
		Where("l.id IS NULL").
		Count(&orphans).Error; err != nil {
		return report, fmt.Errorf("doctor orphan check: %w", err)
	}
	report.OrphanEntries = int(orphans)

	var dangling int64
	if err := db.Table("accounts AS a").
		Joins("LEFT JOIN coaches c ON c.id = a.coach_id").
		Where("a.coach_id IS NOT NULL AND c.id IS NULL").
		Count(&dangling).Error; err != nil {
		return report, fmt.Errorf("doctor coach link check: %w", err)
	}
	report.DanglingCoachLinks = int(dangling)

	drifted, err := driftedLogs(db)
	if err != nil {
		return report, err
	}
	report.DriftedLogs = len(drifted)

	if !fix || report.Healthy() {
		return report, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, g := range groups {
			merged, err := mergeDayLogs(tx, g)
			if err != nil {
				return err
			}
			report.MergedLogs += merged
		}

		res := tx.Where("daily_log_id NOT IN (?)", tx.Model(&model.DailyLog{}).Select("id")).Delete(&model.FoodEntry{})
		if res.Error != nil {
			return fmt.Errorf("doctor fix orphan entries: %w", res.Error)
		}
		report.RemovedEntries = int(res.RowsAffected)

		res = tx.Model(&model.Account{}).
			Where("coach_id IS NOT NULL AND coach_id NOT IN (?)", tx.Model(&model.Coach{}).Select("id")).
			Update("coach_id", nil)
		if res.Error != nil {
			return fmt.Errorf("doctor fix coach links: %w", res.Error)
		}
		report.ClearedCoachLinks = int(res.RowsAffected)

		drifted, err := driftedLogs(tx)
		if err != nil {
			return err
		}
		for _, d := range drifted {
			if err := tx.Model(&model.DailyLog{}).Where("id = ?", d.ID).Update("calories", d.EntryTotal).Error; err != nil {
				return fmt.Errorf("doctor fix log %s total: %w", d.ID, err)
			}
			report.FixedLogs++
		}
		return nil
	})
	return report, err
}

func driftedLogs(db *gorm.DB) ([]driftRow, error) {
	var rows []driftRow
	err := db.Raw(`
SELECT l.id AS id, l.calories AS calories, COALESCE(SUM(e.calories), 0) AS entry_total
FROM daily_logs l
LEFT JOIN food_entries e ON e.daily_log_id = l.id
GROUP BY l.id, l.calories
HAVING l.calories <> COALESCE(SUM(e.calories), 0)
`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("doctor drift query: %w", err)
	}
	return rows, nil
}

func duplicateDayGroups(db *gorm.DB) ([]dayGroup, error) {
	var groups []dayGroup
	err := db.Model(&model.DailyLog{}).
		Select("account_id, day, COUNT(*) AS logs").
		Group("account_id, day").
		Having("COUNT(*) > 1").
		Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("doctor duplicate day query: %w", err)
	}
	return groups, nil
}

// mergeDayLogs folds every log of one (account, day) into the oldest one.
func mergeDayLogs(tx *gorm.DB, g dayGroup) (int, error) {
	var logs []model.DailyLog
	if err := tx.Where("account_id = ? AND day = ?", g.AccountID, g.Day).Order("created_at ASC, id ASC").Find(&logs).Error; err != nil {
		return 0, fmt.Errorf("load duplicate logs: %w", err)
	}
	if len(logs) < 2 {
		return 0, nil
	}
	keep := logs[0]
	merged := 0
	for _, l := range logs[1:] {
		if err := tx.Model(&model.FoodEntry{}).Where("daily_log_id = ?", l.ID).Update("daily_log_id", keep.ID).Error; err != nil {
			return merged, fmt.Errorf("move entries to log %s: %w", keep.ID, err)
		}
		if err := tx.Delete(&model.DailyLog{}, "id = ?", l.ID).Error; err != nil {
			return merged, fmt.Errorf("delete duplicate log %s: %w", l.ID, err)
		}
		merged++
	}
	return merged, nil
}
