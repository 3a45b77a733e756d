package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JacobDiB/NutriLink/internal/db"
	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/service"
)

func TestRunDoctorHealthyStore(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	if _, _, err := service.PreloadIfNeeded(gdb, time.Now(), nil); err != nil {
		t.Fatalf("preload: %v", err)
	}

	report, err := service.RunDoctor(gdb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy seeded store, got %+v", report)
	}
}

func TestRunDoctorFixesDriftedTotals(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "drift@example.com")
	entry, err := service.LogFood(gdb, acct.ID, service.FoodEntryInput{Name: "soup", Calories: 320, Date: time.Date(2026, 3, 3, 12, 0, 0, 0, time.Local)})
	if err != nil {
		t.Fatalf("log food: %v", err)
	}
	if err := gdb.Model(&model.DailyLog{}).Where("id = ?", entry.DailyLogID).Update("calories", 999).Error; err != nil {
		t.Fatalf("corrupt total: %v", err)
	}

	report, err := service.RunDoctor(gdb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.DriftedLogs != 1 || report.FixedLogs != 0 {
		t.Fatalf("expected one drifted log reported, got %+v", report)
	}

	report, err = service.RunDoctor(gdb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.FixedLogs != 1 {
		t.Fatalf("expected one fixed log, got %+v", report)
	}
	loaded := mustLoadAccount(t, gdb, acct.ID)
	if loaded.DailyLogs[0].Calories != 320 {
		t.Fatalf("expected total recomputed to 320, got %d", loaded.DailyLogs[0].Calories)
	}
}

func TestRunDoctorRemovesOrphanEntries(t *testing.T) {
	t.Parallel()
	gdb := newTestDB(t)
	acct := mustAccount(t, gdb, "orphans@example.com")
	entry, err := service.LogFood(gdb, acct.ID, service.FoodEntryInput{Name: "tea", Calories: 5, Date: time.Date(2026, 3, 4, 16, 0, 0, 0, time.Local)})
	if err != nil {
		t.Fatalf("log food: %v", err)
	}
	if err := gdb.Exec(`PRAGMA foreign_keys = OFF`).Error; err != nil {
		t.Fatalf("disable foreign keys: %v", err)
	}
	if err := gdb.Exec(`DELETE FROM daily_logs WHERE id = ?`, entry.DailyLogID).Error; err != nil {
		t.Fatalf("drop log: %v", err)
	}

	report, err := service.RunDoctor(gdb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.OrphanEntries != 1 || report.RemovedEntries != 1 {
		t.Fatalf("expected one orphan removed, got %+v", report)
	}
}

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nutrilink.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	gdb, err := db.Gorm(sqldb, nil)
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	mustAccount(t, gdb, "backup@example.com")

	backupDir := filepath.Join(dir, "backups")
	out := filepath.Join(backupDir, "nutrilink-1.db")
	info, err := service.CreateBackup(gdb, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info: %+v", info)
	}
	if _, err := service.CreateBackup(gdb, out); err == nil {
		t.Fatalf("expected existing backup path to be refused")
	}
	if err := sqldb.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	list, err := service.ListBackups(backupDir)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup listing: %+v", list)
	}

	if err := service.RestoreBackup(out, dbPath, false); err == nil {
		t.Fatalf("expected restore over an existing db to require force")
	}
	restored := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(out, restored, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}

	rdb, err := db.Open(restored)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer rdb.Close()
	var n int
	if err := rdb.QueryRow(`SELECT COUNT(1) FROM accounts WHERE email = 'backup@example.com'`).Scan(&n); err != nil {
		t.Fatalf("query restored db: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected restored account, got %d", n)
	}

	if err := os.WriteFile(out+".sha256", []byte("bad\n"), 0o644); err != nil {
		t.Fatalf("corrupt checksum: %v", err)
	}
	if err := service.RestoreBackup(out, restored, true); err == nil {
		t.Fatalf("expected checksum mismatch to fail")
	}
}
