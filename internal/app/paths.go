package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Name is both the config subdirectory and the database file stem.
const Name = "nutrilink"

const backupStamp = "20060102-150405"

// DefaultDBPath resolves <user config dir>/nutrilink/nutrilink.db.
func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir for %s: %w", Name, err)
	}
	return filepath.Join(base, Name, Name+".db"), nil
}

// EnsureDBDir creates the parent of a SQLite file. In-memory and URI paths
// are left to the driver.
func EnsureDBDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return nil
}

func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// BackupPath names a snapshot taken at the given time inside dir.
func BackupPath(dir string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.db", Name, at.Format(backupStamp)))
}
