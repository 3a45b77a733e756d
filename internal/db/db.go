package db

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Gorm wraps an already migrated SQLite handle. The pool stays capped at one
// connection, so callers must use the tx handle inside gorm transactions.
func Gorm(sqldb *sql.DB, log logger.Interface) (*gorm.DB, error) {
	if log == nil {
		log = logger.Discard
	}
	gdb, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: sqldb}), &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm session: %w", err)
	}
	return gdb, nil
}
