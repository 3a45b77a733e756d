package db

import (
	"fmt"
	"log/slog"

	"github.com/JacobDiB/NutriLink/internal/app"
	"github.com/JacobDiB/NutriLink/internal/config"
	"github.com/JacobDiB/NutriLink/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the store selected by cfg.DBType. SQLite goes through the
// versioned migrations; server databases are brought up with AutoMigrate.
func Connect(cfg *config.Config, sqlitePath string, log logger.Interface) (*gorm.DB, error) {
	if log == nil {
		log = logger.Discard
	}

	var dialector gorm.Dialector
	switch cfg.DBType {
	case "sqlite", "":
		if err := app.EnsureDBDir(sqlitePath); err != nil {
			return nil, err
		}
		sqldb, err := Open(sqlitePath)
		if err != nil {
			return nil, err
		}
		if err := ApplyMigrations(sqldb); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
		gdb, err := Gorm(sqldb, log)
		if err != nil {
			_ = sqldb.Close()
			return nil, err
		}
		slog.Debug("connected to database", "type", "sqlite", "path", sqlitePath)
		return gdb, nil

	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		dialector = mysql.Open(dsn)

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
		)
		dialector = postgres.Open(dsn)

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.DBType, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(max(cfg.DBConnectionLimit/2, 1))

	if err := AutoMigrate(gdb); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	slog.Debug("connected to database", "type", cfg.DBType, "host", cfg.DBHost, "name", cfg.DBName)
	return gdb, nil
}

func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return nil
}

// Close releases the pool behind a gorm handle.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get underlying SQL DB: %w", err)
	}
	return sqlDB.Close()
}
