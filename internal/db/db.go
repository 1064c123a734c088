// Package db opens the GORM connection and owns the schema.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notas/internal/config"
	"notas/internal/model"
)

// Open connects with the driver selected in cfg.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case config.DriverMySQL:
		return NewMySQL(cfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}

// Migrate brings the schema up to date. With reset the tables are dropped
// first, children before parents.
func Migrate(gormDB *gorm.DB, reset bool) error {
	if reset {
		slog.Warn("dropping all tables")
		for _, table := range []interface{}{&model.Note{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				slog.Warn("drop table failed (may not exist)", "err", err)
			}
		}
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Note{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Unique index violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         newGormLogger(slog.Default()),
	}
}

// newGormLogger routes GORM's warnings and slow queries through slog.
// Missing rows are an expected outcome of lookups and are not logged.
func newGormLogger(l *slog.Logger) logger.Interface {
	return logger.New(slog.NewLogLogger(l.Handler(), slog.LevelWarn), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
