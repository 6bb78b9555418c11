package db

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the database named by dsn. postgres:// and postgresql://
// URLs use the PostgreSQL driver, anything else is treated as a SQLite path.
func Open(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	dialector := sqlite.Open(dsn)
	if IsPostgres(dsn) {
		dialector = postgres.Open(dsn)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if !IsPostgres(dsn) {
		// One connection: SQLite has a single writer, and shared in-memory
		// databases live only while a connection is open.
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return gormDB, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
