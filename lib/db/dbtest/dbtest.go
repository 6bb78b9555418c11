// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/icco/yamdb/lib/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated private in-memory SQLite database that is closed
// when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	gormDB, err := db.Open(dsn, quiet)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	gormDB.Logger = gormDB.Logger.LogMode(logger.Silent)

	if err := db.RunMigrations(context.Background(), gormDB, quiet); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}
