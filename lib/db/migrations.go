package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icco/yamdb/models"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date.
func RunMigrations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		applySQLitePragmas(ctx, db, logger)
	}

	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createFilterIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to create filter indexes: %w", err)
	}

	return nil
}

// applySQLitePragmas tunes SQLite for a single-writer web workload.
func applySQLitePragmas(ctx context.Context, db *gorm.DB, logger *slog.Logger) {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=3000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		} else {
			logger.Debug("Executed pragma", slog.String("pragma", pragma))
		}
	}
}

// createFilterIndexes creates composite indexes used by list filters.
func createFilterIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_titles_category_year ON titles(category_id, year)",
		"CREATE INDEX IF NOT EXISTS idx_title_genres_genre ON title_genres(genre_id)",
		"CREATE INDEX IF NOT EXISTS idx_comments_review_pub_date ON comments(review_id, pub_date)",
	}

	for _, indexSQL := range statements {
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		logger.Debug("Created index", slog.String("sql", indexSQL))
	}

	return nil
}
