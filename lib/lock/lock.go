// Package lock keeps two processes from migrating the same database at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrTimeout = errors.New("timed out waiting for lock")

// Release gives up a held lock.
type Release func() error

// Locker acquires an exclusive lock, waiting at most timeout.
type Locker interface {
	Acquire(ctx context.Context, timeout time.Duration) (Release, error)
}

// ForDatabase picks the lock matching the database behind dsn: a PostgreSQL
// advisory lock, or a lock file next to a SQLite database.
func ForDatabase(dsn string, db *gorm.DB, logger *slog.Logger) Locker {
	if db.Dialector.Name() == "postgres" {
		return NewAdvisoryLock(db, "yamdb-migrations", logger)
	}
	return NewFileLock(sqliteLockPath(dsn), logger)
}

func sqliteLockPath(dsn string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return filepath.Join(os.TempDir(), "yamdb-migrations.lock")
	}
	return filepath.Clean(path) + ".migrate.lock"
}

// FileLock is held while its file exists. Files older than the stale age are
// left over from a crashed process and get removed.
type FileLock struct {
	path   string
	stale  time.Duration
	logger *slog.Logger
}

func NewFileLock(path string, logger *slog.Logger) *FileLock {
	return &FileLock{path: path, stale: 10 * time.Minute, logger: logger}
}

func (l *FileLock) Acquire(ctx context.Context, timeout time.Duration) (Release, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		// #nosec G304 - path comes from configuration, not from requests
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid())
			if cerr := file.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(l.path)
				return nil, fmt.Errorf("failed to write lock file: %w", werr)
			}
			l.logger.Debug("Acquired lock", slog.String("file", l.path))
			return l.release, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if l.isStale() {
			l.logger.Warn("Removing stale lock file", slog.String("file", l.path))
			if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
			}
			continue
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%s: %w", l.path, ErrTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (l *FileLock) release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	l.logger.Debug("Released lock", slog.String("file", l.path))
	return nil
}

func (l *FileLock) isStale() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > l.stale
}

// AdvisoryLock uses a PostgreSQL session advisory lock, held on a dedicated
// connection until released.
type AdvisoryLock struct {
	db     *gorm.DB
	key    int64
	logger *slog.Logger
}

func NewAdvisoryLock(db *gorm.DB, name string, logger *slog.Logger) *AdvisoryLock {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return &AdvisoryLock{db: db, key: int64(h.Sum64()), logger: logger}
}

func (l *AdvisoryLock) Acquire(ctx context.Context, timeout time.Duration) (Release, error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", l.key); err != nil {
		conn.Close()
		if errors.Is(lockCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("advisory lock %d: %w", l.key, ErrTimeout)
		}
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	l.logger.Debug("Acquired advisory lock", slog.Int64("key", l.key))

	return func() error {
		defer conn.Close()
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", l.key); err != nil {
			return fmt.Errorf("failed to release advisory lock: %w", err)
		}
		l.logger.Debug("Released advisory lock", slog.Int64("key", l.key))
		return nil
	}, nil
}
