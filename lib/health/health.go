// Package health serves the liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Report is the body of a health response.
type Report struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  Component `json:"database"`
}

type Component struct {
	Status    Status `json:"status"`
	Driver    string `json:"driver"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Probe pings the database and reports the result.
func Probe(ctx context.Context, db *gorm.DB) Report {
	report := Report{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Database:  Component{Status: StatusOK, Driver: db.Dialector.Name()},
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx, db)
	report.Database.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		report.Status = StatusDegraded
		report.Database.Status = StatusDegraded
		report.Database.Error = err.Error()
	}
	return report
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Handler responds 200 when the database answers and 503 otherwise.
func Handler(db *gorm.DB, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := Probe(r.Context(), db)

		status := http.StatusOK
		if report.Status != StatusOK {
			status = http.StatusServiceUnavailable
			logger.WarnContext(r.Context(), "Health check failed", slog.String("error", report.Database.Error))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode health report", slog.Any("error", err))
		}
	}
}
