package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
)

type AttendanceJobs struct {
	attendanceService attendance.Service
	staleAge          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.Service, staleAge time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		staleAge:          staleAge,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("cleanup_stale_sessions", 1*time.Hour, j.CleanupStaleSessions)
}

// CleanupStaleSessions removes punch-ins that were never closed within staleAge.
func (j *AttendanceJobs) CleanupStaleSessions(ctx context.Context) error {
	removed, err := j.attendanceService.CleanupStaleSessions(ctx, j.staleAge)
	if err != nil {
		return fmt.Errorf("failed to cleanup stale sessions: %w", err)
	}

	if removed > 0 {
		slog.Debug("Cron: Removed stale open sessions", "count", removed, "older_than", j.staleAge)
	}
	return nil
}
