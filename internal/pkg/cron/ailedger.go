package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/ailedger"
)

type LedgerJobs struct {
	ledgerService ailedger.LedgerService
	runTimeout    time.Duration
}

func NewLedgerJobs(ledgerService ailedger.LedgerService, runTimeout time.Duration) *LedgerJobs {
	return &LedgerJobs{
		ledgerService: ledgerService,
		runTimeout:    runTimeout,
	}
}

func (j *LedgerJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("expire_stale_ai_runs", 15*time.Minute, j.ExpireStaleRuns)
}

// ExpireStaleRuns fails AI runs still running after runTimeout.
func (j *LedgerJobs) ExpireStaleRuns(ctx context.Context) error {
	expired, err := j.ledgerService.ExpireStaleRuns(ctx, j.runTimeout)
	if err != nil {
		return fmt.Errorf("failed to expire stale runs: %w", err)
	}

	if expired > 0 {
		slog.Debug("Cron: Expired stale AI runs", "count", expired, "timeout", j.runTimeout)
	}
	return nil
}
