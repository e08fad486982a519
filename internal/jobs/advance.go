package jobs

import (
	"context"
	"time"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/services"
)

// AdvanceWorker periodically catches up strict-mode users whose window has
// expired. Per-record failures are tallied inside the service; a failed pass
// only logs and waits for the next tick.
type AdvanceWorker struct {
	log         *logger.Logger
	progression services.ProgressionService
	interval    time.Duration
}

func NewAdvanceWorker(baseLog *logger.Logger, progression services.ProgressionService, interval time.Duration) *AdvanceWorker {
	return &AdvanceWorker{
		log:         baseLog.With("component", "AdvanceWorker"),
		progression: progression,
		interval:    interval,
	}
}

func (w *AdvanceWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		w.log.Info("Advance worker started", "interval_ms", w.interval.Milliseconds())
		for {
			select {
			case <-ctx.Done():
				w.log.Info("Advance worker stopped")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *AdvanceWorker) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Advance pass panic", "panic", r)
		}
	}()

	report, err := w.progression.ProcessAutomaticAdvances(ctx)
	if err != nil {
		w.log.Warn("Advance pass failed", "error", err)
		return
	}
	if report.Processed > 0 {
		w.log.Info("Advance pass finished",
			"processed", report.Processed,
			"advanced", report.Advanced,
			"errors", report.Errors)
	}
}
