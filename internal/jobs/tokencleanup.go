package jobs

import (
	"context"
	"time"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
)

// TokenCleanupWorker prunes expired refresh tokens so the token table does not
// grow unbounded.
type TokenCleanupWorker struct {
	log       *logger.Logger
	tokenRepo repos.UserTokenRepo
	interval  time.Duration
}

func NewTokenCleanupWorker(baseLog *logger.Logger, tokenRepo repos.UserTokenRepo, interval time.Duration) *TokenCleanupWorker {
	return &TokenCleanupWorker{
		log:       baseLog.With("component", "TokenCleanupWorker"),
		tokenRepo: tokenRepo,
		interval:  interval,
	}
}

func (w *TokenCleanupWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		w.log.Info("Token cleanup worker started", "interval", w.interval.String())
		for {
			select {
			case <-ctx.Done():
				w.log.Info("Token cleanup worker stopped")
				return
			case <-ticker.C:
				if err := w.tokenRepo.DeleteExpired(ctx, nil); err != nil {
					w.log.Warn("Token cleanup failed", "error", err)
				}
			}
		}
	}()
}
