package app

import (
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/platform/rediscache"
	"github.com/passarei/backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Contest       services.ContestService
	WeeklyContent services.WeeklyContentService
	Progression   services.ProgressionService
	Completion    services.CompletionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, cache *rediscache.Cache) Services {
	log.Info("Wiring services...")

	progressionCfg := services.ProgressionConfig{
		UnlockPolicy:          cfg.Progression.UnlockPolicy,
		WeekDuration:          cfg.Progression.WeekDuration,
		MaxConcurrentAdvances: cfg.Progression.MaxConcurrentAdvances,
	}

	return Services{
		Auth: services.NewAuthService(
			db, log,
			reposet.User,
			reposet.UserToken,
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
			cfg.RefreshTokenTTL,
		),
		Contest: services.NewContestService(db, log, reposet.Contest),
		WeeklyContent: services.NewWeeklyContentService(
			db, log,
			progressionCfg,
			reposet.WeeklyQuestionSet,
			reposet.ProgressionStatus,
			cache,
		),
		Progression: services.NewProgressionService(
			db, log,
			progressionCfg,
			reposet.ProgressionStatus,
			reposet.CompletionRecord,
		),
		Completion: services.NewCompletionService(
			db, log,
			progressionCfg,
			reposet.ProgressionStatus,
			reposet.CompletionRecord,
		),
	}
}
