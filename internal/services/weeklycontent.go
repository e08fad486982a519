package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/platform/rediscache"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

// Weekly sets are immutable once published, so a generous cache TTL is safe.
const weeklySetCacheTTL = 6 * time.Hour

// WeeklyContentService composes read-only weekly question content. Access to
// weeks beyond the caller's current progression week is refused as locked.
type WeeklyContentService interface {
	GetWeekSet(ctx context.Context, userID, contestID uuid.UUID, weekNumber, year int) (*types.WeeklyQuestionSet, error)
	ListAvailableWeeks(ctx context.Context, contestID uuid.UUID, year int) ([]int, error)
}

type weeklyContentService struct {
	db         *gorm.DB
	log        *logger.Logger
	setRepo    repos.WeeklyQuestionSetRepo
	statusRepo repos.ProgressionStatusRepo
	cfg        ProgressionConfig
	cache      *rediscache.Cache
}

func NewWeeklyContentService(
	db *gorm.DB,
	log *logger.Logger,
	cfg ProgressionConfig,
	setRepo repos.WeeklyQuestionSetRepo,
	statusRepo repos.ProgressionStatusRepo,
	cache *rediscache.Cache,
) WeeklyContentService {
	serviceLog := log.With("service", "WeeklyContentService")
	return &weeklyContentService{
		db:         db,
		log:        serviceLog,
		cfg:        cfg,
		setRepo:    setRepo,
		statusRepo: statusRepo,
		cache:      cache,
	}
}

func (s *weeklyContentService) GetWeekSet(ctx context.Context, userID, contestID uuid.UUID, weekNumber, year int) (*types.WeeklyQuestionSet, error) {
	status, err := s.statusRepo.GetOrCreate(ctx, nil, userID, contestID, s.cfg.UnlockPolicy, s.cfg.WeekDuration)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if weekNumber > status.CurrentWeekNumber {
		return nil, apierr.Newf(apierr.CodeWeekNotAvailable,
			"semana %d ainda bloqueada (semana atual: %d)", weekNumber, status.CurrentWeekNumber).
			WithDetails(map[string]interface{}{
				"semana_atual": status.CurrentWeekNumber,
				"janela_fim":   status.WindowEnd,
			})
	}

	key := weeklySetCacheKey(contestID, weekNumber, year)
	var cached types.WeeklyQuestionSet
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	set, err := s.setRepo.GetByContestWeekYear(ctx, nil, contestID, weekNumber, year)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if set == nil {
		return nil, apierr.Newf(apierr.CodeWeekNotFound,
			"sem conteudo para a semana %d de %d", weekNumber, year)
	}
	s.cache.SetJSON(ctx, key, set, weeklySetCacheTTL)
	return set, nil
}

func (s *weeklyContentService) ListAvailableWeeks(ctx context.Context, contestID uuid.UUID, year int) ([]int, error) {
	weeks, err := s.setRepo.ListWeekNumbers(ctx, nil, contestID, year)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	return weeks, nil
}

func weeklySetCacheKey(contestID uuid.UUID, weekNumber, year int) string {
	return fmt.Sprintf("weekly_set:%s:%d:%d", contestID, year, weekNumber)
}
