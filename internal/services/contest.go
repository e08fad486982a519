package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

type ContestService interface {
	ListActive(ctx context.Context) ([]*types.Contest, error)
	// Resolve returns the contest or a CONCURSO_NOT_FOUND error; inactive
	// contests are treated as missing for request-scoping purposes.
	Resolve(ctx context.Context, contestID uuid.UUID) (*types.Contest, error)
}

type contestService struct {
	db          *gorm.DB
	log         *logger.Logger
	contestRepo repos.ContestRepo
}

func NewContestService(db *gorm.DB, log *logger.Logger, contestRepo repos.ContestRepo) ContestService {
	serviceLog := log.With("service", "ContestService")
	return &contestService{db: db, log: serviceLog, contestRepo: contestRepo}
}

func (s *contestService) ListActive(ctx context.Context) ([]*types.Contest, error) {
	contests, err := s.contestRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	return contests, nil
}

func (s *contestService) Resolve(ctx context.Context, contestID uuid.UUID) (*types.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, nil, contestID)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if contest == nil || !contest.IsActive {
		return nil, apierr.Newf(apierr.CodeContestNotFound, "concurso %s nao encontrado", contestID)
	}
	return contest, nil
}
