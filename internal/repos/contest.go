package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/types"
)

type ContestRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contest, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Contest, error)
}

type contestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContestRepo(db *gorm.DB, baseLog *logger.Logger) ContestRepo {
	repoLog := baseLog.With("repo", "ContestRepo")
	return &contestRepo{db: db, log: repoLog}
}

func (r *contestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Contest
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *contestRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Contest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Contest
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("year DESC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
