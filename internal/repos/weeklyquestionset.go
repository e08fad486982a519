package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/types"
)

// WeeklyQuestionSetRepo is read-only: the progression engine never authors or
// mutates weekly content.
type WeeklyQuestionSetRepo interface {
	GetByContestWeekYear(ctx context.Context, tx *gorm.DB, contestID uuid.UUID, weekNumber, year int) (*types.WeeklyQuestionSet, error)
	ListWeekNumbers(ctx context.Context, tx *gorm.DB, contestID uuid.UUID, year int) ([]int, error)
}

type weeklyQuestionSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyQuestionSetRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyQuestionSetRepo {
	repoLog := baseLog.With("repo", "WeeklyQuestionSetRepo")
	return &weeklyQuestionSetRepo{db: db, log: repoLog}
}

func (r *weeklyQuestionSetRepo) GetByContestWeekYear(ctx context.Context, tx *gorm.DB, contestID uuid.UUID, weekNumber, year int) (*types.WeeklyQuestionSet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.WeeklyQuestionSet
	err := transaction.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("label ASC")
		}).
		Where("contest_id = ? AND week_number = ? AND year = ?", contestID, weekNumber, year).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *weeklyQuestionSetRepo) ListWeekNumbers(ctx context.Context, tx *gorm.DB, contestID uuid.UUID, year int) ([]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var weeks []int
	err := transaction.WithContext(ctx).
		Model(&types.WeeklyQuestionSet{}).
		Where("contest_id = ? AND year = ?", contestID, year).
		Order("week_number ASC").
		Pluck("week_number", &weeks).Error
	if err != nil {
		return nil, err
	}
	return weeks, nil
}
