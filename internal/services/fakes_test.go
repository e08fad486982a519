package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/types"
)

type fakeStatusRepo struct {
	getFn           func(ctx context.Context, userID, contestID uuid.UUID) (*types.ProgressionStatus, error)
	getOrCreateFn   func(ctx context.Context, userID, contestID uuid.UUID, policy string, weekDuration time.Duration) (*types.ProgressionStatus, error)
	advanceStrictFn func(ctx context.Context, userID, contestID uuid.UUID, weekDuration time.Duration) (bool, error)
	advanceAccelFn  func(ctx context.Context, userID, contestID uuid.UUID, currentWeekNumber int, weekDuration time.Duration) error
	listExpiredFn   func(ctx context.Context, limit int) ([]*types.ProgressionStatus, error)
}

func (f *fakeStatusRepo) Get(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (*types.ProgressionStatus, error) {
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(ctx, userID, contestID)
}

func (f *fakeStatusRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, policy string, weekDuration time.Duration) (*types.ProgressionStatus, error) {
	return f.getOrCreateFn(ctx, userID, contestID, policy, weekDuration)
}

func (f *fakeStatusRepo) AdvanceStrict(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekDuration time.Duration) (bool, error) {
	return f.advanceStrictFn(ctx, userID, contestID, weekDuration)
}

func (f *fakeStatusRepo) AdvanceAccelerated(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, currentWeekNumber int, weekDuration time.Duration) error {
	if f.advanceAccelFn == nil {
		return nil
	}
	return f.advanceAccelFn(ctx, userID, contestID, currentWeekNumber, weekDuration)
}

func (f *fakeStatusRepo) ListExpiredStrict(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ProgressionStatus, error) {
	return f.listExpiredFn(ctx, limit)
}

type fakeCompletionRepo struct {
	createFn    func(ctx context.Context, row *types.CompletionRecord) error
	existsFn    func(ctx context.Context, userID, contestID uuid.UUID, weekNumber int) (bool, error)
	listFn      func(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error)
	listWeeksFn func(ctx context.Context, userID, contestID uuid.UUID) ([]int, error)
	countFn     func(ctx context.Context, userID, contestID uuid.UUID) (int64, error)
}

func (f *fakeCompletionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error {
	return f.createFn(ctx, row)
}

func (f *fakeCompletionRepo) Exists(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekNumber int) (bool, error) {
	return f.existsFn(ctx, userID, contestID, weekNumber)
}

func (f *fakeCompletionRepo) ListByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
	return f.listFn(ctx, userID, contestID, cursor, limit)
}

func (f *fakeCompletionRepo) ListWeekNumbers(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) ([]int, error) {
	if f.listWeeksFn == nil {
		return nil, nil
	}
	return f.listWeeksFn(ctx, userID, contestID)
}

func (f *fakeCompletionRepo) CountByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (int64, error) {
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(ctx, userID, contestID)
}
