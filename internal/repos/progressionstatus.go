package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/types"
)

type ProgressionStatusRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (*types.ProgressionStatus, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, policy string, weekDuration time.Duration) (*types.ProgressionStatus, error)
	AdvanceStrict(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekDuration time.Duration) (bool, error)
	AdvanceAccelerated(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, currentWeekNumber int, weekDuration time.Duration) error
	ListExpiredStrict(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ProgressionStatus, error)
}

type progressionStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressionStatusRepo(db *gorm.DB, baseLog *logger.Logger) ProgressionStatusRepo {
	repoLog := baseLog.With("repo", "ProgressionStatusRepo")
	return &progressionStatusRepo{db: db, log: repoLog}
}

func (r *progressionStatusRepo) Get(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (*types.ProgressionStatus, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ProgressionStatus
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetOrCreate inserts the week-1 record with ON CONFLICT DO NOTHING on the
// (user_id, contest_id) unique index, then reselects. Concurrent first-time
// callers race on the insert but both observe the single surviving row.
func (r *progressionStatusRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, policy string, weekDuration time.Duration) (*types.ProgressionStatus, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	existing, err := r.Get(ctx, transaction, userID, contestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	row := &types.ProgressionStatus{
		UserID:            userID,
		ContestID:         contestID,
		CurrentWeekNumber: 1,
		WindowStart:       now,
		WindowEnd:         now.Add(weekDuration),
		UnlockPolicy:      policy,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "contest_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	// Reselect so the loser of a concurrent insert gets the winner's row.
	created, err := r.Get(ctx, transaction, userID, contestID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AdvanceStrict performs the compare-and-swap entirely inside the database:
// the expiry check and the new window are both computed from the server's
// NOW(), so two simultaneous callers can increment a given expired window at
// most once. Returns whether this call performed the advance.
func (r *progressionStatusRepo) AdvanceStrict(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekDuration time.Duration) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).Exec(`
		UPDATE progression_status
		SET current_week_number = current_week_number + 1,
		    window_start = NOW(),
		    window_end = NOW() + make_interval(secs => ?),
		    updated_at = NOW()
		WHERE user_id = ?
		  AND contest_id = ?
		  AND unlock_policy = ?
		  AND window_end <= NOW()`,
		weekDuration.Seconds(), userID, contestID, types.UnlockPolicyStrict)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdvanceAccelerated writes currentWeekNumber+1 with a fresh window. It is
// not guarded against concurrent duplicate invocation; the completion
// workflow's unique completion insert must run before it.
func (r *progressionStatusRepo) AdvanceAccelerated(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, currentWeekNumber int, weekDuration time.Duration) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.ProgressionStatus{}).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Updates(map[string]interface{}{
			"current_week_number": currentWeekNumber + 1,
			"window_start":        now,
			"window_end":          now.Add(weekDuration),
			"updated_at":          now,
		}).Error
}

func (r *progressionStatusRepo) ListExpiredStrict(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ProgressionStatus, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProgressionStatus
	q := transaction.WithContext(ctx).
		Where("unlock_policy = ? AND window_end <= NOW()", types.UnlockPolicyStrict).
		Order("window_end ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
