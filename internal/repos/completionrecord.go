package repos

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/types"
)

// ErrBadCursor marks a pagination cursor the repo could not decode; it is
// caller input, not datastore state.
var ErrBadCursor = errors.New("malformed cursor")

type CompletionRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error
	Exists(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekNumber int) (bool, error)
	ListByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error)
	ListWeekNumbers(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) ([]int, error)
	CountByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (int64, error)
}

type completionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRecordRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRecordRepo {
	repoLog := baseLog.With("repo", "CompletionRecordRepo")
	return &completionRecordRepo{db: db, log: repoLog}
}

// Create appends one history entry. The unique (user_id, contest_id,
// week_number) index makes the insert the authoritative duplicate guard;
// callers detect gorm.ErrDuplicatedKey.
func (r *completionRecordRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *completionRecordRepo) Exists(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, weekNumber int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CompletionRecord{}).
		Where("user_id = ? AND contest_id = ? AND week_number = ?", userID, contestID, weekNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUserAndContest pages history descending by completed_at using an
// opaque keyset cursor, so rows inserted between pages never shift results.
// The returned cursor is empty when no further records exist.
func (r *completionRecordRepo) ListByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 10
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Order("completed_at DESC, id DESC").
		Limit(limit + 1)

	if cursor != "" {
		at, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		q = q.Where("(completed_at, id) < (?, ?)", at, id)
	}

	var results []*types.CompletionRecord
	if err := q.Find(&results).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(results) > limit {
		results = results[:limit]
		last := results[len(results)-1]
		next = encodeCursor(last.CompletedAt, last.ID)
	}
	return results, next, nil
}

func (r *completionRecordRepo) ListWeekNumbers(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) ([]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var weeks []int
	err := transaction.WithContext(ctx).
		Model(&types.CompletionRecord{}).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Order("week_number ASC").
		Pluck("week_number", &weeks).Error
	if err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *completionRecordRepo) CountByUserAndContest(ctx context.Context, tx *gorm.DB, userID, contestID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CompletionRecord{}).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Count(&count).Error
	return count, err
}

func encodeCursor(at time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%d|%s", at.UnixMicro(), id.String())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, ErrBadCursor
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad timestamp", ErrBadCursor)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad id", ErrBadCursor)
	}
	return time.UnixMicro(micros).UTC(), id, nil
}
