package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

type CompletionSubmission struct {
	Answers          []types.CompletionAnswer
	Score            int
	TimeSpentMinutes *int
	Notes            string
}

type CompletionResult struct {
	NextWeek     *int   `json:"proximaSemana"`
	Advanced     bool   `json:"avancou"`
	UnlockPolicy string `json:"modoDesbloqueio"`
}

type CompletionService interface {
	CompleteWeek(ctx context.Context, userID, contestID uuid.UUID, weekNumber int, sub CompletionSubmission) (*CompletionResult, error)
	GetHistory(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error)
}

type completionService struct {
	db             *gorm.DB
	log            *logger.Logger
	cfg            ProgressionConfig
	statusRepo     repos.ProgressionStatusRepo
	completionRepo repos.CompletionRecordRepo
	now            func() time.Time
	transact       func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewCompletionService(
	db *gorm.DB,
	log *logger.Logger,
	cfg ProgressionConfig,
	statusRepo repos.ProgressionStatusRepo,
	completionRepo repos.CompletionRecordRepo,
) CompletionService {
	serviceLog := log.With("service", "CompletionService")
	return &completionService{
		db:             db,
		log:            serviceLog,
		cfg:            cfg,
		statusRepo:     statusRepo,
		completionRepo: completionRepo,
		now:            func() time.Time { return time.Now().UTC() },
		transact: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

// CompleteWeek records a submission for the user's current week. The insert
// and the accelerated advance run in one transaction; the unique completion
// index is the guard against duplicate concurrent submissions, so a losing
// racer gets the week-already-completed conflict instead of a double advance.
func (s *completionService) CompleteWeek(ctx context.Context, userID, contestID uuid.UUID, weekNumber int, sub CompletionSubmission) (*CompletionResult, error) {
	status, err := s.statusRepo.GetOrCreate(ctx, nil, userID, contestID, s.cfg.UnlockPolicy, s.cfg.WeekDuration)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}

	if weekNumber != status.CurrentWeekNumber {
		return nil, apierr.Newf(apierr.CodeInvalidWeekOrder,
			"semana %d nao corresponde a semana atual %d", weekNumber, status.CurrentWeekNumber).
			WithDetails(map[string]interface{}{
				"semana_enviada": weekNumber,
				"semana_atual":   status.CurrentWeekNumber,
			})
	}

	exists, err := s.completionRepo.Exists(ctx, nil, userID, contestID, weekNumber)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if exists {
		return nil, apierr.Newf(apierr.CodeWeekAlreadyCompleted,
			"semana %d ja concluida", weekNumber)
	}

	record, err := s.buildRecord(userID, contestID, weekNumber, sub)
	if err != nil {
		return nil, err
	}

	err = s.transact(ctx, func(tx *gorm.DB) error {
		if err := s.completionRepo.Create(ctx, tx, record); err != nil {
			return err
		}
		if status.UnlockPolicy == types.UnlockPolicyAccelerated {
			return s.statusRepo.AdvanceAccelerated(ctx, tx, userID, contestID, status.CurrentWeekNumber, s.cfg.WeekDuration)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Newf(apierr.CodeWeekAlreadyCompleted,
				"semana %d ja concluida", weekNumber)
		}
		return nil, apierr.New(apierr.CodeDatabase, err)
	}

	result := &CompletionResult{UnlockPolicy: status.UnlockPolicy}
	if status.UnlockPolicy == types.UnlockPolicyAccelerated {
		next := status.CurrentWeekNumber + 1
		result.NextWeek = &next
		result.Advanced = true
	}

	s.log.Info("Week completed",
		"user_id", userID.String(),
		"contest_id", contestID.String(),
		"week", weekNumber,
		"score", record.Score,
		"advanced", result.Advanced)
	return result, nil
}

func (s *completionService) GetHistory(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
	records, next, err := s.completionRepo.ListByUserAndContest(ctx, nil, userID, contestID, cursor, limit)
	if err != nil {
		if errors.Is(err, repos.ErrBadCursor) {
			return nil, "", apierr.New(apierr.CodeValidationError, err)
		}
		return nil, "", apierr.New(apierr.CodeDatabase, err)
	}
	return records, next, nil
}

func (s *completionService) buildRecord(userID, contestID uuid.UUID, weekNumber int, sub CompletionSubmission) (*types.CompletionRecord, error) {
	answers := sub.Answers
	if answers == nil {
		answers = []types.CompletionAnswer{}
	}
	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return nil, apierr.New(apierr.CodeValidationError, err)
	}
	return &types.CompletionRecord{
		UserID:           userID,
		ContestID:        contestID,
		WeekNumber:       weekNumber,
		CompletedAt:      s.now(),
		Score:            sub.Score,
		TotalQuestions:   len(answers),
		Answers:          rawAnswers,
		TimeSpentMinutes: sub.TimeSpentMinutes,
		Notes:            sub.Notes,
	}, nil
}
