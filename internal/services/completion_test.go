package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

func newCompletionServiceForTest(t *testing.T, cfg ProgressionConfig, statusRepo *fakeStatusRepo, completionRepo *fakeCompletionRepo) *completionService {
	t.Helper()
	svc := NewCompletionService(nil, testLogger(t), cfg, statusRepo, completionRepo).(*completionService)
	svc.transact = func(ctx context.Context, fn func(tx *gorm.DB) error) error {
		return fn(nil)
	}
	return svc
}

func acceleratedCfg() ProgressionConfig {
	return ProgressionConfig{
		UnlockPolicy:          types.UnlockPolicyAccelerated,
		WeekDuration:          7 * 24 * time.Hour,
		MaxConcurrentAdvances: 5,
	}
}

func strictCfg() ProgressionConfig {
	return ProgressionConfig{
		UnlockPolicy:          types.UnlockPolicyStrict,
		WeekDuration:          7 * 24 * time.Hour,
		MaxConcurrentAdvances: 5,
	}
}

func statusForPolicy(week int, policy string) *types.ProgressionStatus {
	now := time.Now().UTC()
	return &types.ProgressionStatus{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		ContestID:         uuid.New(),
		CurrentWeekNumber: week,
		WindowStart:       now,
		WindowEnd:         now.Add(7 * 24 * time.Hour),
		UnlockPolicy:      policy,
	}
}

func TestCompleteWeek_OutOfOrderPersistsNothing(t *testing.T) {
	status := statusForPolicy(3, types.UnlockPolicyStrict)
	created := false

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			created = true
			return nil
		},
	}

	svc := newCompletionServiceForTest(t, strictCfg(), statusRepo, completionRepo)
	_, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 5, CompletionSubmission{Score: 80})
	if err == nil {
		t.Fatalf("expected error for out-of-order completion")
	}
	ae := apierr.From(err)
	if ae.Code != apierr.CodeInvalidWeekOrder {
		t.Fatalf("code = %q, want %q", ae.Code, apierr.CodeInvalidWeekOrder)
	}
	if ae.Status != 400 {
		t.Fatalf("status = %d, want 400", ae.Status)
	}
	if created {
		t.Fatalf("record persisted despite invalid week order")
	}
}

func TestCompleteWeek_DuplicateYieldsConflict(t *testing.T) {
	status := statusForPolicy(2, types.UnlockPolicyStrict)

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			t.Fatalf("create called for an already-completed week")
			return nil
		},
	}

	svc := newCompletionServiceForTest(t, strictCfg(), statusRepo, completionRepo)
	_, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 2, CompletionSubmission{Score: 70})
	ae := apierr.From(err)
	if ae.Code != apierr.CodeWeekAlreadyCompleted {
		t.Fatalf("code = %q, want %q", ae.Code, apierr.CodeWeekAlreadyCompleted)
	}
	if ae.Status != 409 {
		t.Fatalf("status = %d, want 409", ae.Status)
	}
}

func TestCompleteWeek_DuplicateKeyFromInsertIsAuthoritative(t *testing.T) {
	// Two racers can pass the Exists check; the unique index decides.
	status := statusForPolicy(2, types.UnlockPolicyAccelerated)

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
		advanceAccelFn: func(ctx context.Context, userID, contestID uuid.UUID, week int, d time.Duration) error {
			t.Fatalf("advance must not run when the insert lost the race")
			return nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			return gorm.ErrDuplicatedKey
		},
	}

	svc := newCompletionServiceForTest(t, acceleratedCfg(), statusRepo, completionRepo)
	_, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 2, CompletionSubmission{Score: 50})
	ae := apierr.From(err)
	if ae.Code != apierr.CodeWeekAlreadyCompleted {
		t.Fatalf("code = %q, want %q", ae.Code, apierr.CodeWeekAlreadyCompleted)
	}
}

func TestCompleteWeek_AcceleratedAdvancesImmediately(t *testing.T) {
	status := statusForPolicy(3, types.UnlockPolicyAccelerated)
	var savedRecord *types.CompletionRecord
	advanced := false

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
		advanceAccelFn: func(ctx context.Context, userID, contestID uuid.UUID, week int, d time.Duration) error {
			if week != 3 {
				t.Fatalf("advance called with week %d, want 3", week)
			}
			advanced = true
			return nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			savedRecord = row
			return nil
		},
	}

	svc := newCompletionServiceForTest(t, acceleratedCfg(), statusRepo, completionRepo)
	minutes := 35
	result, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 3, CompletionSubmission{
		Score:            85,
		TimeSpentMinutes: &minutes,
		Answers: []types.CompletionAnswer{
			{QuestionID: uuid.New(), ChosenOption: "B"},
			{QuestionID: uuid.New(), ChosenOption: "D"},
		},
	})
	if err != nil {
		t.Fatalf("CompleteWeek: %v", err)
	}
	if !advanced {
		t.Fatalf("accelerated completion did not advance")
	}
	if !result.Advanced {
		t.Fatalf("result.Advanced = false, want true")
	}
	if result.NextWeek == nil || *result.NextWeek != 4 {
		t.Fatalf("result.NextWeek = %v, want 4", result.NextWeek)
	}
	if result.UnlockPolicy != types.UnlockPolicyAccelerated {
		t.Fatalf("result.UnlockPolicy = %q", result.UnlockPolicy)
	}

	if savedRecord == nil {
		t.Fatalf("no record persisted")
	}
	if savedRecord.Score != 85 || savedRecord.WeekNumber != 3 || savedRecord.TotalQuestions != 2 {
		t.Fatalf("record = %+v", savedRecord)
	}
}

func TestCompleteWeek_StrictDoesNotAdvanceSynchronously(t *testing.T) {
	status := statusForPolicy(1, types.UnlockPolicyStrict)

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
		advanceAccelFn: func(ctx context.Context, userID, contestID uuid.UUID, week int, d time.Duration) error {
			t.Fatalf("strict completion must not advance synchronously")
			return nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			return nil
		},
	}

	svc := newCompletionServiceForTest(t, strictCfg(), statusRepo, completionRepo)
	result, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 1, CompletionSubmission{Score: 90})
	if err != nil {
		t.Fatalf("CompleteWeek: %v", err)
	}
	if result.Advanced {
		t.Fatalf("strict result.Advanced = true")
	}
	if result.NextWeek != nil {
		t.Fatalf("strict result.NextWeek = %v, want nil", result.NextWeek)
	}
}

func TestCompleteWeek_DefaultsEmptySubmission(t *testing.T) {
	status := statusForPolicy(1, types.UnlockPolicyStrict)
	var savedRecord *types.CompletionRecord

	statusRepo := &fakeStatusRepo{
		getOrCreateFn: func(ctx context.Context, userID, contestID uuid.UUID, policy string, d time.Duration) (*types.ProgressionStatus, error) {
			return status, nil
		},
	}
	completionRepo := &fakeCompletionRepo{
		existsFn: func(ctx context.Context, userID, contestID uuid.UUID, week int) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, row *types.CompletionRecord) error {
			savedRecord = row
			return nil
		},
	}

	svc := newCompletionServiceForTest(t, strictCfg(), statusRepo, completionRepo)
	if _, err := svc.CompleteWeek(context.Background(), status.UserID, status.ContestID, 1, CompletionSubmission{}); err != nil {
		t.Fatalf("CompleteWeek: %v", err)
	}
	if savedRecord.Score != 0 || savedRecord.TotalQuestions != 0 {
		t.Fatalf("defaults not applied: %+v", savedRecord)
	}
	var answers []types.CompletionAnswer
	if err := json.Unmarshal(savedRecord.Answers, &answers); err != nil {
		t.Fatalf("answers column not valid json: %v", err)
	}
	if len(answers) != 0 {
		t.Fatalf("answers = %v, want empty list", answers)
	}
}

func TestGetHistory_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"bad cursor is caller input", fmt.Errorf("%w: bad id", repos.ErrBadCursor), apierr.CodeValidationError},
		{"datastore failure", errors.New("db down"), apierr.CodeDatabase},
	}
	for _, tc := range cases {
		completionRepo := &fakeCompletionRepo{
			listFn: func(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
				return nil, "", tc.repoErr
			},
		}
		svc := newCompletionServiceForTest(t, strictCfg(), &fakeStatusRepo{}, completionRepo)

		_, _, err := svc.GetHistory(context.Background(), uuid.New(), uuid.New(), "whatever", 10)
		ae := apierr.From(err)
		if ae.Code != tc.wantCode {
			t.Errorf("%s: code = %q, want %q", tc.name, ae.Code, tc.wantCode)
		}
	}
}
