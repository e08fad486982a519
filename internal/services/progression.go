package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

// roadmapLookahead bounds how many locked weeks past the current one the
// roadmap projects.
const roadmapLookahead = 4

// batchAdvanceLimit bounds how many expired records one catch-up pass loads.
// The concurrency cap bounds in-flight advances, not the pass size; records
// beyond this limit are picked up on the next tick.
const batchAdvanceLimit = 1000

type CurrentWeekInfo struct {
	WeekNumber      int       `json:"numero_semana"`
	WindowStart     time.Time `json:"janela_inicio"`
	WindowEnd       time.Time `json:"janela_fim"`
	UnlockPolicy    string    `json:"modo_desbloqueio"`
	CanAdvance      bool      `json:"pode_avancar"`
	RemainingMillis *int64    `json:"millis_restantes,omitempty"`
}

const (
	RoadmapStatusCompleted = "completed"
	RoadmapStatusCurrent   = "current"
	RoadmapStatusLocked    = "locked"
)

type RoadmapEntry struct {
	WeekNumber int        `json:"numero_semana"`
	Status     string     `json:"status"`
	UnlocksAt  *time.Time `json:"desbloqueia_em,omitempty"`
}

type RoadmapStats struct {
	WeeksCompleted int `json:"semanas_concluidas"`
	CurrentWeek    int `json:"semana_atual"`
}

type Roadmap struct {
	Entries []RoadmapEntry `json:"semanas"`
	Stats   *RoadmapStats  `json:"estatisticas,omitempty"`
}

// AdvanceReport tallies one batch catch-up pass. Errors counts isolated
// per-record failures; they never abort the cohort.
type AdvanceReport struct {
	Processed int `json:"processed"`
	Advanced  int `json:"advanced"`
	Errors    int `json:"errors"`
}

type ProgressionService interface {
	GetOrCreateStatus(ctx context.Context, userID, contestID uuid.UUID) (*types.ProgressionStatus, error)
	CanAdvance(ctx context.Context, userID, contestID uuid.UUID) (bool, error)
	GetCurrentWeekInfo(ctx context.Context, userID, contestID uuid.UUID) (*CurrentWeekInfo, error)
	GetRoadmap(ctx context.Context, userID, contestID uuid.UUID, includeStats bool) (*Roadmap, error)
	ProcessAutomaticAdvances(ctx context.Context) (AdvanceReport, error)
}

type ProgressionConfig struct {
	UnlockPolicy          string
	WeekDuration          time.Duration
	MaxConcurrentAdvances int
}

type progressionService struct {
	db             *gorm.DB
	log            *logger.Logger
	cfg            ProgressionConfig
	statusRepo     repos.ProgressionStatusRepo
	completionRepo repos.CompletionRecordRepo
	now            func() time.Time
}

func NewProgressionService(
	db *gorm.DB,
	log *logger.Logger,
	cfg ProgressionConfig,
	statusRepo repos.ProgressionStatusRepo,
	completionRepo repos.CompletionRecordRepo,
) ProgressionService {
	serviceLog := log.With("service", "ProgressionService")
	return &progressionService{
		db:             db,
		log:            serviceLog,
		cfg:            cfg,
		statusRepo:     statusRepo,
		completionRepo: completionRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressionService) GetOrCreateStatus(ctx context.Context, userID, contestID uuid.UUID) (*types.ProgressionStatus, error) {
	status, err := s.statusRepo.GetOrCreate(ctx, nil, userID, contestID, s.cfg.UnlockPolicy, s.cfg.WeekDuration)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	return status, nil
}

func (s *progressionService) CanAdvance(ctx context.Context, userID, contestID uuid.UUID) (bool, error) {
	status, err := s.GetOrCreateStatus(ctx, userID, contestID)
	if err != nil {
		return false, err
	}
	return canAdvanceAt(status, s.now()), nil
}

func (s *progressionService) GetCurrentWeekInfo(ctx context.Context, userID, contestID uuid.UUID) (*CurrentWeekInfo, error) {
	status, err := s.GetOrCreateStatus(ctx, userID, contestID)
	if err != nil {
		return nil, err
	}
	return weekInfoAt(status, s.now()), nil
}

func (s *progressionService) GetRoadmap(ctx context.Context, userID, contestID uuid.UUID, includeStats bool) (*Roadmap, error) {
	status, err := s.GetOrCreateStatus(ctx, userID, contestID)
	if err != nil {
		return nil, err
	}
	completedWeeks, err := s.completionRepo.ListWeekNumbers(ctx, nil, userID, contestID)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}

	roadmap := &Roadmap{
		Entries: roadmapEntriesAt(status, completedWeeks, s.cfg.WeekDuration),
	}
	if includeStats {
		roadmap.Stats = &RoadmapStats{
			WeeksCompleted: len(completedWeeks),
			CurrentWeek:    status.CurrentWeekNumber,
		}
	}
	return roadmap, nil
}

// ProcessAutomaticAdvances advances every strict-mode record whose window has
// expired. The fan-out is capped by a weighted semaphore; each record's
// outcome is tallied independently so one failure never stops the rest.
func (s *progressionService) ProcessAutomaticAdvances(ctx context.Context) (AdvanceReport, error) {
	expired, err := s.statusRepo.ListExpiredStrict(ctx, nil, batchAdvanceLimit)
	if err != nil {
		return AdvanceReport{}, apierr.New(apierr.CodeDatabase, err)
	}
	if len(expired) == 0 {
		return AdvanceReport{}, nil
	}

	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrentAdvances))
	var wg sync.WaitGroup
	var advanced, failed int64

	for _, status := range expired {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(st *types.ProgressionStatus) {
			defer wg.Done()
			defer sem.Release(1)
			ok, err := s.statusRepo.AdvanceStrict(ctx, nil, st.UserID, st.ContestID, s.cfg.WeekDuration)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				s.log.Error("Automatic advance failed",
					"user_id", st.UserID.String(),
					"contest_id", st.ContestID.String(),
					"week", st.CurrentWeekNumber,
					"error", err)
				return
			}
			if ok {
				atomic.AddInt64(&advanced, 1)
			}
		}(status)
	}
	wg.Wait()

	report := AdvanceReport{
		Processed: len(expired),
		Advanced:  int(atomic.LoadInt64(&advanced)),
		Errors:    int(atomic.LoadInt64(&failed)),
	}
	return report, nil
}

// canAdvanceAt is true unconditionally for accelerated statuses; strict
// statuses can only advance once their window has expired.
func canAdvanceAt(status *types.ProgressionStatus, now time.Time) bool {
	if status.UnlockPolicy == types.UnlockPolicyAccelerated {
		return true
	}
	return !now.Before(status.WindowEnd)
}

// weekInfoAt computes the current-week facts. RemainingMillis is only present
// for strict statuses still inside their window.
func weekInfoAt(status *types.ProgressionStatus, now time.Time) *CurrentWeekInfo {
	info := &CurrentWeekInfo{
		WeekNumber:   status.CurrentWeekNumber,
		WindowStart:  status.WindowStart,
		WindowEnd:    status.WindowEnd,
		UnlockPolicy: status.UnlockPolicy,
		CanAdvance:   canAdvanceAt(status, now),
	}
	if status.UnlockPolicy == types.UnlockPolicyStrict && now.Before(status.WindowEnd) {
		remaining := status.WindowEnd.Sub(now).Milliseconds()
		info.RemainingMillis = &remaining
	}
	return info
}

// roadmapEntriesAt classifies weeks 1..currentWeek+lookahead. Locked strict
// weeks carry the projected unlock time: the current window's end, plus one
// full duration per additional week of lookahead.
func roadmapEntriesAt(status *types.ProgressionStatus, completedWeeks []int, weekDuration time.Duration) []RoadmapEntry {
	completed := make(map[int]bool, len(completedWeeks))
	for _, w := range completedWeeks {
		completed[w] = true
	}

	last := status.CurrentWeekNumber + roadmapLookahead
	entries := make([]RoadmapEntry, 0, last)
	for week := 1; week <= last; week++ {
		entry := RoadmapEntry{WeekNumber: week}
		switch {
		case completed[week]:
			entry.Status = RoadmapStatusCompleted
		case week == status.CurrentWeekNumber:
			entry.Status = RoadmapStatusCurrent
		case week < status.CurrentWeekNumber:
			// Advanced past without a completion record (strict expiry).
			entry.Status = RoadmapStatusCompleted
		default:
			entry.Status = RoadmapStatusLocked
			if status.UnlockPolicy == types.UnlockPolicyStrict {
				unlocksAt := status.WindowEnd.Add(time.Duration(week-status.CurrentWeekNumber-1) * weekDuration)
				entry.UnlocksAt = &unlocksAt
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
