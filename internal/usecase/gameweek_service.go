package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

const (
	defaultRolloverWorkers = 8
	maxRolloverWorkers     = 64

	rolloverStatusSuccess = "success"
	rolloverStatusFailed  = "failed"
)

type RolloverInput struct {
	MaxWorkers int
}

type RolloverResult struct {
	UserCount    int                  `json:"user_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	WorkerCount  int                  `json:"worker_count"`
	Users        []RolloverUserResult `json:"users"`
}

type RolloverUserResult struct {
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GameweekService runs the start-of-week rollover: every user's free
// transfer allowance is restored and week points are zeroed. Rosters,
// lineups and captains survive rollover untouched.
type GameweekService struct {
	userRepo roster.Repository
	logger   *logging.Logger
}

func NewGameweekService(userRepo roster.Repository, logger *logging.Logger) *GameweekService {
	if logger == nil {
		logger = logging.Default()
	}

	return &GameweekService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *GameweekService) Rollover(ctx context.Context, input RolloverInput) (RolloverResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameweekService.Rollover")
	defer span.End()

	userIDs, err := s.userRepo.ListUserIDs(ctx)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("%w: list users for rollover: %v", ErrDependencyUnavailable, err)
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultRolloverWorkers
	}
	if workerCount > maxRolloverWorkers {
		workerCount = maxRolloverWorkers
	}
	if workerCount > len(userIDs) && len(userIDs) > 0 {
		workerCount = len(userIDs)
	}

	result := RolloverResult{
		UserCount:   len(userIDs),
		WorkerCount: workerCount,
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	rows := make(chan RolloverUserResult, len(userIDs))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("create rollover worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := RolloverUserResult{UserID: userID, Status: rolloverStatusSuccess}
			if err := s.rolloverUser(ctx, userID); err != nil {
				row.Status = rolloverStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			} else {
				successCount.Add(1)
			}
			rows <- row
		}); err != nil {
			workers.Done()
			return RolloverResult{}, fmt.Errorf("submit rollover task: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Users = append(result.Users, row)
	}
	sort.SliceStable(result.Users, func(i, j int) bool {
		return result.Users[i].UserID < result.Users[j].UserID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "gameweek rollover finished",
		"user_count", result.UserCount,
		"success_count", result.SuccessCount,
		"failed_count", result.FailedCount,
	)

	return result, nil
}

func (s *GameweekService) rolloverUser(ctx context.Context, userID string) error {
	for attempt := 0; attempt < defaultCommitRetries; attempt++ {
		user, version, exists, err := s.userRepo.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if !exists {
			return nil
		}

		user.FreeTransfers = roster.InitialFreeTransfer
		user.WeekPoints = 0
		user.UpdatedAt = time.Now().UTC()

		err = s.userRepo.Save(ctx, user, version)
		if err == nil {
			return nil
		}
		if errors.Is(err, roster.ErrVersionConflict) {
			continue
		}
		return fmt.Errorf("save user: %w", err)
	}

	return fmt.Errorf("%w: rollover for user %s", ErrConflict, userID)
}
