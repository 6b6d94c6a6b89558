package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
)

const defaultReconcileWorkers = 8

type ReconcileResult struct {
	Checked    int
	Failed     int
	Drifts     []wallet.Drift
	DurationMs int64
}

// ReconcileService verifies that every materialized wallet balance still
// equals the signed sum of its success entries.
type ReconcileService struct {
	wallets wallet.Repository
	alerts  alert.Notifier
	workers int
	logger  *logging.Logger
	now     func() time.Time
}

func NewReconcileService(wallets wallet.Repository, alerts alert.Notifier, workers int, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultReconcileWorkers
	}
	return &ReconcileService{
		wallets: wallets,
		alerts:  alerts,
		workers: workers,
		logger:  logger.Named("reconcile"),
		now:     time.Now,
	}
}

func (s *ReconcileService) ReconcileAll(ctx context.Context) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.ReconcileAll")
	defer span.End()

	start := s.now()
	userIDs, err := s.wallets.ListUserIDs(ctx)
	if err != nil {
		return ReconcileResult{}, storageFailure("list wallet users", err)
	}

	result := ReconcileResult{Checked: len(userIDs)}
	if len(userIDs) == 0 {
		return result, nil
	}

	workers := s.workers
	if workers > len(userIDs) {
		workers = len(userIDs)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	var stopErr error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			stopErr = fmt.Errorf("reconcile interrupted: %w", err)
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			drift, err := s.wallets.CheckDrift(ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.logger.WarnContext(ctx, "drift check failed", "user_id", userID, "error", err)
				return
			}
			if drift.Diverged() {
				result.Drifts = append(result.Drifts, drift)
			}
		}); err != nil {
			wg.Done()
			stopErr = fmt.Errorf("submit drift check: %w", err)
			break
		}
	}
	// Submitted checks still write to result.
	wg.Wait()
	if stopErr != nil {
		return ReconcileResult{}, stopErr
	}

	sort.Slice(result.Drifts, func(i, j int) bool {
		return result.Drifts[i].UserID < result.Drifts[j].UserID
	})
	for _, d := range result.Drifts {
		raiseAlert(ctx, s.logger, s.alerts, alert.Alert{
			Kind:     alert.KindLedgerDrift,
			Severity: alert.SeverityCritical,
			Message:  "wallet balance diverged from ledger",
			Attributes: map[string]string{
				"user_id":      d.UserID,
				"materialized": d.Materialized.String(),
				"ledger_sum":   d.LedgerSum.String(),
			},
			OccurredAt: s.now().UTC(),
		})
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	s.logger.InfoContext(ctx, "wallet reconciliation finished",
		"checked", result.Checked,
		"drifts", len(result.Drifts),
		"failed", result.Failed,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}
