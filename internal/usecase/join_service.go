package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

type JoinState string

const (
	JoinStateRequested     JoinState = "requested"
	JoinStateLockChecked   JoinState = "lock_checked"
	JoinStateSeatReserved  JoinState = "seat_reserved"
	JoinStateWalletDebited JoinState = "wallet_debited"
	JoinStateTeamAssigned  JoinState = "team_assigned"
	JoinStateCommitted     JoinState = "committed"
	JoinStateRolledBack    JoinState = "rolled_back"
)

const matchRefPrefix = "match:"

// JoinResult.Balance is the balance after the fee debit, zero for free matches.
type JoinResult struct {
	MatchID     string
	UserID      string
	Fee         decimal.Decimal
	Balance     decimal.Decimal
	JoinedCount int
	Team        *team.Team
	State       JoinState
}

type seatAllocator interface {
	TryReserveSeat(ctx context.Context, matchID string) (match.Match, error)
	ReleaseSeat(ctx context.Context, matchID string) error
}

type walletMover interface {
	Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error)
	Refund(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error)
}

type membershipGrid interface {
	EnsureMembership(ctx context.Context, m match.Match, userID string) (team.Team, bool, error)
	RemoveMembership(ctx context.Context, matchID, userID string) error
}

// JoinService runs the join state machine. Each step after the lock check
// registers a compensation; any failure runs them in reverse before the
// error is returned.
type JoinService struct {
	matches match.Repository
	seats   seatAllocator
	wallets walletMover
	grid    membershipGrid
	alerts  alert.Notifier
	logger  *logging.Logger
	now     func() time.Time

	// One join per match and user runs at a time in this process.
	inflight singleflight.Group
}

func NewJoinService(
	matches match.Repository,
	seats seatAllocator,
	wallets walletMover,
	grid membershipGrid,
	alerts alert.Notifier,
	logger *logging.Logger,
) *JoinService {
	if logger == nil {
		logger = logging.Default()
	}
	return &JoinService{
		matches: matches,
		seats:   seats,
		wallets: wallets,
		grid:    grid,
		alerts:  alerts,
		logger:  logger.Named("join"),
		now:     time.Now,
	}
}

type compensation struct {
	name string
	run  func(ctx context.Context) error
}

type joinRun struct {
	matchID string
	userID  string
	state   JoinState
	undo    []compensation
}

func (r *joinRun) advance(state JoinState, undo *compensation) {
	r.state = state
	if undo != nil {
		r.undo = append(r.undo, *undo)
	}
}

func (s *JoinService) JoinMatch(ctx context.Context, matchID, userID string) (result JoinResult, err error) {
	matchID = strings.TrimSpace(matchID)
	userID = strings.TrimSpace(userID)
	ctx, span := startUsecaseSpan(ctx, "usecase.JoinService.JoinMatch", attribute.String("match.id", matchID))
	defer func() { endSpan(span, err) }()

	if matchID == "" {
		return JoinResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if userID == "" {
		return JoinResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	// Callers that piggyback on an in-flight join did not join themselves.
	ran := false
	v, err, _ := s.inflight.Do(matchID+"\x00"+userID, func() (any, error) {
		ran = true
		return s.join(ctx, matchID, userID)
	})
	if !ran {
		if err != nil {
			return JoinResult{}, err
		}
		return JoinResult{}, fmt.Errorf("%w: user %s already joined match %s", ErrAlreadyJoined, userID, matchID)
	}
	if err != nil {
		return JoinResult{}, err
	}
	return v.(JoinResult), nil
}

func (s *JoinService) join(ctx context.Context, matchID, userID string) (JoinResult, error) {
	run := &joinRun{matchID: matchID, userID: userID, state: JoinStateRequested}

	if _, joined, err := s.matches.GetJoin(ctx, matchID, userID); err != nil {
		return JoinResult{}, storageFailure("get join", err)
	} else if joined {
		return JoinResult{}, fmt.Errorf("%w: user %s already joined match %s", ErrAlreadyJoined, userID, matchID)
	}

	m, found, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return JoinResult{}, storageFailure("get match", err)
	}
	if !found {
		return JoinResult{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if m.IsLocked {
		return JoinResult{}, fmt.Errorf("%w: match %s", ErrMatchLocked, matchID)
	}
	run.advance(JoinStateLockChecked, nil)

	// Past this point a caller timeout must not leave a half-applied join.
	work := context.WithoutCancel(ctx)

	reserved, err := s.seats.TryReserveSeat(work, matchID)
	if err != nil {
		return JoinResult{}, err
	}
	run.advance(JoinStateSeatReserved, &compensation{
		name: "release_seat",
		run:  func(ctx context.Context) error { return s.seats.ReleaseSeat(ctx, matchID) },
	})

	fee := reserved.EntryFee
	balance := decimal.Zero
	var debitEntryID string
	if fee.IsPositive() {
		debit, err := s.wallets.Debit(work, userID, fee, matchRefPrefix+matchID)
		if err != nil {
			return JoinResult{}, s.rollback(work, run, err)
		}
		balance = debit.Balance
		debitEntryID = debit.Entry.ID
		run.advance(JoinStateWalletDebited, &compensation{
			name: "refund_fee",
			run: func(ctx context.Context) error {
				_, err := s.wallets.Refund(ctx, userID, fee, matchRefPrefix+matchID)
				return err
			},
		})
	} else {
		run.advance(JoinStateWalletDebited, nil)
	}

	var assigned *team.Team
	if reserved.Mode.IsTeamMode() {
		t, created, err := s.grid.EnsureMembership(work, reserved, userID)
		if err != nil {
			return JoinResult{}, s.rollback(work, run, err)
		}
		if !created {
			// A concurrent join for the same user got here first.
			return JoinResult{}, s.rollback(work, run, fmt.Errorf("%w: user %s already joined match %s", ErrAlreadyJoined, userID, matchID))
		}
		assigned = &t
		run.advance(JoinStateTeamAssigned, &compensation{
			name: "remove_membership",
			run:  func(ctx context.Context) error { return s.grid.RemoveMembership(ctx, matchID, userID) },
		})
	}

	join := match.Join{
		MatchID:      matchID,
		UserID:       userID,
		Fee:          fee,
		DebitEntryID: debitEntryID,
		CreatedAt:    s.now().UTC(),
	}
	if assigned != nil {
		join.TeamID = assigned.ID
		join.GroupNo = assigned.GroupNo
	}
	if err := s.matches.CreateJoin(work, join); err != nil {
		if errors.Is(err, match.ErrAlreadyJoined) {
			err = fmt.Errorf("%w: user %s already joined match %s", ErrAlreadyJoined, userID, matchID)
		} else {
			err = storageFailure("create join", err)
		}
		return JoinResult{}, s.rollback(work, run, err)
	}
	run.advance(JoinStateCommitted, nil)

	s.logger.InfoContext(ctx, "match joined",
		"match_id", matchID,
		"user_id", userID,
		"fee", fee,
		"joined_count", reserved.JoinedCount,
	)

	return JoinResult{
		MatchID:     matchID,
		UserID:      userID,
		Fee:         fee,
		Balance:     balance,
		JoinedCount: reserved.JoinedCount,
		Team:        assigned,
		State:       run.state,
	}, nil
}

// rollback unwinds completed steps in reverse and returns cause, or a ledger
// inconsistency when a compensation itself fails.
func (s *JoinService) rollback(ctx context.Context, run *joinRun, cause error) error {
	failedAt := run.state
	var failures []error
	for i := len(run.undo) - 1; i >= 0; i-- {
		step := run.undo[i]
		if err := step.run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "join compensation failed",
				"match_id", run.matchID,
				"user_id", run.userID,
				"step", step.name,
				"error", err,
			)
			failures = append(failures, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	run.state = JoinStateRolledBack

	if len(failures) == 0 {
		if IsBusinessError(cause) {
			s.logger.WarnContext(ctx, "join rolled back", "match_id", run.matchID, "user_id", run.userID, "failed_after", failedAt, "reason", cause)
		} else {
			s.logger.ErrorContext(ctx, "join rolled back", "match_id", run.matchID, "user_id", run.userID, "failed_after", failedAt, "error", cause)
		}
		return cause
	}

	inconsistency := ledgerInconsistency(errors.Join(append([]error{cause}, failures...)...),
		"join rollback incomplete for match %s user %s after %s", run.matchID, run.userID, failedAt)
	raiseAlert(ctx, s.logger, s.alerts, alert.Alert{
		Kind:     alert.KindJoinRollbackFailed,
		Severity: alert.SeverityCritical,
		Message:  "join rollback incomplete; user may be debited without a seat",
		Attributes: map[string]string{
			"match_id":     run.matchID,
			"user_id":      run.userID,
			"failed_after": string(failedAt),
			"error":        inconsistency.Error(),
		},
		OccurredAt: s.now().UTC(),
	})
	return inconsistency
}
