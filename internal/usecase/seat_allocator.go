package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
)

// SeatAllocator guards joined_count against capacity and the lock flag.
type SeatAllocator struct {
	matches match.Repository
	logger  *logging.Logger
}

func NewSeatAllocator(matches match.Repository, logger *logging.Logger) *SeatAllocator {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeatAllocator{matches: matches, logger: logger.Named("seat_allocator")}
}

func (a *SeatAllocator) TryReserveSeat(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeatAllocator.TryReserveSeat")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, err := a.matches.TryReserveSeat(ctx, matchID)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, match.ErrMatchLocked):
		return match.Match{}, fmt.Errorf("%w: match %s", ErrMatchLocked, matchID)
	case errors.Is(err, match.ErrMatchFull):
		return match.Match{}, fmt.Errorf("%w: match %s", ErrMatchFull, matchID)
	case errors.Is(err, match.ErrNotFound):
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	default:
		return match.Match{}, storageFailure("reserve seat", err)
	}
}

// ReleaseSeat undoes a reservation. It is only called while rolling back a join.
func (a *SeatAllocator) ReleaseSeat(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeatAllocator.ReleaseSeat")
	defer span.End()

	if err := a.matches.ReleaseSeat(ctx, matchID); err != nil {
		a.logger.ErrorContext(ctx, "release seat failed", "match_id", matchID, "error", err)
		return storageFailure("release seat", err)
	}
	return nil
}
