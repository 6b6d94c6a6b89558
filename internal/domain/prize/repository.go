package prize

import (
	"context"
	"errors"
)

var ErrDuplicatePayout = errors.New("prize: duplicate payout key")

type Repository interface {
	// Create fails with ErrDuplicatePayout when the prize key already exists.
	Create(ctx context.Context, payout Payout) error
	GetByKey(ctx context.Context, prizeKey string) (Payout, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Payout, error)
}
