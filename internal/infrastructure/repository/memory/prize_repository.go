package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/esports-arena/internal/domain/prize"
)

type PrizeRepository struct {
	byKey sync.Map // prize key -> prize.Payout
}

func NewPrizeRepository() *PrizeRepository {
	return &PrizeRepository{}
}

func (r *PrizeRepository) Create(_ context.Context, payout prize.Payout) error {
	if _, loaded := r.byKey.LoadOrStore(payout.PrizeKey, payout); loaded {
		return prize.ErrDuplicatePayout
	}
	return nil
}

func (r *PrizeRepository) GetByKey(_ context.Context, prizeKey string) (prize.Payout, bool, error) {
	v, ok := r.byKey.Load(prizeKey)
	if !ok {
		return prize.Payout{}, false, nil
	}
	return v.(prize.Payout), true, nil
}

func (r *PrizeRepository) ListByMatch(_ context.Context, matchID string) ([]prize.Payout, error) {
	out := make([]prize.Payout, 0)
	r.byKey.Range(func(_, v any) bool {
		if p := v.(prize.Payout); p.MatchID == matchID {
			out = append(out, p)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
