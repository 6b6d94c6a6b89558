package cache

import (
	"context"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	basecache "github.com/riskibarqy/esports-arena/internal/platform/cache"
)

// MatchRepository caches match metadata reads. Every write that can change
// the row drops its key. Seat and lock checks still run against next.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, matchKey(matchID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) (match.Match, error) {
	defer r.cache.Delete(ctx, matchKey(m.ID))
	return r.next.Upsert(ctx, m)
}

func (r *MatchRepository) SetLocked(ctx context.Context, matchID string, locked bool) (match.Match, error) {
	defer r.cache.Delete(ctx, matchKey(matchID))
	return r.next.SetLocked(ctx, matchID, locked)
}

func (r *MatchRepository) TryReserveSeat(ctx context.Context, matchID string) (match.Match, error) {
	defer r.cache.Delete(ctx, matchKey(matchID))
	return r.next.TryReserveSeat(ctx, matchID)
}

func (r *MatchRepository) ReleaseSeat(ctx context.Context, matchID string) error {
	defer r.cache.Delete(ctx, matchKey(matchID))
	return r.next.ReleaseSeat(ctx, matchID)
}

func (r *MatchRepository) GetJoin(ctx context.Context, matchID, userID string) (match.Join, bool, error) {
	return r.next.GetJoin(ctx, matchID, userID)
}

func (r *MatchRepository) CreateJoin(ctx context.Context, join match.Join) error {
	return r.next.CreateJoin(ctx, join)
}

func (r *MatchRepository) ListJoins(ctx context.Context, matchID string) ([]match.Join, error) {
	return r.next.ListJoins(ctx, matchID)
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

func matchKey(matchID string) string {
	return "match:id:" + matchID
}
