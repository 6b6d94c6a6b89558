package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
)

type groupState struct {
	team  team.Team
	slots []team.Slot
}

// matchState holds everything scoped to one match. Its mutex is the only
// lock taken by match and team operations, so unrelated matches never
// serialize.
type matchState struct {
	mu      sync.Mutex
	match   match.Match
	joins   map[string]match.Join
	groups  map[int]*groupState
	members map[string]team.Member
}

func newMatchState(m match.Match) *matchState {
	return &matchState{
		match:   m,
		joins:   make(map[string]match.Join),
		groups:  make(map[int]*groupState),
		members: make(map[string]team.Member),
	}
}

func (st *matchState) gridInUse() bool {
	return st.match.JoinedCount > 0 || len(st.groups) > 0 || len(st.members) > 0
}

type MatchRepository struct {
	states sync.Map // match id -> *matchState
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{}
}

func (r *MatchRepository) state(matchID string) (*matchState, bool) {
	existing, ok := r.states.Load(matchID)
	if !ok {
		return nil, false
	}
	return existing.(*matchState), true
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	st, ok := r.state(matchID)
	if !ok {
		return match.Match{}, false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.match, true, nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) (match.Match, error) {
	fresh := m
	fresh.JoinedCount = 0
	actual, loaded := r.states.LoadOrStore(m.ID, newMatchState(fresh))
	st := actual.(*matchState)
	if !loaded {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.match, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if m.Capacity < st.match.JoinedCount {
		return match.Match{}, match.ErrCapacityBelowJoined
	}
	if st.gridInUse() && m.Mode != st.match.Mode {
		return match.Match{}, match.ErrGridInUse
	}
	for groupNo := range st.groups {
		if groupNo > m.GroupCount() {
			return match.Match{}, match.ErrGridInUse
		}
	}
	m.JoinedCount = st.match.JoinedCount
	m.CreatedAt = st.match.CreatedAt
	st.match = m
	return st.match, nil
}

func (r *MatchRepository) SetLocked(_ context.Context, matchID string, locked bool) (match.Match, error) {
	st, ok := r.state(matchID)
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.match.IsLocked = locked
	return st.match, nil
}

func (r *MatchRepository) TryReserveSeat(_ context.Context, matchID string) (match.Match, error) {
	st, ok := r.state(matchID)
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	switch {
	case st.match.IsLocked:
		return match.Match{}, match.ErrMatchLocked
	case st.match.JoinedCount >= st.match.Capacity:
		return match.Match{}, match.ErrMatchFull
	}
	st.match.JoinedCount++
	return st.match, nil
}

func (r *MatchRepository) ReleaseSeat(_ context.Context, matchID string) error {
	st, ok := r.state(matchID)
	if !ok {
		return match.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.match.JoinedCount > 0 {
		st.match.JoinedCount--
	}
	return nil
}

func (r *MatchRepository) GetJoin(_ context.Context, matchID, userID string) (match.Join, bool, error) {
	st, ok := r.state(matchID)
	if !ok {
		return match.Join{}, false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	j, found := st.joins[userID]
	return j, found, nil
}

func (r *MatchRepository) CreateJoin(_ context.Context, join match.Join) error {
	st, ok := r.state(join.MatchID)
	if !ok {
		return match.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.joins[join.UserID]; exists {
		return match.ErrAlreadyJoined
	}
	st.joins[join.UserID] = join
	return nil
}

func (r *MatchRepository) ListJoins(_ context.Context, matchID string) ([]match.Join, error) {
	st, ok := r.state(matchID)
	if !ok {
		return []match.Join{}, nil
	}
	st.mu.Lock()
	out := make([]match.Join, 0, len(st.joins))
	for _, j := range st.joins {
		out = append(out, j)
	}
	st.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
