package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/team"
)

// TeamRepository stores the grid inside the owning match's state so the
// lock flag and slot cells are read under the same per-match mutex.
type TeamRepository struct {
	matches *MatchRepository
	now     func() time.Time
}

func NewTeamRepository(matches *MatchRepository) *TeamRepository {
	return &TeamRepository{matches: matches, now: time.Now}
}

func (r *TeamRepository) EnsureMembership(_ context.Context, grid team.Grid, member team.Member) (team.Team, bool, error) {
	st, ok := r.matches.state(grid.MatchID)
	if !ok {
		return team.Team{}, false, team.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, found := st.members[member.UserID]; found {
		return r.ensureGroup(st, grid, existing.GroupNo).team, false, nil
	}

	counts := make(map[int]int, len(st.groups))
	for _, m := range st.members {
		counts[m.GroupNo]++
	}
	groupNo := 0
	for g := 1; g <= grid.GroupCount; g++ {
		if counts[g] < grid.TeamSize {
			groupNo = g
			break
		}
	}
	if groupNo == 0 {
		return team.Team{}, false, team.ErrGridFull
	}

	gs := r.ensureGroup(st, grid, groupNo)
	member.MatchID = grid.MatchID
	member.TeamID = gs.team.ID
	member.GroupNo = groupNo
	st.members[member.UserID] = member
	return gs.team, true, nil
}

func (r *TeamRepository) GetMembership(_ context.Context, matchID, userID string) (team.Member, bool, error) {
	st, ok := r.matches.state(matchID)
	if !ok {
		return team.Member{}, false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	m, found := st.members[userID]
	return m, found, nil
}

func (r *TeamRepository) RemoveMembership(_ context.Context, matchID, userID string) error {
	st, ok := r.matches.state(matchID)
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.members, userID)
	return nil
}

func (r *TeamRepository) ClaimSlot(_ context.Context, grid team.Grid, groupNo, slotNo int, userID string, display team.DisplayFields) (team.Team, error) {
	st, ok := r.matches.state(grid.MatchID)
	if !ok {
		return team.Team{}, team.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.match.IsLocked {
		return team.Team{}, team.ErrMatchLocked
	}
	member, isMember := st.members[userID]
	if !isMember {
		return team.Team{}, team.ErrNotMember
	}

	gs := r.ensureGroup(st, grid, groupNo)
	if slotNo < 1 || slotNo > len(gs.slots) {
		return team.Team{}, team.ErrNotFound
	}
	cell := &gs.slots[slotNo-1]
	if cell.Occupied() {
		return team.Team{}, team.ErrSlotTaken
	}
	for _, other := range st.groups {
		for _, s := range other.slots {
			if s.UserID == userID {
				return team.Team{}, team.ErrAlreadyInTeam
			}
		}
	}

	now := r.now().UTC()
	cell.UserID = userID
	cell.Username = display.Username
	cell.PlayerGameID = display.PlayerGameID
	cell.ClaimedAt = &now
	if !gs.team.HasLeader() {
		gs.team.LeaderUserID = userID
		gs.team.UpdatedAt = now
	}

	member.TeamID = gs.team.ID
	member.GroupNo = groupNo
	st.members[userID] = member
	return gs.team, nil
}

func (r *TeamRepository) RenameTeam(_ context.Context, matchID string, groupNo int, name, requesterUserID string) (team.Team, error) {
	st, ok := r.matches.state(matchID)
	if !ok {
		return team.Team{}, team.ErrNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.match.IsLocked {
		return team.Team{}, team.ErrMatchLocked
	}
	gs, found := st.groups[groupNo]
	if !found {
		return team.Team{}, team.ErrNotFound
	}
	if gs.team.LeaderUserID != requesterUserID {
		return team.Team{}, team.ErrNotLeader
	}
	if gs.team.Name != name {
		gs.team.Name = name
		gs.team.UpdatedAt = r.now().UTC()
	}
	return gs.team, nil
}

func (r *TeamRepository) ListRosters(_ context.Context, matchID string) ([]team.Roster, error) {
	st, ok := r.matches.state(matchID)
	if !ok {
		return []team.Roster{}, nil
	}
	st.mu.Lock()
	out := make([]team.Roster, 0, len(st.groups))
	for _, gs := range st.groups {
		out = append(out, team.Roster{
			Team:  gs.team,
			Slots: append([]team.Slot(nil), gs.slots...),
		})
	}
	st.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Team.GroupNo < out[j].Team.GroupNo })
	return out, nil
}

// ensureGroup creates the group row and its empty slots on first use.
// Callers hold st.mu.
func (r *TeamRepository) ensureGroup(st *matchState, grid team.Grid, groupNo int) *groupState {
	if gs, ok := st.groups[groupNo]; ok {
		return gs
	}

	now := r.now().UTC()
	id := team.TeamID(grid.MatchID, groupNo)
	gs := &groupState{
		team: team.Team{
			ID:        id,
			MatchID:   grid.MatchID,
			GroupNo:   groupNo,
			Name:      team.DefaultName(groupNo),
			Size:      grid.TeamSize,
			CreatedAt: now,
			UpdatedAt: now,
		},
		slots: make([]team.Slot, grid.TeamSize),
	}
	for i := range gs.slots {
		gs.slots[i] = team.Slot{TeamID: id, SlotNo: i + 1}
	}
	st.groups[groupNo] = gs
	return gs
}
