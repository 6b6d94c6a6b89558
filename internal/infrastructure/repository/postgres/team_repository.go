package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	qb "github.com/riskibarqy/esports-arena/internal/platform/querybuilder"
)

const (
	teamColumns       = "id, public_id, match_public_id, group_no, name, leader_user_id, size, created_at, updated_at"
	teamSlotColumns   = "id, team_public_id, match_public_id, slot_no, user_id, username, player_game_id, claimed_at"
	teamMemberColumns = "id, match_public_id, user_id, team_public_id, group_no, created_at"
	teamSlotUserIndex = "ux_team_slots_match_user"
)

type TeamRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db, now: time.Now}
}

// EnsureMembership locks the match row so placements for one match are
// serialized and group room is counted against committed members only.
func (r *TeamRepository) EnsureMembership(ctx context.Context, grid team.Grid, member team.Member) (team.Team, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("begin tx for team membership: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := lockMatchRow(ctx, tx, grid.MatchID, true); err != nil {
		return team.Team{}, false, err
	}

	existing, found, err := getMembership(ctx, tx, grid.MatchID, member.UserID)
	if err != nil {
		return team.Team{}, false, err
	}
	if found {
		t, err := getTeamByGroup(ctx, tx, grid.MatchID, existing.GroupNo)
		if err != nil {
			return team.Team{}, false, err
		}
		return t, false, nil
	}

	const pickGroupQuery = `
SELECT g.group_no
FROM generate_series(1, $2::int) AS g(group_no)
LEFT JOIN team_members m
  ON m.match_public_id = $1
 AND m.group_no = g.group_no
GROUP BY g.group_no
HAVING COUNT(m.id) < $3
ORDER BY g.group_no
LIMIT 1`

	var groupNo int
	if err := tx.GetContext(ctx, &groupNo, pickGroupQuery, grid.MatchID, grid.GroupCount, grid.TeamSize); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, team.ErrGridFull
		}
		return team.Team{}, false, fmt.Errorf("pick team group match=%s: %w", grid.MatchID, err)
	}

	t, err := r.ensureGroup(ctx, tx, grid, groupNo)
	if err != nil {
		return team.Team{}, false, err
	}

	createdAt := member.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	query, args, err := qb.InsertModel("team_members", teamMemberInsertModel{
		MatchID:   grid.MatchID,
		UserID:    member.UserID,
		TeamID:    t.ID,
		GroupNo:   groupNo,
		CreatedAt: createdAt,
	}, "")
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build insert team member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return team.Team{}, false, fmt.Errorf("insert team member match=%s user=%s: %w", grid.MatchID, member.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return team.Team{}, false, fmt.Errorf("commit team membership tx: %w", err)
	}
	return t, true, nil
}

func (r *TeamRepository) GetMembership(ctx context.Context, matchID, userID string) (team.Member, bool, error) {
	return getMembership(ctx, r.db, matchID, userID)
}

func (r *TeamRepository) RemoveMembership(ctx context.Context, matchID, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE match_public_id = $1 AND user_id = $2`,
		matchID, userID,
	); err != nil {
		return fmt.Errorf("delete team member match=%s user=%s: %w", matchID, userID, err)
	}
	return nil
}

// ClaimSlot holds a share lock on the match row for the whole claim, so a
// concurrent lock flip waits for it to finish.
func (r *TeamRepository) ClaimSlot(ctx context.Context, grid team.Grid, groupNo, slotNo int, userID string, display team.DisplayFields) (team.Team, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.Team{}, fmt.Errorf("begin tx for slot claim: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	locked, err := lockMatchRow(ctx, tx, grid.MatchID, false)
	if err != nil {
		return team.Team{}, err
	}
	if locked {
		return team.Team{}, team.ErrMatchLocked
	}

	if _, found, err := getMembership(ctx, tx, grid.MatchID, userID); err != nil {
		return team.Team{}, err
	} else if !found {
		return team.Team{}, team.ErrNotMember
	}

	t, err := r.ensureGroup(ctx, tx, grid, groupNo)
	if err != nil {
		return team.Team{}, err
	}

	now := r.now().UTC()
	claimQuery, claimArgs, err := qb.Update("team_slots").
		Set("user_id", userID).
		Set("username", display.Username).
		Set("player_game_id", display.PlayerGameID).
		Set("claimed_at", now).
		Where(
			qb.Eq("team_public_id", t.ID),
			qb.Eq("slot_no", slotNo),
			qb.IsNull("user_id"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build claim slot query: %w", err)
	}
	res, err := tx.ExecContext(ctx, claimQuery, claimArgs...)
	if err != nil {
		if isUniqueViolation(err, teamSlotUserIndex) {
			return team.Team{}, team.ErrAlreadyInTeam
		}
		return team.Team{}, fmt.Errorf("claim slot team=%s slot=%d: %w", t.ID, slotNo, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return team.Team{}, fmt.Errorf("claim slot rows affected: %w", err)
	}
	if affected == 0 {
		return team.Team{}, team.ErrSlotTaken
	}

	leaderQuery, leaderArgs, err := qb.Update("teams").
		Set("leader_user_id", userID).
		Set("updated_at", now).
		Where(
			qb.Eq("public_id", t.ID),
			qb.IsNull("leader_user_id"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build set team leader query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, leaderQuery, leaderArgs...); err != nil {
		return team.Team{}, fmt.Errorf("set team leader team=%s: %w", t.ID, err)
	}

	moveQuery, moveArgs, err := qb.Update("team_members").
		Set("team_public_id", t.ID).
		Set("group_no", groupNo).
		Where(
			qb.Eq("match_public_id", grid.MatchID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build move team member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, moveQuery, moveArgs...); err != nil {
		return team.Team{}, fmt.Errorf("move team member user=%s: %w", userID, err)
	}

	claimed, err := getTeamByGroup(ctx, tx, grid.MatchID, groupNo)
	if err != nil {
		return team.Team{}, err
	}
	if err := tx.Commit(); err != nil {
		return team.Team{}, fmt.Errorf("commit slot claim tx: %w", err)
	}
	return claimed, nil
}

func (r *TeamRepository) RenameTeam(ctx context.Context, matchID string, groupNo int, name, requesterUserID string) (team.Team, error) {
	const renameQuery = `
UPDATE teams t
SET name = $4,
    updated_at = CASE WHEN t.name = $4 THEN t.updated_at ELSE NOW() END
FROM matches m
WHERE m.public_id = t.match_public_id
  AND t.match_public_id = $1
  AND t.group_no = $2
  AND t.leader_user_id = $3
  AND NOT m.is_locked
RETURNING t.id, t.public_id, t.match_public_id, t.group_no, t.name, t.leader_user_id, t.size, t.created_at, t.updated_at`

	var row teamTableModel
	err := r.db.GetContext(ctx, &row, renameQuery, matchID, groupNo, requesterUserID, name)
	if err == nil {
		return teamFromRow(row), nil
	}
	if !isNotFound(err) {
		return team.Team{}, fmt.Errorf("rename team match=%s group=%d: %w", matchID, groupNo, err)
	}

	locked, err := lockMatchRow(ctx, r.db, matchID, false)
	if err != nil {
		return team.Team{}, err
	}
	if locked {
		return team.Team{}, team.ErrMatchLocked
	}
	if _, err := getTeamByGroup(ctx, r.db, matchID, groupNo); err != nil {
		return team.Team{}, err
	}
	return team.Team{}, team.ErrNotLeader
}

func (r *TeamRepository) ListRosters(ctx context.Context, matchID string) ([]team.Roster, error) {
	teamsQuery, teamsArgs, err := qb.Select(teamColumns).From("teams").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("group_no").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}
	var teamRows []teamTableModel
	if err := r.db.SelectContext(ctx, &teamRows, teamsQuery, teamsArgs...); err != nil {
		return nil, fmt.Errorf("select teams by match: %w", err)
	}

	slotsQuery, slotsArgs, err := qb.Select(teamSlotColumns).From("team_slots").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("team_public_id", "slot_no").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team slots query: %w", err)
	}
	var slotRows []teamSlotTableModel
	if err := r.db.SelectContext(ctx, &slotRows, slotsQuery, slotsArgs...); err != nil {
		return nil, fmt.Errorf("select team slots by match: %w", err)
	}

	slotsByTeam := make(map[string][]team.Slot, len(teamRows))
	for _, s := range slotRows {
		slotsByTeam[s.TeamID] = append(slotsByTeam[s.TeamID], team.Slot{
			TeamID:       s.TeamID,
			SlotNo:       s.SlotNo,
			UserID:       s.UserID.String,
			Username:     s.Username,
			PlayerGameID: s.PlayerGameID,
			ClaimedAt:    s.ClaimedAt,
		})
	}

	out := make([]team.Roster, 0, len(teamRows))
	for _, row := range teamRows {
		out = append(out, team.Roster{
			Team:  teamFromRow(row),
			Slots: slotsByTeam[row.PublicID],
		})
	}
	return out, nil
}

// ensureGroup creates the team row and its empty slots on first use. Team
// ids are derived from (match, group) so concurrent creators converge.
func (r *TeamRepository) ensureGroup(ctx context.Context, tx *sqlx.Tx, grid team.Grid, groupNo int) (team.Team, error) {
	now := r.now().UTC()
	teamID := team.TeamID(grid.MatchID, groupNo)

	teamQuery, teamArgs, err := qb.InsertModel("teams", teamInsertModel{
		PublicID:  teamID,
		MatchID:   grid.MatchID,
		GroupNo:   groupNo,
		Name:      team.DefaultName(groupNo),
		Size:      grid.TeamSize,
		CreatedAt: now,
		UpdatedAt: now,
	}, "ON CONFLICT (match_public_id, group_no) DO NOTHING")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, teamQuery, teamArgs...); err != nil {
		return team.Team{}, fmt.Errorf("insert team match=%s group=%d: %w", grid.MatchID, groupNo, err)
	}

	slots := qb.InsertInto("team_slots").
		Columns("team_public_id", "match_public_id", "slot_no").
		Suffix("ON CONFLICT (team_public_id, slot_no) DO NOTHING")
	for slotNo := 1; slotNo <= grid.TeamSize; slotNo++ {
		slots.Values(teamID, grid.MatchID, slotNo)
	}
	slotsQuery, slotsArgs, err := slots.ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team slots query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, slotsQuery, slotsArgs...); err != nil {
		return team.Team{}, fmt.Errorf("insert team slots team=%s: %w", teamID, err)
	}

	return getTeamByGroup(ctx, tx, grid.MatchID, groupNo)
}

// lockMatchRow reads is_locked under a row lock. exclusive takes FOR UPDATE,
// otherwise FOR SHARE. On a plain *sqlx.DB the lock ends with the statement.
func lockMatchRow(ctx context.Context, q sqlx.QueryerContext, matchID string, exclusive bool) (bool, error) {
	query := `SELECT is_locked FROM matches WHERE public_id = $1 FOR SHARE`
	if exclusive {
		query = `SELECT is_locked FROM matches WHERE public_id = $1 FOR UPDATE`
	}

	var locked bool
	if err := sqlx.GetContext(ctx, q, &locked, query, matchID); err != nil {
		if isNotFound(err) {
			return false, team.ErrNotFound
		}
		return false, fmt.Errorf("lock match row id=%s: %w", matchID, err)
	}
	return locked, nil
}

func getMembership(ctx context.Context, q sqlx.QueryerContext, matchID, userID string) (team.Member, bool, error) {
	query, args, err := qb.Select(teamMemberColumns).From("team_members").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return team.Member{}, false, fmt.Errorf("build select team member query: %w", err)
	}

	var row teamMemberTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Member{}, false, nil
		}
		return team.Member{}, false, fmt.Errorf("select team member: %w", err)
	}
	return team.Member{
		MatchID:   row.MatchID,
		UserID:    row.UserID,
		TeamID:    row.TeamID,
		GroupNo:   row.GroupNo,
		CreatedAt: row.CreatedAt,
	}, true, nil
}

func getTeamByGroup(ctx context.Context, q sqlx.QueryerContext, matchID string, groupNo int) (team.Team, error) {
	query, args, err := qb.Select(teamColumns).From("teams").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("group_no", groupNo),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build select team by group query: %w", err)
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, fmt.Errorf("select team by group: %w", err)
	}
	return teamFromRow(row), nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:           row.PublicID,
		MatchID:      row.MatchID,
		GroupNo:      row.GroupNo,
		Name:         row.Name,
		LeaderUserID: row.LeaderUserID.String,
		Size:         row.Size,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
