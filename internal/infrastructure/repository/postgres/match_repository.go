package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	qb "github.com/riskibarqy/esports-arena/internal/platform/querybuilder"
)

const (
	matchColumns        = "id, public_id, title, mode, entry_fee, capacity, joined_count, is_locked, status, created_at, updated_at"
	matchJoinColumns    = "id, match_public_id, user_id, fee, debit_entry_public_id, team_public_id, group_no, created_at"
	matchJoinUniqueName = "ux_match_joins_match_user"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by id: %w", err)
	}
	return matchFromRow(row), true, nil
}

// matchUpsertGuard keeps an update from shrinking capacity below the seats
// taken, switching mode under an existing grid, or cutting capacity below
// the highest group already created.
const matchUpsertGuard = `matches.joined_count <= EXCLUDED.capacity
	AND (matches.mode = EXCLUDED.mode OR (matches.joined_count = 0
		AND NOT EXISTS (SELECT 1 FROM teams t WHERE t.match_public_id = matches.public_id)))
	AND NOT EXISTS (SELECT 1 FROM teams t WHERE t.match_public_id = matches.public_id
		AND t.group_no > (EXCLUDED.capacity + t.size - 1) / t.size)`

// Upsert leaves joined_count alone. When the guard rejects the conflict
// branch no row comes back and the current row says why.
func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) (match.Match, error) {
	query, args, err := qb.UpsertModel("matches", matchUpsertModel{
		PublicID:  m.ID,
		Title:     m.Title,
		Mode:      string(m.Mode),
		EntryFee:  m.EntryFee,
		Capacity:  m.Capacity,
		IsLocked:  m.IsLocked,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, "public_id", matchUpsertGuard, matchColumns)
	if err != nil {
		return match.Match{}, fmt.Errorf("build upsert match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, r.upsertRejection(ctx, m)
		}
		return match.Match{}, fmt.Errorf("upsert match id=%s: %w", m.ID, err)
	}
	return matchFromRow(row), nil
}

func (r *MatchRepository) upsertRejection(ctx context.Context, m match.Match) error {
	current, found, err := r.GetByID(ctx, m.ID)
	switch {
	case err != nil:
		return err
	case !found:
		return match.ErrNotFound
	case m.Capacity < current.JoinedCount:
		return match.ErrCapacityBelowJoined
	default:
		return match.ErrGridInUse
	}
}

func (r *MatchRepository) SetLocked(ctx context.Context, matchID string, locked bool) (match.Match, error) {
	query, args, err := qb.Update("matches").
		Set("is_locked", locked).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", matchID)).
		Returning(matchColumns).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build set match lock query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, fmt.Errorf("set match lock id=%s: %w", matchID, err)
	}
	return matchFromRow(row), nil
}

func (r *MatchRepository) TryReserveSeat(ctx context.Context, matchID string) (match.Match, error) {
	query, args, err := qb.Update("matches").
		SetExpr("joined_count", "joined_count + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", matchID),
			qb.Eq("is_locked", false),
			qb.Expr("joined_count < capacity"),
		).
		Returning(matchColumns).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build reserve seat query: %w", err)
	}

	var row matchTableModel
	err = r.db.GetContext(ctx, &row, query, args...)
	if err == nil {
		return matchFromRow(row), nil
	}
	if !isNotFound(err) {
		return match.Match{}, fmt.Errorf("reserve seat match=%s: %w", matchID, err)
	}

	// The update missed; read the row to say why.
	current, found, err := r.GetByID(ctx, matchID)
	switch {
	case err != nil:
		return match.Match{}, err
	case !found:
		return match.Match{}, match.ErrNotFound
	case current.IsLocked:
		return match.Match{}, match.ErrMatchLocked
	default:
		return match.Match{}, match.ErrMatchFull
	}
}

func (r *MatchRepository) ReleaseSeat(ctx context.Context, matchID string) error {
	query, args, err := qb.Update("matches").
		SetExpr("joined_count", "joined_count - 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", matchID),
			qb.Gt("joined_count", 0),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release seat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release seat match=%s: %w", matchID, err)
	}
	return nil
}

func (r *MatchRepository) GetJoin(ctx context.Context, matchID, userID string) (match.Join, bool, error) {
	query, args, err := qb.Select(matchJoinColumns).From("match_joins").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return match.Join{}, false, fmt.Errorf("build select match join query: %w", err)
	}

	var row matchJoinTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Join{}, false, nil
		}
		return match.Join{}, false, fmt.Errorf("select match join: %w", err)
	}
	return matchJoinFromRow(row), true, nil
}

func (r *MatchRepository) CreateJoin(ctx context.Context, join match.Join) error {
	query, args, err := qb.InsertModel("match_joins", matchJoinInsertModel{
		MatchID:            join.MatchID,
		UserID:             join.UserID,
		Fee:                join.Fee,
		DebitEntryPublicID: nullString(join.DebitEntryID),
		TeamPublicID:       nullString(join.TeamID),
		GroupNo:            nullInt64(join.GroupNo),
		CreatedAt:          join.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match join query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, matchJoinUniqueName) {
			return match.ErrAlreadyJoined
		}
		return fmt.Errorf("insert match join match=%s user=%s: %w", join.MatchID, join.UserID, err)
	}
	return nil
}

func (r *MatchRepository) ListJoins(ctx context.Context, matchID string) ([]match.Join, error) {
	query, args, err := qb.Select(matchJoinColumns).From("match_joins").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match joins query: %w", err)
	}

	var rows []matchJoinTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match joins: %w", err)
	}

	out := make([]match.Join, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchJoinFromRow(row))
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:          row.PublicID,
		Title:       row.Title,
		Mode:        match.Mode(row.Mode),
		EntryFee:    row.EntryFee,
		Capacity:    row.Capacity,
		JoinedCount: row.JoinedCount,
		IsLocked:    row.IsLocked,
		Status:      match.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func matchJoinFromRow(row matchJoinTableModel) match.Join {
	return match.Join{
		MatchID:      row.MatchID,
		UserID:       row.UserID,
		Fee:          row.Fee,
		DebitEntryID: row.DebitEntryPublicID.String,
		TeamID:       row.TeamPublicID.String,
		GroupNo:      int(row.GroupNo.Int64),
		CreatedAt:    row.CreatedAt,
	}
}
