package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	MatchID      string         `db:"match_public_id"`
	GroupNo      int            `db:"group_no"`
	Name         string         `db:"name"`
	LeaderUserID sql.NullString `db:"leader_user_id"`
	Size         int            `db:"size"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	PublicID  string    `db:"public_id"`
	MatchID   string    `db:"match_public_id"`
	GroupNo   int       `db:"group_no"`
	Name      string    `db:"name"`
	Size      int       `db:"size"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teamSlotTableModel struct {
	ID           int64          `db:"id"`
	TeamID       string         `db:"team_public_id"`
	MatchID      string         `db:"match_public_id"`
	SlotNo       int            `db:"slot_no"`
	UserID       sql.NullString `db:"user_id"`
	Username     string         `db:"username"`
	PlayerGameID string         `db:"player_game_id"`
	ClaimedAt    *time.Time     `db:"claimed_at"`
}

type teamMemberTableModel struct {
	ID        int64     `db:"id"`
	MatchID   string    `db:"match_public_id"`
	UserID    string    `db:"user_id"`
	TeamID    string    `db:"team_public_id"`
	GroupNo   int       `db:"group_no"`
	CreatedAt time.Time `db:"created_at"`
}

type teamMemberInsertModel struct {
	MatchID   string    `db:"match_public_id"`
	UserID    string    `db:"user_id"`
	TeamID    string    `db:"team_public_id"`
	GroupNo   int       `db:"group_no"`
	CreatedAt time.Time `db:"created_at"`
}
