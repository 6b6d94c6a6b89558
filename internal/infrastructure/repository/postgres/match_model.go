package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type matchTableModel struct {
	ID          int64           `db:"id"`
	PublicID    string          `db:"public_id"`
	Title       string          `db:"title"`
	Mode        string          `db:"mode"`
	EntryFee    decimal.Decimal `db:"entry_fee"`
	Capacity    int             `db:"capacity"`
	JoinedCount int             `db:"joined_count"`
	IsLocked    bool            `db:"is_locked"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type matchUpsertModel struct {
	PublicID  string          `db:"public_id"`
	Title     string          `db:"title"`
	Mode      string          `db:"mode"`
	EntryFee  decimal.Decimal `db:"entry_fee"`
	Capacity  int             `db:"capacity"`
	IsLocked  bool            `db:"is_locked"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at,immutable"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type matchJoinTableModel struct {
	ID                 int64           `db:"id"`
	MatchID            string          `db:"match_public_id"`
	UserID             string          `db:"user_id"`
	Fee                decimal.Decimal `db:"fee"`
	DebitEntryPublicID sql.NullString  `db:"debit_entry_public_id"`
	TeamPublicID       sql.NullString  `db:"team_public_id"`
	GroupNo            sql.NullInt64   `db:"group_no"`
	CreatedAt          time.Time       `db:"created_at"`
}

type matchJoinInsertModel struct {
	MatchID            string          `db:"match_public_id"`
	UserID             string          `db:"user_id"`
	Fee                decimal.Decimal `db:"fee"`
	DebitEntryPublicID sql.NullString  `db:"debit_entry_public_id"`
	TeamPublicID       sql.NullString  `db:"team_public_id"`
	GroupNo            sql.NullInt64   `db:"group_no"`
	CreatedAt          time.Time       `db:"created_at"`
}
