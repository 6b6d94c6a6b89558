package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type prizePayoutTableModel struct {
	ID        int64           `db:"id"`
	PublicID  string          `db:"public_id"`
	MatchType string          `db:"match_type"`
	MatchID   string          `db:"match_public_id"`
	Rank      int             `db:"rank"`
	UserID    string          `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	PrizeKey  string          `db:"prize_key"`
	Note      string          `db:"note"`
	CreatedAt time.Time       `db:"created_at"`
}

type prizePayoutInsertModel struct {
	PublicID  string          `db:"public_id"`
	MatchType string          `db:"match_type"`
	MatchID   string          `db:"match_public_id"`
	Rank      int             `db:"rank"`
	UserID    string          `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	PrizeKey  string          `db:"prize_key"`
	Note      string          `db:"note"`
	CreatedAt time.Time       `db:"created_at"`
}
