package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type ledgerEntryTableModel struct {
	ID             int64           `db:"id"`
	PublicID       string          `db:"public_id"`
	UserID         string          `db:"user_id"`
	EntryType      string          `db:"entry_type"`
	Amount         decimal.Decimal `db:"amount"`
	Status         string          `db:"status"`
	Reference      string          `db:"reference"`
	IdempotencyKey sql.NullString  `db:"idempotency_key"`
	BalanceAfter   decimal.Decimal `db:"balance_after"`
	CreatedAt      time.Time       `db:"created_at"`
}

type ledgerEntryInsertModel struct {
	PublicID       string          `db:"public_id"`
	UserID         string          `db:"user_id"`
	EntryType      string          `db:"entry_type"`
	Amount         decimal.Decimal `db:"amount"`
	Status         string          `db:"status"`
	Reference      string          `db:"reference"`
	IdempotencyKey sql.NullString  `db:"idempotency_key"`
	BalanceAfter   decimal.Decimal `db:"balance_after"`
	CreatedAt      time.Time       `db:"created_at"`
}

type walletDriftRow struct {
	Balance   decimal.Decimal `db:"balance"`
	LedgerSum decimal.Decimal `db:"ledger_sum"`
}
