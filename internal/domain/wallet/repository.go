package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	ErrDuplicateEntry    = errors.New("wallet: duplicate idempotency key")
)

type Repository interface {
	// GetBalance returns zero for users without a wallet.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	// Apply appends a success entry and moves the materialized balance in one
	// atomic unit per user. Outflow entries fail with ErrInsufficientFunds when
	// the balance cannot cover them; nothing is written in that case. A reused
	// IdempotencyKey fails with ErrDuplicateEntry.
	Apply(ctx context.Context, entry Entry) (Entry, error)
	GetEntryByIdempotencyKey(ctx context.Context, key string) (Entry, bool, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]Entry, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	// CheckDrift compares the materialized balance with the ledger sum.
	CheckDrift(ctx context.Context, userID string) (Drift, error)
}
