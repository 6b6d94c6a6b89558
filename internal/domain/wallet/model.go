package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeCredit     EntryType = "credit"
	EntryTypeDebit      EntryType = "debit"
	EntryTypeWithdrawal EntryType = "withdrawal"
)

// Outflow reports whether the entry type reduces the balance.
func (t EntryType) Outflow() bool {
	return t == EntryTypeDebit || t == EntryTypeWithdrawal
}

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeCredit, EntryTypeDebit, EntryTypeWithdrawal:
		return true
	default:
		return false
	}
}

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusSuccess  EntryStatus = "success"
	EntryStatusRejected EntryStatus = "rejected"
)

// Entry is one immutable ledger line. Only success entries count toward the balance.
type Entry struct {
	ID             string
	UserID         string
	Type           EntryType
	Amount         decimal.Decimal
	Status         EntryStatus
	Reference      string
	IdempotencyKey string
	BalanceAfter   decimal.Decimal
	CreatedAt      time.Time
}

// Signed returns the entry's contribution to the balance.
func (e Entry) Signed() decimal.Decimal {
	if e.Status != EntryStatusSuccess {
		return decimal.Zero
	}
	if e.Type.Outflow() {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Sum folds entries into a balance.
func Sum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}

type Drift struct {
	UserID       string
	Materialized decimal.Decimal
	LedgerSum    decimal.Decimal
}

func (d Drift) Diverged() bool {
	return !d.Materialized.Equal(d.LedgerSum)
}
