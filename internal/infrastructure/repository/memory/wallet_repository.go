package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

type userLedger struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	entries   []wallet.Entry
	updatedAt time.Time
}

type idempotencySlot struct {
	mu    sync.Mutex
	entry *wallet.Entry
}

// WalletRepository keeps one ledger per user, each behind its own mutex, so
// writes for different users never contend.
type WalletRepository struct {
	ledgers sync.Map // user id -> *userLedger
	keys    sync.Map // idempotency key -> *idempotencySlot
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{}
}

func (r *WalletRepository) ledger(userID string) *userLedger {
	if existing, ok := r.ledgers.Load(userID); ok {
		return existing.(*userLedger)
	}
	actual, _ := r.ledgers.LoadOrStore(userID, &userLedger{balance: decimal.Zero})
	return actual.(*userLedger)
}

func (r *WalletRepository) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	existing, ok := r.ledgers.Load(userID)
	if !ok {
		return decimal.Zero, nil
	}
	l := existing.(*userLedger)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

func (r *WalletRepository) Apply(_ context.Context, entry wallet.Entry) (wallet.Entry, error) {
	if entry.IdempotencyKey == "" {
		return r.apply(entry)
	}

	actual, _ := r.keys.LoadOrStore(entry.IdempotencyKey, &idempotencySlot{})
	slot := actual.(*idempotencySlot)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.entry != nil {
		return wallet.Entry{}, wallet.ErrDuplicateEntry
	}

	saved, err := r.apply(entry)
	if err != nil {
		return wallet.Entry{}, err
	}
	slot.entry = &saved
	return saved, nil
}

func (r *WalletRepository) apply(entry wallet.Entry) (wallet.Entry, error) {
	l := r.ledger(entry.UserID)
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.balance.Add(entry.Signed())
	if next.IsNegative() {
		return wallet.Entry{}, wallet.ErrInsufficientFunds
	}

	entry.BalanceAfter = next
	l.balance = next
	l.entries = append(l.entries, entry)
	l.updatedAt = entry.CreatedAt
	return entry, nil
}

func (r *WalletRepository) GetEntryByIdempotencyKey(_ context.Context, key string) (wallet.Entry, bool, error) {
	actual, ok := r.keys.Load(key)
	if !ok {
		return wallet.Entry{}, false, nil
	}
	slot := actual.(*idempotencySlot)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.entry == nil {
		return wallet.Entry{}, false, nil
	}
	return *slot.entry, true, nil
}

func (r *WalletRepository) ListEntries(_ context.Context, userID string, limit int) ([]wallet.Entry, error) {
	existing, ok := r.ledgers.Load(userID)
	if !ok {
		return []wallet.Entry{}, nil
	}
	l := existing.(*userLedger)
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]wallet.Entry, 0, min(limit, len(l.entries)))
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

func (r *WalletRepository) ListUserIDs(_ context.Context) ([]string, error) {
	out := make([]string, 0)
	r.ledgers.Range(func(key, _ any) bool {
		out = append(out, key.(string))
		return true
	})
	sort.Strings(out)
	return out, nil
}

func (r *WalletRepository) CheckDrift(_ context.Context, userID string) (wallet.Drift, error) {
	drift := wallet.Drift{UserID: userID, Materialized: decimal.Zero, LedgerSum: decimal.Zero}
	existing, ok := r.ledgers.Load(userID)
	if !ok {
		return drift, nil
	}
	l := existing.(*userLedger)
	l.mu.Lock()
	defer l.mu.Unlock()

	drift.Materialized = l.balance
	drift.LedgerSum = wallet.Sum(l.entries)
	return drift, nil
}
