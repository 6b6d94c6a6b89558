package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	qb "github.com/riskibarqy/esports-arena/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

const (
	ledgerEntryColumns            = "id, public_id, user_id, entry_type, amount, status, reference, idempotency_key, balance_after, created_at"
	ledgerIdempotencyKeyIndexName = "ux_ledger_entries_idempotency_key"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	query, args, err := qb.Select("balance").From("wallets").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build select wallet balance query: %w", err)
	}

	var balance decimal.Decimal
	if err := r.db.GetContext(ctx, &balance, query, args...); err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("select wallet balance: %w", err)
	}
	return balance, nil
}

// Apply moves the wallet row and appends the entry in one transaction. The
// outflow update is conditional on the balance, so concurrent debits for the
// same user serialize on the wallet row lock.
func (r *WalletRepository) Apply(ctx context.Context, entry wallet.Entry) (wallet.Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wallet.Entry{}, fmt.Errorf("begin tx for ledger entry: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ensureQuery, ensureArgs, err := qb.InsertInto("wallets").
		Columns("user_id").
		Values(entry.UserID).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return wallet.Entry{}, fmt.Errorf("build ensure wallet query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ensureQuery, ensureArgs...); err != nil {
		return wallet.Entry{}, fmt.Errorf("ensure wallet user=%s: %w", entry.UserID, err)
	}

	move := qb.Update("wallets").SetExpr("updated_at", "NOW()")
	if entry.Type.Outflow() {
		move = move.SetExpr("balance", "balance - ?", entry.Amount).
			Where(qb.Eq("user_id", entry.UserID), qb.Expr("balance >= ?", entry.Amount))
	} else {
		move = move.SetExpr("balance", "balance + ?", entry.Amount).
			Where(qb.Eq("user_id", entry.UserID))
	}
	moveQuery, moveArgs, err := move.Returning("balance").ToSQL()
	if err != nil {
		return wallet.Entry{}, fmt.Errorf("build move balance query: %w", err)
	}

	var balanceAfter decimal.Decimal
	if err := tx.GetContext(ctx, &balanceAfter, moveQuery, moveArgs...); err != nil {
		if isNotFound(err) {
			return wallet.Entry{}, wallet.ErrInsufficientFunds
		}
		return wallet.Entry{}, fmt.Errorf("move wallet balance user=%s: %w", entry.UserID, err)
	}

	entry.BalanceAfter = balanceAfter
	insertQuery, insertArgs, err := qb.InsertModel("ledger_entries", ledgerEntryInsertModel{
		PublicID:       entry.ID,
		UserID:         entry.UserID,
		EntryType:      string(entry.Type),
		Amount:         entry.Amount,
		Status:         string(entry.Status),
		Reference:      entry.Reference,
		IdempotencyKey: nullString(entry.IdempotencyKey),
		BalanceAfter:   balanceAfter,
		CreatedAt:      entry.CreatedAt,
	}, "")
	if err != nil {
		return wallet.Entry{}, fmt.Errorf("build insert ledger entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		if isUniqueViolation(err, ledgerIdempotencyKeyIndexName) {
			return wallet.Entry{}, wallet.ErrDuplicateEntry
		}
		return wallet.Entry{}, fmt.Errorf("insert ledger entry user=%s: %w", entry.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return wallet.Entry{}, fmt.Errorf("commit ledger entry tx: %w", err)
	}
	return entry, nil
}

func (r *WalletRepository) GetEntryByIdempotencyKey(ctx context.Context, key string) (wallet.Entry, bool, error) {
	query, args, err := qb.Select(ledgerEntryColumns).From("ledger_entries").
		Where(qb.Eq("idempotency_key", key)).
		ToSQL()
	if err != nil {
		return wallet.Entry{}, false, fmt.Errorf("build select ledger entry by key query: %w", err)
	}

	var row ledgerEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Entry{}, false, nil
		}
		return wallet.Entry{}, false, fmt.Errorf("select ledger entry by key: %w", err)
	}
	return ledgerEntryFromRow(row), true, nil
}

func (r *WalletRepository) ListEntries(ctx context.Context, userID string, limit int) ([]wallet.Entry, error) {
	query, args, err := qb.Select(ledgerEntryColumns).From("ledger_entries").
		Where(qb.Eq("user_id", userID)).
		OrderBy("id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ledger entries query: %w", err)
	}

	var rows []ledgerEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	out := make([]wallet.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledgerEntryFromRow(row))
	}
	return out, nil
}

func (r *WalletRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("user_id").From("wallets").OrderBy("user_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select wallet users query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select wallet users: %w", err)
	}
	return ids, nil
}

func (r *WalletRepository) CheckDrift(ctx context.Context, userID string) (wallet.Drift, error) {
	const driftQuery = `
SELECT w.balance,
       COALESCE(SUM(CASE WHEN e.entry_type = 'credit' THEN e.amount ELSE -e.amount END), 0) AS ledger_sum
FROM wallets w
LEFT JOIN ledger_entries e
  ON e.user_id = w.user_id
 AND e.status = 'success'
WHERE w.user_id = $1
GROUP BY w.balance`

	var row walletDriftRow
	if err := r.db.GetContext(ctx, &row, driftQuery, userID); err != nil {
		if isNotFound(err) {
			return wallet.Drift{UserID: userID}, nil
		}
		return wallet.Drift{}, fmt.Errorf("check wallet drift user=%s: %w", userID, err)
	}
	return wallet.Drift{
		UserID:       userID,
		Materialized: row.Balance,
		LedgerSum:    row.LedgerSum,
	}, nil
}

func ledgerEntryFromRow(row ledgerEntryTableModel) wallet.Entry {
	return wallet.Entry{
		ID:             row.PublicID,
		UserID:         row.UserID,
		Type:           wallet.EntryType(row.EntryType),
		Amount:         row.Amount,
		Status:         wallet.EntryStatus(row.Status),
		Reference:      row.Reference,
		IdempotencyKey: row.IdempotencyKey.String,
		BalanceAfter:   row.BalanceAfter,
		CreatedAt:      row.CreatedAt,
	}
}
