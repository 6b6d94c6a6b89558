package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/domain/prize"
	qb "github.com/riskibarqy/esports-arena/internal/platform/querybuilder"
)

const (
	prizePayoutColumns = "id, public_id, match_type, match_public_id, rank, user_id, amount, prize_key, note, created_at"
	prizeKeyUniqueName = "ux_prize_payouts_prize_key"
)

type PrizeRepository struct {
	db *sqlx.DB
}

func NewPrizeRepository(db *sqlx.DB) *PrizeRepository {
	return &PrizeRepository{db: db}
}

func (r *PrizeRepository) Create(ctx context.Context, payout prize.Payout) error {
	query, args, err := qb.InsertModel("prize_payouts", prizePayoutInsertModel{
		PublicID:  payout.ID,
		MatchType: payout.MatchType,
		MatchID:   payout.MatchID,
		Rank:      payout.Rank,
		UserID:    payout.UserID,
		Amount:    payout.Amount,
		PrizeKey:  payout.PrizeKey,
		Note:      payout.Note,
		CreatedAt: payout.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert prize payout query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, prizeKeyUniqueName) {
			return prize.ErrDuplicatePayout
		}
		return fmt.Errorf("insert prize payout key=%s: %w", payout.PrizeKey, err)
	}
	return nil
}

func (r *PrizeRepository) GetByKey(ctx context.Context, prizeKey string) (prize.Payout, bool, error) {
	query, args, err := qb.Select(prizePayoutColumns).From("prize_payouts").
		Where(qb.Eq("prize_key", prizeKey)).
		ToSQL()
	if err != nil {
		return prize.Payout{}, false, fmt.Errorf("build select prize payout query: %w", err)
	}

	var row prizePayoutTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prize.Payout{}, false, nil
		}
		return prize.Payout{}, false, fmt.Errorf("select prize payout: %w", err)
	}
	return prizePayoutFromRow(row), true, nil
}

func (r *PrizeRepository) ListByMatch(ctx context.Context, matchID string) ([]prize.Payout, error) {
	query, args, err := qb.Select(prizePayoutColumns).From("prize_payouts").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("rank", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select prize payouts query: %w", err)
	}

	var rows []prizePayoutTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select prize payouts: %w", err)
	}

	out := make([]prize.Payout, 0, len(rows))
	for _, row := range rows {
		out = append(out, prizePayoutFromRow(row))
	}
	return out, nil
}

func prizePayoutFromRow(row prizePayoutTableModel) prize.Payout {
	return prize.Payout{
		ID:        row.PublicID,
		MatchType: row.MatchType,
		MatchID:   row.MatchID,
		Rank:      row.Rank,
		UserID:    row.UserID,
		Amount:    row.Amount,
		PrizeKey:  row.PrizeKey,
		Note:      row.Note,
		CreatedAt: row.CreatedAt,
	}
}
