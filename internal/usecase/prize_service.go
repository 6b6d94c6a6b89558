package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/domain/prize"
	idgen "github.com/riskibarqy/esports-arena/internal/platform/id"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultPayoutConcurrency = 4

var matchTypePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

type PayoutStatus string

const (
	PayoutStatusCredited    PayoutStatus = "credited"
	PayoutStatusAlreadyPaid PayoutStatus = "already_paid"
	PayoutStatusFailed      PayoutStatus = "failed"
)

type PayoutLine struct {
	UserID string
	Amount decimal.Decimal
}

type PayPrizeInput struct {
	MatchType string
	MatchID   string
	Rank      int
	Payouts   []PayoutLine
	Note      string
}

type PayoutOutcome struct {
	UserID   string
	Amount   decimal.Decimal
	PrizeKey string
	Status   PayoutStatus
	Balance  decimal.Decimal
	Err      error
}

type PayPrizeResult struct {
	MatchType   string
	MatchID     string
	Rank        int
	Credited    []string
	AlreadyPaid []string
	Outcomes    []PayoutOutcome
}

type walletCreditor interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error)
}

type PrizeService struct {
	payouts     prize.Repository
	wallets     walletCreditor
	alerts      alert.Notifier
	idGen       idgen.Generator
	logger      *logging.Logger
	concurrency int
	now         func() time.Time
}

func NewPrizeService(
	payouts prize.Repository,
	wallets walletCreditor,
	alerts alert.Notifier,
	idGen idgen.Generator,
	concurrency int,
	logger *logging.Logger,
) *PrizeService {
	if logger == nil {
		logger = logging.Default()
	}
	if concurrency < 1 {
		concurrency = defaultPayoutConcurrency
	}
	return &PrizeService{
		payouts:     payouts,
		wallets:     wallets,
		alerts:      alerts,
		idGen:       idGen,
		logger:      logger.Named("prize"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// PayPrize records and credits each payout at most once. Lines whose prize
// key already exists are reported as already paid. When any line is left
// with a payout row but no credit the call returns ErrLedgerInconsistency
// together with the per-line outcomes.
func (s *PrizeService) PayPrize(ctx context.Context, input PayPrizeInput) (result PayPrizeResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.PayPrize",
		attribute.String("match.id", input.MatchID),
		attribute.Int("prize.rank", input.Rank),
	)
	defer func() { endSpan(span, err) }()

	input, err = normalizePayPrizeInput(input)
	if err != nil {
		return PayPrizeResult{}, err
	}

	outcomes := make([]PayoutOutcome, len(input.Payouts))
	// Detached so a caller timeout cannot split a payout row from its credit.
	work := context.WithoutCancel(ctx)
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, line := range input.Payouts {
		p.Go(func() {
			outcomes[i] = s.payOne(work, input, line)
		})
	}
	p.Wait()

	result = PayPrizeResult{
		MatchType:   input.MatchType,
		MatchID:     input.MatchID,
		Rank:        input.Rank,
		Credited:    make([]string, 0, len(outcomes)),
		AlreadyPaid: make([]string, 0),
		Outcomes:    outcomes,
	}
	var failures []error
	for _, o := range outcomes {
		switch o.Status {
		case PayoutStatusCredited:
			result.Credited = append(result.Credited, o.UserID)
		case PayoutStatusAlreadyPaid:
			result.AlreadyPaid = append(result.AlreadyPaid, o.UserID)
		default:
			failures = append(failures, o.Err)
		}
	}

	s.logger.InfoContext(ctx, "prize payout processed",
		"match_type", input.MatchType,
		"match_id", input.MatchID,
		"rank", input.Rank,
		"credited", len(result.Credited),
		"already_paid", len(result.AlreadyPaid),
		"failed", len(failures),
	)
	if len(failures) > 0 {
		return result, errors.Join(failures...)
	}
	return result, nil
}

func (s *PrizeService) payOne(ctx context.Context, input PayPrizeInput, line PayoutLine) PayoutOutcome {
	key := prize.Key(input.MatchType, input.MatchID, input.Rank, line.UserID)
	outcome := PayoutOutcome{UserID: line.UserID, Amount: line.Amount, PrizeKey: key}

	id, err := s.idGen.NewID()
	if err != nil {
		outcome.Status = PayoutStatusFailed
		outcome.Err = fmt.Errorf("generate payout id: %w", err)
		return outcome
	}

	err = s.payouts.Create(ctx, prize.Payout{
		ID:        id,
		MatchType: input.MatchType,
		MatchID:   input.MatchID,
		Rank:      input.Rank,
		UserID:    line.UserID,
		Amount:    line.Amount,
		PrizeKey:  key,
		Note:      input.Note,
		CreatedAt: s.now().UTC(),
	})
	switch {
	case err == nil:
	case errors.Is(err, prize.ErrDuplicatePayout):
		outcome.Status = PayoutStatusAlreadyPaid
		// Report what was actually paid, which may differ from this request.
		existing, found, getErr := s.payouts.GetByKey(ctx, key)
		switch {
		case getErr != nil:
			s.logger.WarnContext(ctx, "read existing payout failed", "prize_key", key, "error", getErr)
		case found:
			outcome.Amount = existing.Amount
			if !existing.Amount.Equal(line.Amount) {
				s.logger.WarnContext(ctx, "payout already recorded with another amount",
					"prize_key", key,
					"paid", existing.Amount,
					"requested", line.Amount,
				)
			}
		}
		return outcome
	default:
		// Nothing was recorded, so the line can be retried safely.
		outcome.Status = PayoutStatusFailed
		outcome.Err = storageFailure("create payout "+key, err)
		return outcome
	}

	credit, err := s.wallets.Credit(ctx, line.UserID, line.Amount, key)
	if err != nil {
		outcome.Status = PayoutStatusFailed
		outcome.Err = ledgerInconsistency(err, "payout %s recorded without credit", key)
		raiseAlert(ctx, s.logger, s.alerts, alert.Alert{
			Kind:     alert.KindPayoutCreditFailed,
			Severity: alert.SeverityCritical,
			Message:  "prize payout recorded but wallet credit failed",
			Attributes: map[string]string{
				"prize_key": key,
				"user_id":   line.UserID,
				"amount":    line.Amount.StringFixed(amountScale),
				"error":     err.Error(),
			},
			OccurredAt: s.now().UTC(),
		})
		return outcome
	}

	outcome.Status = PayoutStatusCredited
	outcome.Balance = credit.Balance
	return outcome
}

func (s *PrizeService) ListPayouts(ctx context.Context, matchID string) ([]prize.Payout, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.ListPayouts")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	items, err := s.payouts.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, storageFailure("list payouts", err)
	}
	return items, nil
}

func normalizePayPrizeInput(input PayPrizeInput) (PayPrizeInput, error) {
	input.MatchType = strings.ToLower(strings.TrimSpace(input.MatchType))
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.Note = strings.TrimSpace(input.Note)

	if !prize.EligibleRank(input.Rank) {
		return input, fmt.Errorf("%w: rank %d is not eligible for a prize", ErrInvalidRank, input.Rank)
	}
	if !matchTypePattern.MatchString(input.MatchType) {
		return input, fmt.Errorf("%w: match type must match %s", ErrInvalidInput, matchTypePattern)
	}
	if input.MatchID == "" || strings.Contains(input.MatchID, ":") {
		return input, fmt.Errorf("%w: match id is required and may not contain ':'", ErrInvalidInput)
	}
	if len(input.Payouts) == 0 {
		return input, fmt.Errorf("%w: at least one payout is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(input.Payouts))
	lines := make([]PayoutLine, 0, len(input.Payouts))
	for _, line := range input.Payouts {
		line.UserID = strings.TrimSpace(line.UserID)
		if line.UserID == "" {
			return input, fmt.Errorf("%w: payout user id is required", ErrInvalidInput)
		}
		if _, dup := seen[line.UserID]; dup {
			return input, fmt.Errorf("%w: user %s listed twice", ErrInvalidInput, line.UserID)
		}
		seen[line.UserID] = struct{}{}
		if err := ValidateAmount(line.Amount); err != nil {
			return input, fmt.Errorf("payout for user %s: %w", line.UserID, err)
		}
		lines = append(lines, line)
	}
	input.Payouts = lines
	return input, nil
}
