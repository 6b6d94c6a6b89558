package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/payment"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	idgen "github.com/riskibarqy/esports-arena/internal/platform/id"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	amountScale         = 2
	defaultEntriesLimit = 50
	maxEntriesLimit     = 200
	topUpKeyPrefix      = "topup:"
	refundRefPrefix     = "refund:"
)

var errDuplicateEntry = errors.New("duplicate ledger entry")

type WalletResult struct {
	Entry   wallet.Entry
	Balance decimal.Decimal
	// Replayed is set when a top-up order was already applied earlier.
	Replayed bool
}

type TopUpInput struct {
	UserID string
	Amount decimal.Decimal
	Proof  payment.Proof
}

type WalletService struct {
	repo     wallet.Repository
	verifier payment.Verifier
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewWalletService(repo wallet.Repository, verifier payment.Verifier, idGen idgen.Generator, logger *logging.Logger) *WalletService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WalletService{
		repo:     repo,
		verifier: verifier,
		idGen:    idGen,
		logger:   logger.Named("wallet"),
		now:      time.Now,
	}
}

func (s *WalletService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.GetBalance")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return decimal.Zero, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, storageFailure("get balance", err)
	}
	return balance, nil
}

func (s *WalletService) Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error) {
	return s.apply(ctx, "usecase.WalletService.Debit", wallet.EntryTypeDebit, userID, amount, reference, "")
}

func (s *WalletService) Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error) {
	return s.apply(ctx, "usecase.WalletService.Credit", wallet.EntryTypeCredit, userID, amount, reference, "")
}

// Refund credits back an earlier debit. The reference is tagged so refunds
// are distinguishable in the history.
func (s *WalletService) Refund(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error) {
	return s.apply(ctx, "usecase.WalletService.Refund", wallet.EntryTypeCredit, userID, amount, refundRefPrefix+reference, "")
}

func (s *WalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, reference string) (WalletResult, error) {
	return s.apply(ctx, "usecase.WalletService.Withdraw", wallet.EntryTypeWithdrawal, userID, amount, reference, "")
}

// TopUp credits a gateway payment once per order id.
func (s *WalletService) TopUp(ctx context.Context, input TopUpInput) (WalletResult, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Proof.OrderID = strings.TrimSpace(input.Proof.OrderID)
	if input.UserID == "" {
		return WalletResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Proof.OrderID == "" {
		return WalletResult{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	if s.verifier == nil {
		return WalletResult{}, fmt.Errorf("%w: payment verifier is not configured", ErrDependencyUnavailable)
	}

	verified, err := s.verifier.VerifyPayment(ctx, input.Proof)
	if err != nil {
		return WalletResult{}, fmt.Errorf("%w: verify payment: %w", ErrDependencyUnavailable, err)
	}
	if !verified {
		s.logger.WarnContext(ctx, "top-up rejected: payment not verified",
			"user_id", input.UserID,
			"order_id", input.Proof.OrderID,
		)
		return WalletResult{}, fmt.Errorf("%w: order %s", ErrPaymentNotVerified, input.Proof.OrderID)
	}

	key := topUpKeyPrefix + input.Proof.OrderID
	result, err := s.apply(ctx, "usecase.WalletService.TopUp", wallet.EntryTypeCredit, input.UserID, input.Amount, input.Proof.OrderID, key)
	if !errors.Is(err, errDuplicateEntry) {
		return result, err
	}

	existing, found, err := s.repo.GetEntryByIdempotencyKey(ctx, key)
	if err != nil {
		return WalletResult{}, storageFailure("get top-up entry", err)
	}
	if !found {
		return WalletResult{}, storageFailure("get top-up entry", fmt.Errorf("entry %s vanished after duplicate insert", key))
	}
	if existing.UserID != input.UserID {
		return WalletResult{}, fmt.Errorf("%w: order %s belongs to another user", ErrInvalidInput, input.Proof.OrderID)
	}

	balance, err := s.repo.GetBalance(ctx, input.UserID)
	if err != nil {
		return WalletResult{}, storageFailure("get balance", err)
	}
	return WalletResult{Entry: existing, Balance: balance, Replayed: true}, nil
}

func (s *WalletService) ListEntries(ctx context.Context, userID string, limit int) ([]wallet.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.ListEntries")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = defaultEntriesLimit
	case limit > maxEntriesLimit:
		limit = maxEntriesLimit
	}

	entries, err := s.repo.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, storageFailure("list entries", err)
	}
	return entries, nil
}

func (s *WalletService) apply(
	ctx context.Context,
	spanName string,
	entryType wallet.EntryType,
	userID string,
	amount decimal.Decimal,
	reference string,
	idempotencyKey string,
) (result WalletResult, err error) {
	ctx, span := startUsecaseSpan(ctx, spanName, attribute.String("entry.type", string(entryType)))
	defer func() { endSpan(span, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return WalletResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := ValidateAmount(amount); err != nil {
		return WalletResult{}, err
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return WalletResult{}, fmt.Errorf("generate entry id: %w", err)
	}

	saved, err := s.repo.Apply(ctx, wallet.Entry{
		ID:             entryID,
		UserID:         userID,
		Type:           entryType,
		Amount:         amount,
		Status:         wallet.EntryStatusSuccess,
		Reference:      strings.TrimSpace(reference),
		IdempotencyKey: idempotencyKey,
		CreatedAt:      s.now().UTC(),
	})
	switch {
	case err == nil:
	case errors.Is(err, wallet.ErrInsufficientFunds):
		s.logger.WarnContext(ctx, "wallet outflow rejected",
			"user_id", userID,
			"entry_type", entryType,
			"amount", amount,
			"reference", reference,
		)
		return WalletResult{}, fmt.Errorf("%w: user %s cannot cover %s", ErrInsufficientFunds, userID, amount.StringFixed(amountScale))
	case errors.Is(err, wallet.ErrDuplicateEntry):
		return WalletResult{}, fmt.Errorf("%w: idempotency key %s", errDuplicateEntry, idempotencyKey)
	default:
		s.logger.ErrorContext(ctx, "apply ledger entry failed",
			"user_id", userID,
			"entry_type", entryType,
			"reference", reference,
			"error", err,
		)
		return WalletResult{}, storageFailure("apply ledger entry", err)
	}

	return WalletResult{Entry: saved, Balance: saved.BalanceAfter}, nil
}

// ValidateAmount accepts positive amounts with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(amountScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidAmount, amount, amountScale)
	}
	return nil
}
