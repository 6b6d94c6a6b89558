package usecase

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/riskibarqy/esports-arena/internal/domain/payment"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	paymentmock "github.com/riskibarqy/esports-arena/internal/mocks/domain/payment"
	walletmock "github.com/riskibarqy/esports-arena/internal/mocks/domain/wallet"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount string
		ok     bool
	}{
		{"0.01", true},
		{"50", true},
		{"12.50", true},
		{"12.500", true},
		{"0", false},
		{"-5", false},
		{"1.005", false},
	}
	for _, tc := range cases {
		err := ValidateAmount(decimal.RequireFromString(tc.amount))
		if tc.ok && err != nil {
			t.Fatalf("amount %s: unexpected error %v", tc.amount, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: expected invalid amount, got %v", tc.amount, err)
		}
	}
}

func TestWalletService_DebitCreditFlow(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	if b := e.balance(t, "nobody"); !b.IsZero() {
		t.Fatalf("unknown users have zero balance, got %s", b)
	}

	e.fund(t, "u1", "100")
	res, err := e.wallets.Debit(ctx, "u1", decimal.RequireFromString("30.25"), "admin:fee")
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(decimal.RequireFromString("69.75")))
	assert.Equal(t, wallet.EntryTypeDebit, res.Entry.Type)
	assert.Equal(t, wallet.EntryStatusSuccess, res.Entry.Status)

	_, err = e.wallets.Debit(ctx, "u1", decimal.NewFromInt(70), "admin:fee")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = e.wallets.Credit(ctx, "u1", decimal.Zero, "noop")
	require.ErrorIs(t, err, ErrInvalidAmount)

	res, err = e.wallets.Withdraw(ctx, "u1", decimal.RequireFromString("9.75"), "payout:bank")
	require.NoError(t, err)
	assert.Equal(t, wallet.EntryTypeWithdrawal, res.Entry.Type)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(60)))

	entries, err := e.wallets.ListEntries(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, wallet.Sum(entries).Equal(e.balance(t, "u1")))
}

func TestWalletService_BalanceMatchesLedgerUnderRandomLoad(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	users := []string{"a", "b", "c"}
	for _, u := range users {
		e.fund(t, u, "20")
	}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := users[i%len(users)]
			amount := decimal.NewFromInt(int64(rand.IntN(15) + 1))
			if i%3 == 0 {
				_, _ = e.wallets.Credit(ctx, u, amount, fmt.Sprintf("c%d", i))
				return
			}
			_, err := e.wallets.Debit(ctx, u, amount, fmt.Sprintf("d%d", i))
			if err != nil && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	for _, u := range users {
		entries, err := e.walletRepo.ListEntries(ctx, u, 1000)
		require.NoError(t, err)
		balance := e.balance(t, u)
		assert.False(t, balance.IsNegative(), "balance of %s went negative", u)
		assert.True(t, wallet.Sum(entries).Equal(balance), "balance of %s diverged from ledger", u)
	}
}

func TestWalletService_TopUpIsIdempotentPerOrder(t *testing.T) {
	verifier := paymentmock.NewVerifier(t)
	repo := memory.NewWalletRepository()
	svc := NewWalletService(repo, verifier, &sequenceIDGenerator{prefix: "led_"}, logging.NewNop())

	proof := payment.Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
	verifier.On("VerifyPayment", mock.Anything, proof).Return(true, nil).Twice()

	first, err := svc.TopUp(t.Context(), TopUpInput{UserID: "u1", Amount: decimal.NewFromInt(500), Proof: proof})
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(500)))

	second, err := svc.TopUp(t.Context(), TopUpInput{UserID: "u1", Amount: decimal.NewFromInt(500), Proof: proof})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.True(t, second.Balance.Equal(decimal.NewFromInt(500)))
}

func TestWalletService_TopUpRejectsUnverifiedPayment(t *testing.T) {
	verifier := paymentmock.NewVerifier(t)
	repo := walletmock.NewRepository(t)
	svc := NewWalletService(repo, verifier, staticIDGenerator{id: "led_1"}, logging.NewNop())

	verifier.On("VerifyPayment", mock.Anything, mock.AnythingOfType("payment.Proof")).Return(false, nil).Once()

	_, err := svc.TopUp(t.Context(), TopUpInput{
		UserID: "u1",
		Amount: decimal.NewFromInt(10),
		Proof:  payment.Proof{OrderID: "order_2", Signature: "forged"},
	})
	require.ErrorIs(t, err, ErrPaymentNotVerified)
	repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestWalletService_StorageErrorsAreWrapped(t *testing.T) {
	repo := walletmock.NewRepository(t)
	svc := NewWalletService(repo, nil, staticIDGenerator{id: "led_1"}, logging.NewNop())

	repo.On("Apply", mock.Anything, mock.MatchedBy(func(e wallet.Entry) bool {
		return e.ID == "led_1" && e.UserID == "u1" && e.Type == wallet.EntryTypeCredit
	})).Return(wallet.Entry{}, errors.New("connection reset")).Once()

	_, err := svc.Credit(t.Context(), "u1", decimal.NewFromInt(5), "ref")
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.False(t, IsBusinessError(err))
}
