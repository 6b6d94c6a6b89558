package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	matchmock "github.com/riskibarqy/esports-arena/internal/mocks/domain/match"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJoinServiceWithMockery_CommitFailureUnwindsSeatAndFee(t *testing.T) {
	matches := matchmock.NewRepository(t)
	wallets := NewWalletService(memory.NewWalletRepository(), nil, &sequenceIDGenerator{prefix: "led_"}, logging.NewNop())
	_, err := wallets.Credit(t.Context(), "u1", decimal.NewFromInt(40), "seed")
	require.NoError(t, err)

	m := match.Match{
		ID:          "m1",
		Mode:        match.ModeSolo,
		EntryFee:    decimal.NewFromInt(40),
		Capacity:    10,
		JoinedCount: 3,
		Status:      match.StatusUpcoming,
	}
	matches.On("GetJoin", mock.Anything, "m1", "u1").Return(match.Join{}, false, nil).Once()
	matches.On("GetByID", mock.Anything, "m1").Return(m, true, nil).Once()
	matches.On("TryReserveSeat", mock.Anything, "m1").Return(m, nil).Once()
	matches.On("CreateJoin", mock.Anything, mock.MatchedBy(func(j match.Join) bool {
		return j.MatchID == "m1" && j.UserID == "u1" && j.Fee.Equal(decimal.NewFromInt(40)) && j.DebitEntryID != ""
	})).Return(errors.New("deadlock detected")).Once()
	matches.On("ReleaseSeat", mock.Anything, "m1").Return(nil).Once()

	svc := NewJoinService(matches, NewSeatAllocator(matches, logging.NewNop()), wallets, nil, newRecordingNotifier(), logging.NewNop())
	_, err = svc.JoinMatch(t.Context(), "m1", "u1")
	require.ErrorIs(t, err, ErrStorageFailure)

	balance, err := wallets.GetBalance(t.Context(), "u1")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(40)), "fee must be refunded, balance=%s", balance)
}

func TestJoinServiceWithMockery_LockedMatchTouchesNothing(t *testing.T) {
	matches := matchmock.NewRepository(t)
	matches.On("GetJoin", mock.Anything, "m1", "u1").Return(match.Join{}, false, nil).Once()
	matches.On("GetByID", mock.Anything, "m1").Return(match.Match{ID: "m1", Mode: match.ModeSolo, Capacity: 2, IsLocked: true}, true, nil).Once()

	svc := NewJoinService(matches, NewSeatAllocator(matches, logging.NewNop()), nil, nil, nil, logging.NewNop())
	_, err := svc.JoinMatch(t.Context(), "m1", "u1")
	require.ErrorIs(t, err, ErrMatchLocked)
	matches.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything)
}
