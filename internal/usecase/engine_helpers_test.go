package usecase

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return g.prefix + strconv.FormatInt(g.next.Add(1), 10), nil
}

type recordingNotifier struct {
	alerts chan alert.Alert
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{alerts: make(chan alert.Alert, 16)}
}

func (n *recordingNotifier) Notify(_ context.Context, a alert.Alert) error {
	n.alerts <- a
	return nil
}

type testEngine struct {
	walletRepo *memory.WalletRepository
	matchRepo  *memory.MatchRepository
	teamRepo   *memory.TeamRepository
	prizeRepo  *memory.PrizeRepository

	wallets *WalletService
	seats   *SeatAllocator
	grid    *TeamGridService
	joins   *JoinService
	prizes  *PrizeService
	admin   *MatchAdminService
	alerts  *recordingNotifier
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	logger := logging.NewNop()
	e := &testEngine{
		walletRepo: memory.NewWalletRepository(),
		matchRepo:  memory.NewMatchRepository(),
		prizeRepo:  memory.NewPrizeRepository(),
		alerts:     newRecordingNotifier(),
	}
	e.teamRepo = memory.NewTeamRepository(e.matchRepo)

	e.wallets = NewWalletService(e.walletRepo, nil, &sequenceIDGenerator{prefix: "led_"}, logger)
	e.seats = NewSeatAllocator(e.matchRepo, logger)
	e.grid = NewTeamGridService(e.matchRepo, e.teamRepo, logger)
	e.joins = NewJoinService(e.matchRepo, e.seats, e.wallets, e.grid, e.alerts, logger)
	e.prizes = NewPrizeService(e.prizeRepo, e.wallets, e.alerts, &sequenceIDGenerator{prefix: "pay_"}, 4, logger)
	e.admin = NewMatchAdminService(e.matchRepo, logger)

	fixed := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	e.wallets.now = func() time.Time { return fixed }
	e.joins.now = func() time.Time { return fixed }
	return e
}

func (e *testEngine) seedMatch(t *testing.T, id string, mode match.Mode, fee string, capacity int) match.Match {
	t.Helper()
	m, err := e.admin.UpsertMatch(t.Context(), UpsertMatchInput{
		MatchID:  id,
		Mode:     string(mode),
		EntryFee: decimal.RequireFromString(fee),
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("seed match %s: %v", id, err)
	}
	return m
}

func (e *testEngine) fund(t *testing.T, userID, amount string) {
	t.Helper()
	if _, err := e.wallets.Credit(t.Context(), userID, decimal.RequireFromString(amount), "seed"); err != nil {
		t.Fatalf("fund %s: %v", userID, err)
	}
}

func (e *testEngine) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := e.wallets.GetBalance(t.Context(), userID)
	if err != nil {
		t.Fatalf("get balance %s: %v", userID, err)
	}
	return b
}

func (e *testEngine) joinedCount(t *testing.T, matchID string) int {
	t.Helper()
	m, found, err := e.matchRepo.GetByID(t.Context(), matchID)
	if err != nil || !found {
		t.Fatalf("get match %s: found=%v err=%v", matchID, found, err)
	}
	return m.JoinedCount
}
