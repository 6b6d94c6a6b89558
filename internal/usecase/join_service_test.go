package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/shopspring/decimal"
)

func TestJoinService_SoloScenario(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-solo", match.ModeSolo, "50", 1)
	e.fund(t, "u1", "50")
	e.fund(t, "u2", "50")

	res, err := e.joins.JoinMatch(ctx, "m-solo", "u1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if res.State != JoinStateCommitted || res.JoinedCount != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Balance.IsZero() || !e.balance(t, "u1").IsZero() {
		t.Fatalf("expected zero balance, got %s", e.balance(t, "u1"))
	}

	_, err = e.joins.JoinMatch(ctx, "m-solo", "u2")
	if !errors.Is(err, ErrMatchFull) {
		t.Fatalf("expected match full, got %v", err)
	}
	if !e.balance(t, "u2").Equal(decimal.NewFromInt(50)) {
		t.Fatalf("rejected join must not charge, balance=%s", e.balance(t, "u2"))
	}
	if got := e.joinedCount(t, "m-solo"); got != 1 {
		t.Fatalf("unexpected joined_count %d", got)
	}
}

func TestJoinService_DuplicateJoinFailsFast(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m1", match.ModeSolo, "10", 5)
	e.fund(t, "u1", "100")

	if _, err := e.joins.JoinMatch(ctx, "m1", "u1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := e.joins.JoinMatch(ctx, "m1", "u1"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected already joined, got %v", err)
	}

	if got := e.joinedCount(t, "m1"); got != 1 {
		t.Fatalf("duplicate must not take a seat, joined_count=%d", got)
	}
	if !e.balance(t, "u1").Equal(decimal.NewFromInt(90)) {
		t.Fatalf("duplicate must not charge, balance=%s", e.balance(t, "u1"))
	}
}

func TestJoinService_InsufficientFundsRollsBackSeatAndMembership(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "50", 4)
	e.fund(t, "u1", "20")

	_, err := e.joins.JoinMatch(ctx, "m-duo", "u1")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := e.joinedCount(t, "m-duo"); got != 0 {
		t.Fatalf("seat must be released, joined_count=%d", got)
	}
	if _, found, _ := e.teamRepo.GetMembership(ctx, "m-duo", "u1"); found {
		t.Fatalf("rolled back join must leave no membership")
	}
	if _, joined, _ := e.matchRepo.GetJoin(ctx, "m-duo", "u1"); joined {
		t.Fatalf("rolled back join must leave no join record")
	}
	entries, _ := e.wallets.ListEntries(ctx, "u1", 10)
	if len(entries) != 1 {
		t.Fatalf("failed debit must not write entries, got %d", len(entries))
	}
}

func TestJoinService_LockedMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m1", match.ModeSolo, "0", 5)
	if _, err := e.admin.SetLocked(ctx, "m1", true); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if _, err := e.joins.JoinMatch(ctx, "m1", "u1"); !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected match locked, got %v", err)
	}
	if got := e.joinedCount(t, "m1"); got != 0 {
		t.Fatalf("unexpected joined_count %d", got)
	}
}

func TestJoinService_FreeTeamMatchAssignsGroup(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-squad", match.ModeSquad, "0", 8)

	var groups []int
	for i := 1; i <= 5; i++ {
		res, err := e.joins.JoinMatch(ctx, "m-squad", fmt.Sprintf("u%d", i))
		if err != nil {
			t.Fatalf("join u%d: %v", i, err)
		}
		if res.Team == nil {
			t.Fatalf("team mode join must return a team")
		}
		groups = append(groups, res.Team.GroupNo)
	}
	want := []int{1, 1, 1, 1, 2}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("unexpected group assignment %v", groups)
		}
	}
}

func TestJoinService_ConcurrentJoinsRespectCapacity(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	const capacity = 10
	const users = 60
	e.seedMatch(t, "m-rush", match.ModeDuo, "5", capacity)
	for i := 0; i < users; i++ {
		e.fund(t, fmt.Sprintf("u%d", i), "5")
	}

	var wg sync.WaitGroup
	errs := make([]error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.joins.JoinMatch(ctx, "m-rush", fmt.Sprintf("u%d", i))
		}()
	}
	wg.Wait()

	ok, full := 0, 0
	for i, err := range errs {
		switch {
		case err == nil:
			ok++
			if !e.balance(t, fmt.Sprintf("u%d", i)).IsZero() {
				t.Fatalf("joined user u%d must be charged", i)
			}
		case errors.Is(err, ErrMatchFull):
			full++
			if !e.balance(t, fmt.Sprintf("u%d", i)).Equal(decimal.NewFromInt(5)) {
				t.Fatalf("rejected user u%d must keep funds", i)
			}
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != capacity || full != users-capacity {
		t.Fatalf("expected %d joins and %d full, got %d and %d", capacity, users-capacity, ok, full)
	}
	if got := e.joinedCount(t, "m-rush"); got != capacity {
		t.Fatalf("unexpected joined_count %d", got)
	}
}

func TestJoinService_ConcurrentDuplicateJoinChargesOnce(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m1", match.ModeSquad, "10", 20)
	e.fund(t, "u1", "100")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.joins.JoinMatch(ctx, "m1", "u1")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if !errors.Is(err, ErrAlreadyJoined) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one join, got %d", ok)
	}
	if !e.balance(t, "u1").Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected one fee charged, balance=%s", e.balance(t, "u1"))
	}
	if got := e.joinedCount(t, "m1"); got != 1 {
		t.Fatalf("expected one seat taken, got %d", got)
	}
}

func TestJoinService_DuplicateJoinsNeverCrowdOutOthers(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-solo", match.ModeSolo, "10", 2)
	e.fund(t, "u1", "100")
	e.fund(t, "u2", "100")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	var otherErr error
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.joins.JoinMatch(ctx, "m-solo", "u1")
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, otherErr = e.joins.JoinMatch(ctx, "m-solo", "u2")
	}()
	wg.Wait()

	if otherErr != nil {
		t.Fatalf("u2 must get the second seat, got %v", otherErr)
	}
	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if !errors.Is(err, ErrAlreadyJoined) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one join for u1, got %d", ok)
	}
	if got := e.joinedCount(t, "m-solo"); got != 2 {
		t.Fatalf("expected both seats taken, got %d", got)
	}

	// Duplicates wait on the in-flight join instead of debiting and refunding.
	entries, err := e.wallets.ListEntries(ctx, "u1", 50)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected funding credit and one debit, got %d entries", len(entries))
	}
}

func TestJoinService_CallerCancellationStillCommits(t *testing.T) {
	e := newTestEngine(t)
	e.seedMatch(t, "m1", match.ModeSolo, "10", 2)
	e.fund(t, "u1", "10")

	ctx, cancel := context.WithCancel(t.Context())
	blocking := &cancelOnReserve{SeatAllocator: e.seats, cancel: cancel}
	e.joins.seats = blocking

	if _, err := e.joins.JoinMatch(ctx, "m1", "u1"); err != nil {
		t.Fatalf("join must complete after caller cancellation: %v", err)
	}
	if !e.balance(t, "u1").IsZero() || e.joinedCount(t, "m1") != 1 {
		t.Fatalf("join must be fully applied")
	}
}

type cancelOnReserve struct {
	*SeatAllocator
	cancel context.CancelFunc
}

func (c *cancelOnReserve) TryReserveSeat(ctx context.Context, matchID string) (match.Match, error) {
	c.cancel()
	return c.SeatAllocator.TryReserveSeat(ctx, matchID)
}

type failingGrid struct {
	removeErr error
}

func (failingGrid) EnsureMembership(context.Context, match.Match, string) (team.Team, bool, error) {
	return team.Team{}, false, fmt.Errorf("%w: grid offline", ErrStorageFailure)
}

func (g failingGrid) RemoveMembership(context.Context, string, string) error {
	return g.removeErr
}

func TestJoinService_MembershipFailureRefunds(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "25", 4)
	e.fund(t, "u1", "25")
	e.joins.grid = failingGrid{}

	_, err := e.joins.JoinMatch(ctx, "m-duo", "u1")
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if !e.balance(t, "u1").Equal(decimal.NewFromInt(25)) {
		t.Fatalf("fee must be refunded, balance=%s", e.balance(t, "u1"))
	}
	if got := e.joinedCount(t, "m-duo"); got != 0 {
		t.Fatalf("seat must be released, joined_count=%d", got)
	}

	entries, _ := e.wallets.ListEntries(ctx, "u1", 10)
	if len(entries) != 3 || entries[0].Reference != "refund:match:m-duo" {
		t.Fatalf("expected seed, debit and refund entries, got %+v", entries)
	}
}

type failingRefunds struct {
	*WalletService
}

func (failingRefunds) Refund(context.Context, string, decimal.Decimal, string) (WalletResult, error) {
	return WalletResult{}, fmt.Errorf("%w: ledger offline", ErrStorageFailure)
}

func TestJoinService_FailedCompensationRaisesAlert(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "25", 4)
	e.fund(t, "u1", "25")
	e.joins.grid = failingGrid{}
	e.joins.wallets = failingRefunds{WalletService: e.wallets}

	_, err := e.joins.JoinMatch(ctx, "m-duo", "u1")
	if !errors.Is(err, ErrLedgerInconsistency) {
		t.Fatalf("expected ledger inconsistency, got %v", err)
	}
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("inconsistency must keep its cause, got %v", err)
	}

	select {
	case a := <-e.alerts.alerts:
		if a.Kind != alert.KindJoinRollbackFailed || a.Attributes["user_id"] != "u1" {
			t.Fatalf("unexpected alert %+v", a)
		}
	default:
		t.Fatalf("expected an operator alert")
	}
}
