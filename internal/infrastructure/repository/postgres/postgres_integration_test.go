package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/prize"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration tests are skipped with -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("arena_test"),
		tcpostgres.WithUsername("arena"),
		tcpostgres.WithPassword("arena"),
		tcpostgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test": "esports-arena-repository"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	m, err := migrate.New("file://"+filepath.ToSlash(migrationsDir), dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}
	_, _ = m.Close()

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(32)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedTestMatch(t *testing.T, repo *MatchRepository, id string, mode match.Mode, fee int64, capacity int) match.Match {
	t.Helper()
	now := time.Now().UTC()
	m, err := repo.Upsert(t.Context(), match.Match{
		ID:        id,
		Title:     id,
		Mode:      mode,
		EntryFee:  decimal.NewFromInt(fee),
		Capacity:  capacity,
		Status:    match.StatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return m
}

func TestPostgresRepositories(t *testing.T) {
	db := setupTestDB(t)
	wallets := NewWalletRepository(db)
	matches := NewMatchRepository(db)
	teams := NewTeamRepository(db)
	prizes := NewPrizeRepository(db)

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		ctx := t.Context()
		_, err := wallets.Apply(ctx, wallet.Entry{
			ID: "seed-u1", UserID: "u1", Type: wallet.EntryTypeCredit,
			Amount: decimal.NewFromInt(100), Status: wallet.EntryStatusSuccess, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := wallets.Apply(ctx, wallet.Entry{
					ID: fmt.Sprintf("debit-%d", i), UserID: "u1", Type: wallet.EntryTypeDebit,
					Amount: decimal.NewFromInt(10), Status: wallet.EntryStatusSuccess, CreatedAt: time.Now().UTC(),
				})
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, ok)
		balance, err := wallets.GetBalance(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, balance.IsZero())

		drift, err := wallets.CheckDrift(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, drift.Diverged())
	})

	t.Run("idempotency key is unique", func(t *testing.T) {
		ctx := t.Context()
		entry := wallet.Entry{
			ID: "topup-1", UserID: "u2", Type: wallet.EntryTypeCredit, Amount: decimal.NewFromInt(5),
			Status: wallet.EntryStatusSuccess, IdempotencyKey: "topup:order-1", CreatedAt: time.Now().UTC(),
		}
		_, err := wallets.Apply(ctx, entry)
		require.NoError(t, err)

		entry.ID = "topup-2"
		_, err = wallets.Apply(ctx, entry)
		require.ErrorIs(t, err, wallet.ErrDuplicateEntry)

		balance, err := wallets.GetBalance(ctx, "u2")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(5)), "rejected duplicate must roll back the balance")

		found, ok, err := wallets.GetEntryByIdempotencyKey(ctx, "topup:order-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "topup-1", found.ID)
	})

	t.Run("seat reservation respects capacity and lock", func(t *testing.T) {
		ctx := t.Context()
		seedTestMatch(t, matches, "pg-rush", match.ModeSolo, 0, 5)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			reserved int
		)
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := matches.TryReserveSeat(ctx, "pg-rush")
				if err == nil {
					mu.Lock()
					reserved++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, match.ErrMatchFull)
			}()
		}
		wg.Wait()
		assert.Equal(t, 5, reserved)

		_, err := matches.Upsert(ctx, match.Match{ID: "pg-rush", Mode: match.ModeSolo, Capacity: 4, Status: match.StatusUpcoming})
		require.ErrorIs(t, err, match.ErrCapacityBelowJoined)

		require.NoError(t, matches.ReleaseSeat(ctx, "pg-rush"))
		_, err = matches.SetLocked(ctx, "pg-rush", true)
		require.NoError(t, err)
		_, err = matches.TryReserveSeat(ctx, "pg-rush")
		require.ErrorIs(t, err, match.ErrMatchLocked)

		_, err = matches.TryReserveSeat(ctx, "missing")
		require.ErrorIs(t, err, match.ErrNotFound)
	})

	t.Run("join record is unique per user", func(t *testing.T) {
		ctx := t.Context()
		seedTestMatch(t, matches, "pg-join", match.ModeSolo, 10, 5)
		join := match.Join{MatchID: "pg-join", UserID: "u1", Fee: decimal.NewFromInt(10), CreatedAt: time.Now().UTC()}
		require.NoError(t, matches.CreateJoin(ctx, join))
		require.ErrorIs(t, matches.CreateJoin(ctx, join), match.ErrAlreadyJoined)

		got, found, err := matches.GetJoin(ctx, "pg-join", "u1")
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, got.Fee.Equal(decimal.NewFromInt(10)))
	})

	t.Run("team grid placement and claims", func(t *testing.T) {
		ctx := t.Context()
		m := seedTestMatch(t, matches, "pg-duo", match.ModeDuo, 0, 4)
		grid := team.Grid{MatchID: m.ID, TeamSize: 2, GroupCount: m.GroupCount()}

		for i, want := range []int{1, 1, 2, 2} {
			tm, created, err := teams.EnsureMembership(ctx, grid, team.Member{UserID: fmt.Sprintf("u%d", i)})
			require.NoError(t, err)
			require.True(t, created)
			assert.Equal(t, want, tm.GroupNo)
		}
		_, created, err := teams.EnsureMembership(ctx, grid, team.Member{UserID: "u0"})
		require.NoError(t, err)
		assert.False(t, created)

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = teams.ClaimSlot(ctx, grid, 1, 1, fmt.Sprintf("u%d", i), team.DisplayFields{})
			}()
		}
		wg.Wait()
		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			assert.ErrorIs(t, err, team.ErrSlotTaken)
		}
		assert.Equal(t, 1, winners)

		_, err = teams.ClaimSlot(ctx, grid, 2, 1, "u2", team.DisplayFields{Username: "two"})
		require.NoError(t, err)
		_, err = teams.ClaimSlot(ctx, grid, 2, 2, "u2", team.DisplayFields{})
		require.ErrorIs(t, err, team.ErrAlreadyInTeam)
		_, err = teams.ClaimSlot(ctx, grid, 2, 2, "stranger", team.DisplayFields{})
		require.ErrorIs(t, err, team.ErrNotMember)

		_, err = teams.RenameTeam(ctx, m.ID, 2, "Owls", "u3")
		require.ErrorIs(t, err, team.ErrNotLeader)
		renamed, err := teams.RenameTeam(ctx, m.ID, 2, "Owls", "u2")
		require.NoError(t, err)
		assert.Equal(t, "Owls", renamed.Name)

		_, err = matches.SetLocked(ctx, m.ID, true)
		require.NoError(t, err)
		_, err = teams.RenameTeam(ctx, m.ID, 2, "Late", "u2")
		require.ErrorIs(t, err, team.ErrMatchLocked)
		_, err = teams.ClaimSlot(ctx, grid, 2, 2, "u3", team.DisplayFields{})
		require.ErrorIs(t, err, team.ErrMatchLocked)

		rosters, err := teams.ListRosters(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, rosters, 2)
		assert.Equal(t, "u2", rosters[1].Team.LeaderUserID)
		assert.Len(t, rosters[1].Slots, 2)

		reshaped := match.Match{ID: m.ID, Title: m.Title, Mode: match.ModeSquad, Capacity: 4, Status: match.StatusUpcoming}
		_, err = matches.Upsert(ctx, reshaped)
		require.ErrorIs(t, err, match.ErrGridInUse)
		reshaped.Mode = match.ModeDuo
		reshaped.Capacity = 2
		_, err = matches.Upsert(ctx, reshaped)
		require.ErrorIs(t, err, match.ErrGridInUse)
		reshaped.Capacity = 6
		grown, err := matches.Upsert(ctx, reshaped)
		require.NoError(t, err)
		assert.Equal(t, match.ModeDuo, grown.Mode)
	})

	t.Run("prize key is unique", func(t *testing.T) {
		ctx := t.Context()
		payout := prize.Payout{
			ID: "pay-1", MatchType: "match", MatchID: "55", Rank: 1, UserID: "7",
			Amount: decimal.NewFromInt(300), PrizeKey: prize.Key("match", "55", 1, "7"), CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, prizes.Create(ctx, payout))
		payout.ID = "pay-2"
		require.ErrorIs(t, prizes.Create(ctx, payout), prize.ErrDuplicatePayout)

		list, err := prizes.ListByMatch(ctx, "55")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "pay-1", list[0].ID)
	})
}
