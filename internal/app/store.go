package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-arena/internal/config"
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/prize"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/esports-arena/internal/platform/cache"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	matches match.Repository
	teams   team.Repository
	wallets wallet.Repository
	prizes  prize.Repository
	close   func() error
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var (
		repos repositories
		err   error
	)
	switch cfg.StoreBackend {
	case config.StoreMemory:
		repos, err = openMemoryRepositories(ctx, cfg)
	default:
		repos, err = openPostgresRepositories(ctx, cfg, logger)
	}
	if err != nil {
		return repositories{}, err
	}

	if cfg.CacheEnabled {
		repos.matches = cache.NewMatchRepository(repos.matches, basecache.NewStore(cfg.CacheTTL))
	}
	logger.Info("repositories ready",
		"backend", cfg.StoreBackend,
		"cache_enabled", cfg.CacheEnabled,
		"cache_ttl", cfg.CacheTTL.String(),
	)
	return repos, nil
}

func openMemoryRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	matchRepo := memory.NewMatchRepository()
	if cfg.SeedDemoData {
		for _, m := range memory.SeedMatches() {
			if _, err := matchRepo.Upsert(ctx, m); err != nil {
				return repositories{}, fmt.Errorf("seed match %s: %w", m.ID, err)
			}
		}
	}

	return repositories{
		matches: matchRepo,
		teams:   memory.NewTeamRepository(matchRepo),
		wallets: memory.NewWalletRepository(),
		prizes:  memory.NewPrizeRepository(),
		close:   func() error { return nil },
	}, nil
}

func openPostgresRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	dsn := normalizeDBURL(cfg.DBURL, dbURLOptions{
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		ApplicationName:             cfg.ServiceName,
	})
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return repositories{}, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.SeedDemoData {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
	}
	logger.Info("postgres connected", "db_name", dbNameFromURL(dsn), "max_open_conns", cfg.DBMaxOpenConns)

	return postgresRepositories(db), nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		matches: postgres.NewMatchRepository(db),
		teams:   postgres.NewTeamRepository(db),
		wallets: postgres.NewWalletRepository(db),
		prizes:  postgres.NewPrizeRepository(db),
		close:   db.Close,
	}
}
