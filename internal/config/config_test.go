package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")
		t.Setenv("AUTH_JWT_SECRET", "prod-secret")
		t.Setenv("PAYMENT_WEBHOOK_SECRET", "prod-payment-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "esports-arena-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "esports-arena-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 2*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_StoreBackend(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults to postgres", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreBackend != StorePostgres {
			t.Fatalf("unexpected store backend: %q", cfg.StoreBackend)
		}
		if cfg.DBMaxOpenConns != 20 {
			t.Fatalf("unexpected default max open conns: %d", cfg.DBMaxOpenConns)
		}
	})

	t.Run("memory is case insensitive", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", " Memory ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreBackend != StoreMemory {
			t.Fatalf("unexpected store backend: %q", cfg.StoreBackend)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "redis")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_BACKEND")
		}
	})

	t.Run("max open conns must be positive", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "")
		t.Setenv("DB_MAX_OPEN_CONNS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for DB_MAX_OPEN_CONNS=0")
		}
	})
}

func TestLoad_SecretsRequiredOutsideDev(t *testing.T) {
	t.Run("dev falls back to development secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_JWT_SECRET", "")
		t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AuthJWTSecret == "" || cfg.PaymentWebhookSecret == "" {
			t.Fatalf("expected development secrets in dev")
		}
		if !cfg.SeedDemoData {
			t.Fatalf("expected demo seed enabled in dev by default")
		}
	})

	t.Run("stage requires jwt secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvStage)
		t.Setenv("AUTH_JWT_SECRET", "")
		t.Setenv("PAYMENT_WEBHOOK_SECRET", "payment-secret")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when AUTH_JWT_SECRET is empty in stage")
		}
	})

	t.Run("prod requires payment secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
		t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when PAYMENT_WEBHOOK_SECRET is empty in prod")
		}
	})

	t.Run("prod with secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
		t.Setenv("PAYMENT_WEBHOOK_SECRET", "payment-secret")
		t.Setenv("AUTH_JWT_ISSUER", "arena-auth")
		t.Setenv("AUTH_JWT_LEEWAY", "1m")
		t.Setenv("ADMIN_USER_IDS", "ops-1, ops-2,")
		t.Setenv("SEED_DEMO_DATA", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AuthJWTSecret != "jwt-secret" || cfg.AuthJWTIssuer != "arena-auth" {
			t.Fatalf("unexpected auth config: %+v", cfg)
		}
		if cfg.AuthJWTLeeway != time.Minute {
			t.Fatalf("unexpected leeway: %s", cfg.AuthJWTLeeway)
		}
		if len(cfg.AdminUserIDs) != 2 || cfg.AdminUserIDs[1] != "ops-2" {
			t.Fatalf("unexpected admin ids: %+v", cfg.AdminUserIDs)
		}
		if cfg.SeedDemoData {
			t.Fatalf("expected demo seed disabled in prod by default")
		}
	})
}

func TestLoad_AlertWebhookConfig(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("ALERT_WEBHOOK_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AlertWebhookEnabled {
			t.Fatalf("expected AlertWebhookEnabled=false by default")
		}
		if cfg.AlertCircuitFailureCount != 5 || cfg.AlertCircuitOpenTimeout != 30*time.Second {
			t.Fatalf("unexpected circuit defaults: %d %s", cfg.AlertCircuitFailureCount, cfg.AlertCircuitOpenTimeout)
		}
	})

	t.Run("enabled requires url", func(t *testing.T) {
		t.Setenv("ALERT_WEBHOOK_ENABLED", "true")
		t.Setenv("ALERT_WEBHOOK_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when ALERT_WEBHOOK_ENABLED=true without ALERT_WEBHOOK_URL")
		}
	})

	t.Run("enabled with values", func(t *testing.T) {
		t.Setenv("ALERT_WEBHOOK_ENABLED", "true")
		t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/arena")
		t.Setenv("ALERT_WEBHOOK_TIMEOUT", "2s")
		t.Setenv("ALERT_CIRCUIT_FAILURE_COUNT", "3")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AlertWebhookURL != "https://hooks.example.com/arena" || cfg.AlertWebhookTimeout != 2*time.Second {
			t.Fatalf("unexpected webhook config: %q %s", cfg.AlertWebhookURL, cfg.AlertWebhookTimeout)
		}
		if cfg.AlertCircuitFailureCount != 3 {
			t.Fatalf("unexpected failure count: %d", cfg.AlertCircuitFailureCount)
		}
	})

	t.Run("failure count must be positive", func(t *testing.T) {
		t.Setenv("ALERT_WEBHOOK_ENABLED", "false")
		t.Setenv("ALERT_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for ALERT_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_WorkerPools(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PayoutConcurrency != 4 || cfg.ReconcileWorkers != 8 {
		t.Fatalf("unexpected worker defaults: payout=%d reconcile=%d", cfg.PayoutConcurrency, cfg.ReconcileWorkers)
	}

	t.Setenv("PAYOUT_CONCURRENCY", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative PAYOUT_CONCURRENCY")
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev/1"`)
	if got != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("foo=bar") != "" {
		t.Fatalf("expected empty dsn when header is absent")
	}
}
