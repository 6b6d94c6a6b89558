package app

import (
	"context"
	"fmt"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-arena/internal/config"
	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/alertsink"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/payment"
	"github.com/riskibarqy/esports-arena/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/esports-arena/internal/platform/id"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/riskibarqy/esports-arena/internal/platform/resilience"
	"github.com/riskibarqy/esports-arena/internal/usecase"
)

// NewHTTPServer wires repositories, services and the router. The returned
// cleanup closes the store and must run after the server stops.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	alerts, err := newAlertNotifier(cfg, logger)
	if err != nil {
		_ = repos.close()
		return nil, nil, err
	}

	paymentVerifier, err := payment.NewSignatureVerifier(cfg.PaymentWebhookSecret, logger)
	if err != nil {
		_ = repos.close()
		return nil, nil, crerr.Wrap(err, "build payment verifier")
	}
	tokenVerifier, err := jwtauth.NewVerifier(jwtauth.Config{
		Secret: cfg.AuthJWTSecret,
		Issuer: cfg.AuthJWTIssuer,
		Leeway: cfg.AuthJWTLeeway,
	}, logger)
	if err != nil {
		_ = repos.close()
		return nil, nil, crerr.Wrap(err, "build token verifier")
	}

	walletSvc := usecase.NewWalletService(repos.wallets, paymentVerifier, idgen.NewPrefixedGenerator("led_"), logger)
	gridSvc := usecase.NewTeamGridService(repos.matches, repos.teams, logger)
	joinSvc := usecase.NewJoinService(
		repos.matches,
		usecase.NewSeatAllocator(repos.matches, logger),
		walletSvc,
		gridSvc,
		alerts,
		logger,
	)
	prizeSvc := usecase.NewPrizeService(
		repos.prizes,
		walletSvc,
		alerts,
		idgen.NewPrefixedGenerator("pay_"),
		cfg.PayoutConcurrency,
		logger,
	)
	adminSvc := usecase.NewMatchAdminService(repos.matches, logger)
	reconcileSvc := usecase.NewReconcileService(repos.wallets, alerts, cfg.ReconcileWorkers, logger)

	handler := httpapi.NewHandler(walletSvc, joinSvc, gridSvc, prizeSvc, adminSvc, reconcileSvc, logger)
	router := httpapi.NewRouter(handler, tokenVerifier, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminUserIDs:       cfg.AdminUserIDs,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, repos.close, nil
}

func newAlertNotifier(cfg config.Config, logger *logging.Logger) (alert.Notifier, error) {
	sinks := []alert.Notifier{alertsink.NewLogNotifier(logger)}
	if cfg.AlertWebhookEnabled {
		webhook, err := alertsink.NewWebhookNotifier(alertsink.WebhookConfig{
			URL:     cfg.AlertWebhookURL,
			Token:   cfg.AlertWebhookToken,
			Timeout: cfg.AlertWebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AlertCircuitEnabled,
				FailureThreshold: cfg.AlertCircuitFailureCount,
				OpenTimeout:      cfg.AlertCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AlertCircuitHalfOpenMaxReq,
			},
		}, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, webhook)
	}
	return alertsink.NewMultiNotifier(sinks...), nil
}
