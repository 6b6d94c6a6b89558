package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/esports-arena/internal/config"
	"github.com/riskibarqy/esports-arena/internal/infrastructure/payment"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:               config.EnvDev,
		ServiceName:          "esports-arena-api",
		HTTPAddr:             ":0",
		StoreBackend:         config.StoreMemory,
		CacheEnabled:         true,
		CacheTTL:             time.Second,
		SeedDemoData:         true,
		CORSAllowedOrigins:   []string{"*"},
		AuthJWTSecret:        "jwt-secret",
		AuthJWTIssuer:        "arena-accounts",
		AdminUserIDs:         []string{"ops-1"},
		PaymentWebhookSecret: "payment-secret",
		PayoutConcurrency:    2,
		ReconcileWorkers:     2,
	}
}

func bearer(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": "arena-accounts",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func call(t *testing.T, h http.Handler, method, path, auth, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	_ = sonic.Unmarshal(rec.Body.Bytes(), &envelope)
	return rec.Code, envelope.Data
}

func TestNewHTTPServer_MemoryBackendServesSeededMatches(t *testing.T) {
	srv, cleanup, err := NewHTTPServer(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cleanup()) })

	code, data := call(t, srv.Handler, http.MethodGet, "/v1/matches/demo-duo-50", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "50.00", data["entry_fee"])

	signer, err := payment.NewSignatureVerifier("payment-secret", logging.NewNop())
	require.NoError(t, err)
	topup := `{"amount":"60","order_id":"ord-1","payment_id":"pay-1","signature":"` + signer.Sign("ord-1", "pay-1") + `"}`
	code, data = call(t, srv.Handler, http.MethodPost, "/v1/wallet/topups", bearer(t, "u1"), topup)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "60.00", data["balance"])

	code, data = call(t, srv.Handler, http.MethodPost, "/v1/matches/demo-duo-50/join", bearer(t, "u1"), "")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "10.00", data["balance"])

	code, data = call(t, srv.Handler, http.MethodGet, "/v1/matches/demo-duo-50", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, data["joined_count"])
}

func TestNewHTTPServer_AdminAccessFollowsTokenRoles(t *testing.T) {
	srv, cleanup, err := NewHTTPServer(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cleanup()) })

	body := `{"amount":"10","reference":"promo"}`
	code, _ := call(t, srv.Handler, http.MethodPost, "/v1/admin/wallets/u2/credit", bearer(t, "u1"), body)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, srv.Handler, http.MethodPost, "/v1/admin/wallets/u2/credit", bearer(t, "root", "admin"), body)
	require.Equal(t, http.StatusOK, code)

	code, data := call(t, srv.Handler, http.MethodPost, "/v1/admin/wallets/u2/credit", bearer(t, "ops-1"), body)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "20.00", data["balance"])

	code, _ = call(t, srv.Handler, http.MethodGet, "/v1/wallet/balance", "Bearer not-a-jwt", "")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestNewHTTPServer_RejectsBadAlertWebhook(t *testing.T) {
	cfg := memoryConfig()
	cfg.AlertWebhookEnabled = true
	cfg.AlertWebhookURL = "ftp://alerts.example.com"

	_, _, err := NewHTTPServer(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}
