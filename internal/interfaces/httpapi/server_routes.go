package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, h)
	}

	mux.Handle("GET /v1/matches/{matchID}", authed(handler.GetMatch))
	mux.Handle("POST /v1/matches/{matchID}/join", authed(handler.JoinMatch))
	mux.Handle("GET /v1/matches/{matchID}/teams", authed(handler.ListTeams))
	mux.Handle("GET /v1/matches/{matchID}/membership", authed(handler.GetMembership))
	mux.Handle("POST /v1/matches/{matchID}/teams/{groupNo}/slots/{slotNo}", authed(handler.ClaimTeamSlot))
	mux.Handle("PUT /v1/matches/{matchID}/teams/{groupNo}", authed(handler.RenameTeam))

	mux.Handle("GET /v1/wallet/balance", authed(handler.GetWalletBalance))
	mux.Handle("GET /v1/wallet/entries", authed(handler.ListWalletEntries))
	mux.Handle("POST /v1/wallet/topups", authed(handler.TopUpWallet))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, policy AdminPolicy) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, RequireAdmin(policy, h))
	}

	mux.Handle("POST /v1/admin/wallets/{userID}/credit", admin(handler.CreditWallet))
	mux.Handle("POST /v1/admin/wallets/{userID}/debit", admin(handler.DebitWallet))
	mux.Handle("POST /v1/admin/wallets/reconcile", admin(handler.ReconcileWallets))
	mux.Handle("PUT /v1/admin/matches/{matchID}", admin(handler.UpsertMatch))
	mux.Handle("GET /v1/admin/matches/{matchID}/joins", admin(handler.ListMatchJoins))
	mux.Handle("PUT /v1/admin/matches/{matchID}/lock", admin(handler.SetMatchLock))
	mux.Handle("POST /v1/admin/matches/{matchID}/prizes", admin(handler.PayPrize))
	mux.Handle("GET /v1/admin/matches/{matchID}/prizes", admin(handler.ListPayouts))
}

// Scheduler-triggered jobs authenticate with a shared token instead of a user.
func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ReconcileWallets)))
}
