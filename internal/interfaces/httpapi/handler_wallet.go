package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/esports-arena/internal/domain/payment"
	"github.com/riskibarqy/esports-arena/internal/usecase"
	"github.com/shopspring/decimal"
)

type balanceDTO struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

func (h *Handler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWalletBalance")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	balance, err := h.walletService.GetBalance(ctx, principal.UserID)
	if err != nil {
		h.logFailure(ctx, "get wallet balance failed", err, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, balanceDTO{UserID: principal.UserID, Balance: money(balance)})
}

func (h *Handler) ListWalletEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWalletEntries")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
	}

	entries, err := h.walletService.ListEntries(ctx, principal.UserID, limit)
	if err != nil {
		h.logFailure(ctx, "list wallet entries failed", err, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	items := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TopUpWallet")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req topUpRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.walletService.TopUp(ctx, usecase.TopUpInput{
		UserID: principal.UserID,
		Amount: amount,
		Proof: payment.Proof{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		},
	})
	if err != nil {
		h.logFailure(ctx, "wallet top-up failed", err, "user_id", principal.UserID, "order_id", req.OrderID)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, walletResultToDTO(principal.UserID, result))
}

func (h *Handler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreditWallet")
	defer span.End()

	h.adjustWallet(w, r.WithContext(ctx), "credit", h.walletService.Credit)
}

func (h *Handler) DebitWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DebitWallet")
	defer span.End()

	h.adjustWallet(w, r.WithContext(ctx), "debit", h.walletService.Debit)
}

type walletAdjustFunc func(ctx context.Context, userID string, amount decimal.Decimal, reference string) (usecase.WalletResult, error)

func (h *Handler) adjustWallet(w http.ResponseWriter, r *http.Request, op string, apply walletAdjustFunc) {
	ctx := r.Context()
	userID := strings.TrimSpace(r.PathValue("userID"))

	var req walletAdjustRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := apply(ctx, userID, amount, req.Reference)
	if err != nil {
		h.logFailure(ctx, "admin wallet "+op+" failed", err, "user_id", userID, "reference", req.Reference)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin wallet "+op, "user_id", userID, "amount", amount, "entry_id", result.Entry.ID)
	writeSuccess(ctx, w, http.StatusOK, walletResultToDTO(userID, result))
}
