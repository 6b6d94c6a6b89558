package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/esports-arena/internal/usecase"
	"github.com/shopspring/decimal"
)

func (h *Handler) PayPrize(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PayPrize")
	defer span.End()

	var req payPrizeRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lines := make([]usecase.PayoutLine, 0, len(req.Payouts))
	for _, p := range req.Payouts {
		amount, err := parseAmount("payouts.amount", p.Amount)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		lines = append(lines, usecase.PayoutLine{UserID: p.UserID, Amount: amount})
	}

	matchID := r.PathValue("matchID")
	result, err := h.prizeService.PayPrize(ctx, usecase.PayPrizeInput{
		MatchType: req.MatchType,
		MatchID:   matchID,
		Rank:      req.Rank,
		Payouts:   lines,
		Note:      req.Note,
	})
	if err != nil {
		h.logFailure(ctx, "pay prize failed", err,
			"match_id", matchID,
			"rank", req.Rank,
			"credited", result.Credited,
			"already_paid", result.AlreadyPaid,
		)
		if len(result.Outcomes) == 0 {
			writeError(ctx, w, err)
			return
		}
		writeErrorWithData(ctx, w, err, payPrizeToDTO(result))
		return
	}

	h.logger.InfoContext(ctx, "prize paid",
		"match_id", matchID,
		"rank", req.Rank,
		"credited", len(result.Credited),
		"already_paid", len(result.AlreadyPaid),
	)
	writeSuccess(ctx, w, http.StatusOK, payPrizeToDTO(result))
}

func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPayouts")
	defer span.End()

	matchID := r.PathValue("matchID")
	payouts, err := h.prizeService.ListPayouts(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "list payouts failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	items := make([]payoutDTO, 0, len(payouts))
	for _, p := range payouts {
		items = append(items, payoutToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchJoins(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchJoins")
	defer span.End()

	matchID := r.PathValue("matchID")
	joins, err := h.matchAdmin.ListJoins(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "list match joins failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchJoinDTO, 0, len(joins))
	for _, j := range joins {
		items = append(items, matchJoinToDTO(j))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpsertMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertMatch")
	defer span.End()

	var req upsertMatchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	fee := decimal.Zero
	if strings.TrimSpace(req.EntryFee) != "" {
		parsed, err := parseAmount("entry_fee", req.EntryFee)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		fee = parsed
	}

	matchID := r.PathValue("matchID")
	m, err := h.matchAdmin.UpsertMatch(ctx, usecase.UpsertMatchInput{
		MatchID:  matchID,
		Title:    req.Title,
		Mode:     req.Mode,
		EntryFee: fee,
		Capacity: req.Capacity,
		IsLocked: req.IsLocked,
		Status:   req.Status,
	})
	if err != nil {
		h.logFailure(ctx, "upsert match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) SetMatchLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMatchLock")
	defer span.End()

	var req setLockRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	m, err := h.matchAdmin.SetLocked(ctx, matchID, *req.Locked)
	if err != nil {
		h.logFailure(ctx, "set match lock failed", err, "match_id", matchID, "locked", *req.Locked)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) ReconcileWallets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReconcileWallets")
	defer span.End()

	result, err := h.reconcileService.ReconcileAll(ctx)
	if err != nil {
		h.logFailure(ctx, "reconcile wallets failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reconcileToDTO(result))
}
