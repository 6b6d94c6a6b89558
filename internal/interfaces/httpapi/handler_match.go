package httpapi

import (
	"net/http"

	"github.com/riskibarqy/esports-arena/internal/usecase"
)

func (h *Handler) JoinMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinMatch")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	result, err := h.joinService.JoinMatch(ctx, matchID, principal.UserID)
	if err != nil {
		h.logFailure(ctx, "join match failed", err, "match_id", matchID, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, joinToDTO(result))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	m, err := h.matchAdmin.GetMatch(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "get match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	matchID := r.PathValue("matchID")
	rosters, err := h.teamGridService.ListTeams(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "list teams failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterDTO, 0, len(rosters))
	for _, roster := range rosters {
		items = append(items, rosterToDTO(roster))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// GetMembership returns the caller's own team placement.
func (h *Handler) GetMembership(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMembership")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	member, err := h.teamGridService.GetMembership(ctx, matchID, principal.UserID)
	if err != nil {
		h.logFailure(ctx, "get membership failed", err, "match_id", matchID, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(member))
}

func (h *Handler) ClaimTeamSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClaimTeamSlot")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	groupNo, err := pathInt(r, "groupNo")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	slotNo, err := pathInt(r, "slotNo")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req claimSlotRequest
	if r.ContentLength != 0 {
		if err := h.decodeRequest(ctx, w, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	matchID := r.PathValue("matchID")
	claimed, err := h.teamGridService.ClaimSlot(ctx, usecase.ClaimSlotInput{
		MatchID:      matchID,
		GroupNo:      groupNo,
		SlotNo:       slotNo,
		UserID:       principal.UserID,
		Username:     req.Username,
		PlayerGameID: req.PlayerGameID,
	})
	if err != nil {
		h.logFailure(ctx, "claim team slot failed", err,
			"match_id", matchID,
			"group_no", groupNo,
			"slot_no", slotNo,
			"user_id", principal.UserID,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(claimed))
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	groupNo, err := pathInt(r, "groupNo")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req renameTeamRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	renamed, err := h.teamGridService.RenameTeam(ctx, usecase.RenameTeamInput{
		MatchID: matchID,
		GroupNo: groupNo,
		Name:    req.Name,
		UserID:  principal.UserID,
	})
	if err != nil {
		h.logFailure(ctx, "rename team failed", err, "match_id", matchID, "group_no", groupNo, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(renamed))
}
