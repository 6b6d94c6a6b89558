package httpapi

import (
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/prize"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/riskibarqy/esports-arena/internal/domain/wallet"
	"github.com/riskibarqy/esports-arena/internal/usecase"
	"github.com/shopspring/decimal"
)

// money renders amounts with exactly two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type claimSlotRequest struct {
	Username     string `json:"username" validate:"omitempty,max=64"`
	PlayerGameID string `json:"player_game_id" validate:"omitempty,max=64"`
}

type renameTeamRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type walletAdjustRequest struct {
	Amount    string `json:"amount" validate:"required"`
	Reference string `json:"reference" validate:"required,max=128"`
}

type topUpRequest struct {
	Amount    string `json:"amount" validate:"required"`
	OrderID   string `json:"order_id" validate:"required,max=128"`
	PaymentID string `json:"payment_id" validate:"required,max=128"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

type payoutLineRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Amount string `json:"amount" validate:"required"`
}

type payPrizeRequest struct {
	MatchType string              `json:"match_type" validate:"required,max=32"`
	Rank      int                 `json:"rank"`
	Payouts   []payoutLineRequest `json:"payouts" validate:"required,min=1,max=500,dive"`
	Note      string              `json:"note" validate:"omitempty,max=255"`
}

type upsertMatchRequest struct {
	Title    string `json:"title" validate:"omitempty,max=120"`
	Mode     string `json:"mode" validate:"required,oneof=solo duo squad SOLO DUO SQUAD"`
	EntryFee string `json:"entry_fee"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	IsLocked bool   `json:"is_locked"`
	Status   string `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

type setLockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

type matchDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Mode        string    `json:"mode"`
	EntryFee    string    `json:"entry_fee"`
	Capacity    int       `json:"capacity"`
	JoinedCount int       `json:"joined_count"`
	SeatsLeft   int       `json:"seats_left"`
	TeamSize    int       `json:"team_size,omitempty"`
	GroupCount  int       `json:"group_count,omitempty"`
	IsLocked    bool      `json:"is_locked"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:          m.ID,
		Title:       m.Title,
		Mode:        string(m.Mode),
		EntryFee:    money(m.EntryFee),
		Capacity:    m.Capacity,
		JoinedCount: m.JoinedCount,
		SeatsLeft:   m.SeatsLeft(),
		TeamSize:    m.Mode.TeamSize(),
		GroupCount:  m.GroupCount(),
		IsLocked:    m.IsLocked,
		Status:      string(m.Status),
		UpdatedAt:   m.UpdatedAt,
	}
}

type teamDTO struct {
	ID           string    `json:"id"`
	GroupNo      int       `json:"group_no"`
	Name         string    `json:"name"`
	LeaderUserID string    `json:"leader_user_id,omitempty"`
	Size         int       `json:"size"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:           t.ID,
		GroupNo:      t.GroupNo,
		Name:         t.Name,
		LeaderUserID: t.LeaderUserID,
		Size:         t.Size,
		UpdatedAt:    t.UpdatedAt,
	}
}

type slotDTO struct {
	SlotNo       int        `json:"slot_no"`
	UserID       string     `json:"user_id,omitempty"`
	Username     string     `json:"username,omitempty"`
	PlayerGameID string     `json:"player_game_id,omitempty"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
}

type rosterDTO struct {
	teamDTO
	Slots []slotDTO `json:"slots"`
}

func rosterToDTO(r team.Roster) rosterDTO {
	slots := make([]slotDTO, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, slotDTO{
			SlotNo:       s.SlotNo,
			UserID:       s.UserID,
			Username:     s.Username,
			PlayerGameID: s.PlayerGameID,
			ClaimedAt:    s.ClaimedAt,
		})
	}
	return rosterDTO{teamDTO: teamToDTO(r.Team), Slots: slots}
}

type joinDTO struct {
	MatchID     string   `json:"match_id"`
	UserID      string   `json:"user_id"`
	Fee         string   `json:"fee"`
	Balance     string   `json:"balance"`
	JoinedCount int      `json:"joined_count"`
	Team        *teamDTO `json:"team,omitempty"`
}

func joinToDTO(res usecase.JoinResult) joinDTO {
	out := joinDTO{
		MatchID:     res.MatchID,
		UserID:      res.UserID,
		Fee:         money(res.Fee),
		Balance:     money(res.Balance),
		JoinedCount: res.JoinedCount,
	}
	if res.Team != nil {
		t := teamToDTO(*res.Team)
		out.Team = &t
	}
	return out
}

type entryDTO struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference"`
	BalanceAfter string    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func entryToDTO(e wallet.Entry) entryDTO {
	return entryDTO{
		ID:           e.ID,
		Type:         string(e.Type),
		Amount:       money(e.Amount),
		Status:       string(e.Status),
		Reference:    e.Reference,
		BalanceAfter: money(e.BalanceAfter),
		CreatedAt:    e.CreatedAt,
	}
}

type walletResultDTO struct {
	UserID   string   `json:"user_id"`
	Balance  string   `json:"balance"`
	Entry    entryDTO `json:"entry"`
	Replayed bool     `json:"replayed,omitempty"`
}

func walletResultToDTO(userID string, res usecase.WalletResult) walletResultDTO {
	return walletResultDTO{
		UserID:   userID,
		Balance:  money(res.Balance),
		Entry:    entryToDTO(res.Entry),
		Replayed: res.Replayed,
	}
}

type payoutOutcomeDTO struct {
	UserID   string `json:"user_id"`
	Amount   string `json:"amount"`
	PrizeKey string `json:"prize_key"`
	Status   string `json:"status"`
	Balance  string `json:"balance,omitempty"`
}

type payPrizeDTO struct {
	MatchType   string             `json:"match_type"`
	MatchID     string             `json:"match_id"`
	Rank        int                `json:"rank"`
	Credited    []string           `json:"credited"`
	AlreadyPaid []string           `json:"already_paid"`
	Outcomes    []payoutOutcomeDTO `json:"outcomes"`
}

func payPrizeToDTO(res usecase.PayPrizeResult) payPrizeDTO {
	outcomes := make([]payoutOutcomeDTO, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		dto := payoutOutcomeDTO{
			UserID:   o.UserID,
			Amount:   money(o.Amount),
			PrizeKey: o.PrizeKey,
			Status:   string(o.Status),
		}
		if o.Status == usecase.PayoutStatusCredited {
			dto.Balance = money(o.Balance)
		}
		outcomes = append(outcomes, dto)
	}
	return payPrizeDTO{
		MatchType:   res.MatchType,
		MatchID:     res.MatchID,
		Rank:        res.Rank,
		Credited:    nonNil(res.Credited),
		AlreadyPaid: nonNil(res.AlreadyPaid),
		Outcomes:    outcomes,
	}
}

type matchJoinDTO struct {
	UserID       string    `json:"user_id"`
	Fee          string    `json:"fee"`
	DebitEntryID string    `json:"debit_entry_id,omitempty"`
	TeamID       string    `json:"team_id,omitempty"`
	GroupNo      int       `json:"group_no,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func matchJoinToDTO(j match.Join) matchJoinDTO {
	return matchJoinDTO{
		UserID:       j.UserID,
		Fee:          money(j.Fee),
		DebitEntryID: j.DebitEntryID,
		TeamID:       j.TeamID,
		GroupNo:      j.GroupNo,
		CreatedAt:    j.CreatedAt,
	}
}

type membershipDTO struct {
	MatchID string `json:"match_id"`
	UserID  string `json:"user_id"`
	TeamID  string `json:"team_id"`
	GroupNo int    `json:"group_no"`
}

func membershipToDTO(m team.Member) membershipDTO {
	return membershipDTO{MatchID: m.MatchID, UserID: m.UserID, TeamID: m.TeamID, GroupNo: m.GroupNo}
}

type payoutDTO struct {
	ID        string    `json:"id"`
	MatchType string    `json:"match_type"`
	Rank      int       `json:"rank"`
	UserID    string    `json:"user_id"`
	Amount    string    `json:"amount"`
	PrizeKey  string    `json:"prize_key"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func payoutToDTO(p prize.Payout) payoutDTO {
	return payoutDTO{
		ID:        p.ID,
		MatchType: p.MatchType,
		Rank:      p.Rank,
		UserID:    p.UserID,
		Amount:    money(p.Amount),
		PrizeKey:  p.PrizeKey,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

type driftDTO struct {
	UserID       string `json:"user_id"`
	Materialized string `json:"materialized"`
	LedgerSum    string `json:"ledger_sum"`
}

type reconcileDTO struct {
	Checked    int        `json:"checked"`
	Failed     int        `json:"failed"`
	Drifts     []driftDTO `json:"drifts"`
	DurationMs int64      `json:"duration_ms"`
}

func reconcileToDTO(res usecase.ReconcileResult) reconcileDTO {
	drifts := make([]driftDTO, 0, len(res.Drifts))
	for _, d := range res.Drifts {
		drifts = append(drifts, driftDTO{
			UserID:       d.UserID,
			Materialized: money(d.Materialized),
			LedgerSum:    money(d.LedgerSum),
		})
	}
	return reconcileDTO{
		Checked:    res.Checked,
		Failed:     res.Failed,
		Drifts:     drifts,
		DurationMs: res.DurationMs,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
