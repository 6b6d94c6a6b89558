package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
)

func TestTeamGridService_ConcurrentClaimSameSlot(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "0", 4)
	for _, u := range []string{"u1", "u2"} {
		if _, err := e.joins.JoinMatch(ctx, "m-duo", u); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, u := range []string{"u1", "u2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-duo", GroupNo: 1, SlotNo: 1, UserID: u, Username: u})
		}()
	}
	wg.Wait()

	winner := ""
	for i, err := range errs {
		switch {
		case err == nil:
			winner = []string{"u1", "u2"}[i]
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winner == "" || (errs[0] == nil) == (errs[1] == nil) {
		t.Fatalf("expected exactly one winner, got %v", errs)
	}

	rosters, err := e.grid.ListTeams(ctx, "m-duo")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if rosters[0].Team.LeaderUserID != winner {
		t.Fatalf("winner %s must lead the team, leader=%s", winner, rosters[0].Team.LeaderUserID)
	}
	if rosters[0].Slots[0].UserID != winner {
		t.Fatalf("slot 1 must hold the winner")
	}
}

func TestTeamGridService_ClaimRequiresJoin(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-squad", match.ModeSquad, "0", 8)

	_, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-squad", GroupNo: 1, SlotNo: 1, UserID: "stranger"})
	if !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected not joined, got %v", err)
	}
}

func TestTeamGridService_ClaimValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-squad", match.ModeSquad, "0", 8)
	e.seedMatch(t, "m-solo", match.ModeSolo, "0", 8)
	if _, err := e.joins.JoinMatch(ctx, "m-squad", "u1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	cases := []ClaimSlotInput{
		{MatchID: "m-squad", GroupNo: 3, SlotNo: 1, UserID: "u1"},
		{MatchID: "m-squad", GroupNo: 1, SlotNo: 5, UserID: "u1"},
		{MatchID: "m-squad", GroupNo: 0, SlotNo: 1, UserID: "u1"},
		{MatchID: "m-solo", GroupNo: 1, SlotNo: 1, UserID: "u1"},
	}
	for _, in := range cases {
		if _, err := e.grid.ClaimSlot(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected invalid input, got %v", in, err)
		}
	}

	if _, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "missing", GroupNo: 1, SlotNo: 1, UserID: "u1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTeamGridService_OneSlotPerUserPerMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-squad", match.ModeSquad, "0", 8)
	if _, err := e.joins.JoinMatch(ctx, "m-squad", "u1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-squad", GroupNo: 1, SlotNo: 2, UserID: "u1"}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-squad", GroupNo: 2, SlotNo: 1, UserID: "u1"})
	if !errors.Is(err, ErrAlreadyInTeam) {
		t.Fatalf("expected already in team, got %v", err)
	}
}

func TestTeamGridService_RenameTeam(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "0", 4)
	for i := 1; i <= 2; i++ {
		if _, err := e.joins.JoinMatch(ctx, "m-duo", fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	if _, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-duo", GroupNo: 1, SlotNo: 1, UserID: "u1"}); err != nil {
		t.Fatalf("claim u1: %v", err)
	}
	if _, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-duo", GroupNo: 1, SlotNo: 2, UserID: "u2"}); err != nil {
		t.Fatalf("claim u2: %v", err)
	}

	if _, err := e.grid.RenameTeam(ctx, RenameTeamInput{MatchID: "m-duo", GroupNo: 1, Name: "Night Owls", UserID: "u2"}); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("expected not leader, got %v", err)
	}

	renamed, err := e.grid.RenameTeam(ctx, RenameTeamInput{MatchID: "m-duo", GroupNo: 1, Name: "  Night Owls ", UserID: "u1"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Night Owls" {
		t.Fatalf("unexpected name %q", renamed.Name)
	}

	again, err := e.grid.RenameTeam(ctx, RenameTeamInput{MatchID: "m-duo", GroupNo: 1, Name: "Night Owls", UserID: "u1"})
	if err != nil || !again.UpdatedAt.Equal(renamed.UpdatedAt) {
		t.Fatalf("unchanged rename must be a no-op, err=%v", err)
	}

	if _, err := e.admin.SetLocked(ctx, "m-duo", true); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := e.grid.RenameTeam(ctx, RenameTeamInput{MatchID: "m-duo", GroupNo: 1, Name: "Late", UserID: "u1"}); !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected locked, got %v", err)
	}
	if _, err := e.grid.ClaimSlot(ctx, ClaimSlotInput{MatchID: "m-duo", GroupNo: 2, SlotNo: 1, UserID: "u2"}); !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected locked, got %v", err)
	}
}

func TestTeamGridService_GetMembership(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()
	e.seedMatch(t, "m-duo", match.ModeDuo, "0", 6)
	for _, u := range []string{"u1", "u2", "u3"} {
		if _, err := e.joins.JoinMatch(ctx, "m-duo", u); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}

	member, err := e.grid.GetMembership(ctx, "m-duo", "u3")
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if member.GroupNo != 2 || member.TeamID == "" {
		t.Fatalf("expected u3 in group 2, got %+v", member)
	}

	if _, err := e.grid.GetMembership(ctx, "m-duo", "stranger"); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected not joined, got %v", err)
	}

	e.seedMatch(t, "m-solo", match.ModeSolo, "0", 4)
	if _, err := e.grid.GetMembership(ctx, "m-solo", "u1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("solo match has no grid, got %v", err)
	}
}
