package team

import (
	"context"
	"errors"
)

var (
	ErrSlotTaken     = errors.New("team: slot taken")
	ErrAlreadyInTeam = errors.New("team: user already holds a slot")
	ErrNotLeader     = errors.New("team: requester is not leader")
	ErrMatchLocked   = errors.New("team: match locked")
	ErrNotMember     = errors.New("team: user has no membership")
	ErrGridFull      = errors.New("team: no group has room")
	ErrNotFound      = errors.New("team: not found")
)

type Repository interface {
	// EnsureMembership returns the caller's existing membership with
	// created=false, or places the user into the lowest group with room.
	EnsureMembership(ctx context.Context, grid Grid, member Member) (Team, bool, error)
	GetMembership(ctx context.Context, matchID, userID string) (Member, bool, error)
	RemoveMembership(ctx context.Context, matchID, userID string) error
	// ClaimSlot occupies a null slot in one conditional step and sets the
	// team leader when unset.
	ClaimSlot(ctx context.Context, grid Grid, groupNo, slotNo int, userID string, display DisplayFields) (Team, error)
	RenameTeam(ctx context.Context, matchID string, groupNo int, name, requesterUserID string) (Team, error)
	ListRosters(ctx context.Context, matchID string) ([]Roster, error)
}
