package match

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("match: not found")
	ErrMatchFull           = errors.New("match: full")
	ErrMatchLocked         = errors.New("match: locked")
	ErrAlreadyJoined       = errors.New("match: already joined")
	ErrCapacityBelowJoined = errors.New("match: capacity below joined count")
	// ErrGridInUse rejects a mode change once seats or team groups exist, and
	// a capacity cut that would leave an existing group outside the grid.
	ErrGridInUse = errors.New("match: team grid in use")
)

type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	// Upsert writes collaborator-owned metadata. JoinedCount is never taken
	// from the input; an update may not shrink capacity below it and may not
	// reshape a grid that is already in use.
	Upsert(ctx context.Context, m Match) (Match, error)
	SetLocked(ctx context.Context, matchID string, locked bool) (Match, error)
	// TryReserveSeat increments joined_count in one conditional step. It fails
	// with ErrMatchLocked, ErrMatchFull, or ErrNotFound.
	TryReserveSeat(ctx context.Context, matchID string) (Match, error)
	// ReleaseSeat decrements joined_count, never below zero.
	ReleaseSeat(ctx context.Context, matchID string) error

	GetJoin(ctx context.Context, matchID, userID string) (Join, bool, error)
	// CreateJoin fails with ErrAlreadyJoined when (match, user) exists.
	CreateJoin(ctx context.Context, join Join) error
	ListJoins(ctx context.Context, matchID string) ([]Join, error)
}
