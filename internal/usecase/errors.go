package usecase

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Business outcomes. Callers branch on these with errors.Is.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrMatchFull          = errors.New("match full")
	ErrMatchLocked        = errors.New("match locked")
	ErrMatchInUse         = errors.New("match in use")
	ErrAlreadyJoined      = errors.New("already joined")
	ErrNotJoined          = errors.New("not joined")
	ErrSlotTaken          = errors.New("slot taken")
	ErrAlreadyInTeam      = errors.New("already in team")
	ErrNotLeader          = errors.New("not team leader")
	ErrDuplicatePayout    = errors.New("duplicate payout")
	ErrInvalidRank        = errors.New("invalid rank")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrPaymentNotVerified = errors.New("payment not verified")
)

var (
	ErrStorageFailure = errors.New("storage failure")
	// ErrLedgerInconsistency marks money moved without the matching
	// seat or payout state (or the reverse). It always raises an alert.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

func ledgerInconsistency(cause error, format string, args ...any) error {
	return crerr.WithDetailf(fmt.Errorf("%w: %w", ErrLedgerInconsistency, cause), format, args...)
}

// IsBusinessError reports whether err is an expected outcome rather than a
// fault of the engine or its store.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrNotFound, ErrInsufficientFunds, ErrMatchFull, ErrMatchLocked, ErrMatchInUse,
		ErrAlreadyJoined, ErrNotJoined, ErrSlotTaken, ErrAlreadyInTeam, ErrNotLeader,
		ErrDuplicatePayout, ErrInvalidRank, ErrInvalidAmount, ErrPaymentNotVerified,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
