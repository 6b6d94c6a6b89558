package match

import (
	"time"

	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeDuo   Mode = "duo"
	ModeSquad Mode = "squad"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSolo, ModeDuo, ModeSquad:
		return true
	default:
		return false
	}
}

// TeamSize is the number of slots per group; zero for solo.
func (m Mode) TeamSize() int {
	switch m {
	case ModeDuo:
		return 2
	case ModeSquad:
		return 4
	default:
		return 0
	}
}

func (m Mode) IsTeamMode() bool {
	return m.TeamSize() > 0
}

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Match struct {
	ID          string
	Title       string
	Mode        Mode
	EntryFee    decimal.Decimal
	Capacity    int
	JoinedCount int
	IsLocked    bool
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupCount is the number of team groups the grid may grow to.
func (m Match) GroupCount() int {
	size := m.Mode.TeamSize()
	if size == 0 || m.Capacity <= 0 {
		return 0
	}
	return (m.Capacity + size - 1) / size
}

func (m Match) SeatsLeft() int {
	if left := m.Capacity - m.JoinedCount; left > 0 {
		return left
	}
	return 0
}

func (m Match) IsFree() bool {
	return !m.EntryFee.IsPositive()
}

// Join is the commit marker of a successful join.
type Join struct {
	MatchID      string
	UserID       string
	Fee          decimal.Decimal
	DebitEntryID string
	TeamID       string
	GroupNo      int
	CreatedAt    time.Time
}
