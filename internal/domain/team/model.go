package team

import (
	"strconv"
	"time"
)

type Team struct {
	ID           string
	MatchID      string
	GroupNo      int
	Name         string
	LeaderUserID string
	Size         int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t Team) HasLeader() bool {
	return t.LeaderUserID != ""
}

// TeamID is stable per (match, group) so lazily created groups converge on
// one row under concurrent creation.
func TeamID(matchID string, groupNo int) string {
	return "tm_" + matchID + "_" + strconv.Itoa(groupNo)
}

func DefaultName(groupNo int) string {
	return "Team " + strconv.Itoa(groupNo)
}

type Slot struct {
	TeamID       string
	SlotNo       int
	UserID       string
	Username     string
	PlayerGameID string
	ClaimedAt    *time.Time
}

func (s Slot) Occupied() bool {
	return s.UserID != ""
}

// Member places a joined user into a group. It does not hold a slot.
type Member struct {
	MatchID   string
	UserID    string
	TeamID    string
	GroupNo   int
	CreatedAt time.Time
}

type DisplayFields struct {
	Username     string
	PlayerGameID string
}

type Roster struct {
	Team  Team
	Slots []Slot
}

// Grid describes the shape of a match's team grid.
type Grid struct {
	MatchID    string
	TeamSize   int
	GroupCount int
}

func (g Grid) ValidGroup(groupNo int) bool {
	return groupNo >= 1 && groupNo <= g.GroupCount
}

func (g Grid) ValidSlot(slotNo int) bool {
	return slotNo >= 1 && slotNo <= g.TeamSize
}
