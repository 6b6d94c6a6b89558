package prize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinRank = 1
	MaxRank = 3
)

type Payout struct {
	ID        string
	MatchType string
	MatchID   string
	Rank      int
	UserID    string
	Amount    decimal.Decimal
	PrizeKey  string
	Note      string
	CreatedAt time.Time
}

// Key derives the payout key for one (match, rank, user) tuple. The result
// only depends on its inputs so a retried payout maps to the same key.
func Key(matchType, matchID string, rank int, userID string) string {
	var b strings.Builder
	b.Grow(len(matchType) + len(matchID) + len(userID) + 16)
	b.WriteString("prize:")
	b.WriteString(matchType)
	b.WriteString(":")
	b.WriteString(matchID)
	b.WriteString(":r")
	b.WriteString(strconv.Itoa(rank))
	b.WriteString(":u")
	b.WriteString(userID)
	return b.String()
}

func EligibleRank(rank int) bool {
	return rank >= MinRank && rank <= MaxRank
}
