package memory

import (
	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/shopspring/decimal"
)

// SeedMatches is the demo lineup loaded in dev when no matches exist yet.
func SeedMatches() []match.Match {
	return []match.Match{
		{
			ID:       "demo-solo-free",
			Title:    "Daily Solo Scrim",
			Mode:     match.ModeSolo,
			EntryFee: decimal.Zero,
			Capacity: 48,
			Status:   match.StatusUpcoming,
		},
		{
			ID:       "demo-duo-50",
			Title:    "Duo Cup",
			Mode:     match.ModeDuo,
			EntryFee: decimal.NewFromInt(50),
			Capacity: 50,
			Status:   match.StatusUpcoming,
		},
		{
			ID:       "demo-squad-100",
			Title:    "Squad Showdown",
			Mode:     match.ModeSquad,
			EntryFee: decimal.NewFromInt(100),
			Capacity: 100,
			Status:   match.StatusUpcoming,
		},
	}
}
