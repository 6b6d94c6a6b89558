package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/shopspring/decimal"
)

const maxMatchCapacity = 10000

type UpsertMatchInput struct {
	MatchID  string
	Title    string
	Mode     string
	EntryFee decimal.Decimal
	Capacity int
	IsLocked bool
	Status   string
}

// MatchAdminService syncs the metadata the engine reads from the match
// management side and flips the lock gate.
type MatchAdminService struct {
	matches match.Repository
	logger  *logging.Logger
	now     func() time.Time
}

func NewMatchAdminService(matches match.Repository, logger *logging.Logger) *MatchAdminService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchAdminService{
		matches: matches,
		logger:  logger.Named("match_admin"),
		now:     time.Now,
	}
}

func (s *MatchAdminService) UpsertMatch(ctx context.Context, input UpsertMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAdminService.UpsertMatch")
	defer span.End()

	m, err := validateUpsertMatch(input)
	if err != nil {
		return match.Match{}, err
	}
	now := s.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	saved, err := s.matches.Upsert(ctx, m)
	switch {
	case err == nil:
	case errors.Is(err, match.ErrCapacityBelowJoined):
		return match.Match{}, fmt.Errorf("%w: capacity %d is below seats already taken", ErrInvalidInput, m.Capacity)
	case errors.Is(err, match.ErrGridInUse):
		return match.Match{}, fmt.Errorf("%w: match %s already has seats or teams; mode %s and capacity %d would reshape its grid", ErrMatchInUse, m.ID, m.Mode, m.Capacity)
	default:
		return match.Match{}, storageFailure("upsert match", err)
	}

	s.logger.InfoContext(ctx, "match metadata synced",
		"match_id", saved.ID,
		"mode", saved.Mode,
		"capacity", saved.Capacity,
		"entry_fee", saved.EntryFee,
		"locked", saved.IsLocked,
	)
	return saved, nil
}

func (s *MatchAdminService) SetLocked(ctx context.Context, matchID string, locked bool) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAdminService.SetLocked")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, err := s.matches.SetLocked(ctx, matchID, locked)
	switch {
	case err == nil:
	case errors.Is(err, match.ErrNotFound):
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	default:
		return match.Match{}, storageFailure("set match lock", err)
	}

	s.logger.InfoContext(ctx, "match lock changed", "match_id", matchID, "locked", locked)
	return m, nil
}

func (s *MatchAdminService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAdminService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	m, found, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, storageFailure("get match", err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	return m, nil
}

// ListJoins returns the committed joins of a match, oldest first.
func (s *MatchAdminService) ListJoins(ctx context.Context, matchID string) ([]match.Join, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAdminService.ListJoins")
	defer span.End()

	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	joins, err := s.matches.ListJoins(ctx, m.ID)
	if err != nil {
		return nil, storageFailure("list joins", err)
	}
	return joins, nil
}

func validateUpsertMatch(input UpsertMatchInput) (match.Match, error) {
	m := match.Match{
		ID:       strings.TrimSpace(input.MatchID),
		Title:    strings.TrimSpace(input.Title),
		Mode:     match.Mode(strings.ToLower(strings.TrimSpace(input.Mode))),
		EntryFee: input.EntryFee,
		Capacity: input.Capacity,
		IsLocked: input.IsLocked,
		Status:   match.Status(strings.ToLower(strings.TrimSpace(input.Status))),
	}
	if m.Status == "" {
		m.Status = match.StatusUpcoming
	}

	switch {
	case m.ID == "" || strings.Contains(m.ID, ":"):
		return match.Match{}, fmt.Errorf("%w: match id is required and may not contain ':'", ErrInvalidInput)
	case !m.Mode.Valid():
		return match.Match{}, fmt.Errorf("%w: mode must be solo, duo or squad", ErrInvalidInput)
	case !m.Status.Valid():
		return match.Match{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, m.Status)
	case m.Capacity < 1 || m.Capacity > maxMatchCapacity:
		return match.Match{}, fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidInput, maxMatchCapacity)
	case m.EntryFee.IsNegative():
		return match.Match{}, fmt.Errorf("%w: entry fee may not be negative", ErrInvalidAmount)
	}
	if m.EntryFee.IsPositive() {
		if err := ValidateAmount(m.EntryFee); err != nil {
			return match.Match{}, err
		}
	}
	return m, nil
}
