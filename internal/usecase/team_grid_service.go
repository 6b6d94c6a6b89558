package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/esports-arena/internal/domain/match"
	"github.com/riskibarqy/esports-arena/internal/domain/team"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTeamNameLength    = 32
	maxDisplayNameLength = 64
)

type ClaimSlotInput struct {
	MatchID      string
	GroupNo      int
	SlotNo       int
	UserID       string
	Username     string
	PlayerGameID string
}

type RenameTeamInput struct {
	MatchID string
	GroupNo int
	Name    string
	UserID  string
}

type TeamGridService struct {
	matches match.Repository
	teams   team.Repository
	logger  *logging.Logger
	now     func() time.Time
}

func NewTeamGridService(matches match.Repository, teams team.Repository, logger *logging.Logger) *TeamGridService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamGridService{
		matches: matches,
		teams:   teams,
		logger:  logger.Named("team_grid"),
		now:     time.Now,
	}
}

// EnsureMembership places userID into the lowest group with room. created is
// false when the user already had a membership in this match.
func (s *TeamGridService) EnsureMembership(ctx context.Context, m match.Match, userID string) (team.Team, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamGridService.EnsureMembership")
	defer span.End()

	if !m.Mode.IsTeamMode() {
		return team.Team{}, false, fmt.Errorf("%w: %s match has no team grid", ErrInvalidInput, m.Mode)
	}

	t, created, err := s.teams.EnsureMembership(ctx, gridOf(m), team.Member{
		MatchID:   m.ID,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return team.Team{}, false, storageFailure("ensure membership", err)
	}
	return t, created, nil
}

func (s *TeamGridService) RemoveMembership(ctx context.Context, matchID, userID string) error {
	if err := s.teams.RemoveMembership(ctx, matchID, userID); err != nil {
		return storageFailure("remove membership", err)
	}
	return nil
}

func (s *TeamGridService) ClaimSlot(ctx context.Context, input ClaimSlotInput) (result team.Team, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamGridService.ClaimSlot",
		attribute.Int("team.group_no", input.GroupNo),
		attribute.Int("team.slot_no", input.SlotNo),
	)
	defer func() { endSpan(span, err) }()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Username = strings.TrimSpace(input.Username)
	input.PlayerGameID = strings.TrimSpace(input.PlayerGameID)
	if input.UserID == "" {
		return team.Team{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.Username) > maxDisplayNameLength || utf8.RuneCountInString(input.PlayerGameID) > maxDisplayNameLength {
		return team.Team{}, fmt.Errorf("%w: display fields must be at most %d characters", ErrInvalidInput, maxDisplayNameLength)
	}

	m, err := s.teamMatch(ctx, input.MatchID)
	if err != nil {
		return team.Team{}, err
	}
	grid := gridOf(m)
	if !grid.ValidGroup(input.GroupNo) {
		return team.Team{}, fmt.Errorf("%w: group_no must be between 1 and %d", ErrInvalidInput, grid.GroupCount)
	}
	if !grid.ValidSlot(input.SlotNo) {
		return team.Team{}, fmt.Errorf("%w: slot_no must be between 1 and %d", ErrInvalidInput, grid.TeamSize)
	}
	if m.IsLocked {
		return team.Team{}, fmt.Errorf("%w: match %s", ErrMatchLocked, m.ID)
	}

	t, err := s.teams.ClaimSlot(ctx, grid, input.GroupNo, input.SlotNo, input.UserID, team.DisplayFields{
		Username:     input.Username,
		PlayerGameID: input.PlayerGameID,
	})
	if err != nil {
		return team.Team{}, s.mapGridError(ctx, "claim slot", err, input.MatchID, input.UserID)
	}

	s.logger.InfoContext(ctx, "team slot claimed",
		"match_id", m.ID,
		"group_no", input.GroupNo,
		"slot_no", input.SlotNo,
		"user_id", input.UserID,
		"leader", t.LeaderUserID == input.UserID,
	)
	return t, nil
}

func (s *TeamGridService) RenameTeam(ctx context.Context, input RenameTeamInput) (result team.Team, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamGridService.RenameTeam")
	defer func() { endSpan(span, err) }()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return team.Team{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" || utf8.RuneCountInString(input.Name) > maxTeamNameLength {
		return team.Team{}, fmt.Errorf("%w: team name must be 1-%d characters", ErrInvalidInput, maxTeamNameLength)
	}

	m, err := s.teamMatch(ctx, input.MatchID)
	if err != nil {
		return team.Team{}, err
	}
	if !gridOf(m).ValidGroup(input.GroupNo) {
		return team.Team{}, fmt.Errorf("%w: group_no out of range", ErrInvalidInput)
	}

	t, err := s.teams.RenameTeam(ctx, m.ID, input.GroupNo, input.Name, input.UserID)
	if err != nil {
		return team.Team{}, s.mapGridError(ctx, "rename team", err, m.ID, input.UserID)
	}
	return t, nil
}

func (s *TeamGridService) ListTeams(ctx context.Context, matchID string) ([]team.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamGridService.ListTeams")
	defer span.End()

	m, err := s.teamMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	rosters, err := s.teams.ListRosters(ctx, m.ID)
	if err != nil {
		return nil, storageFailure("list rosters", err)
	}
	return rosters, nil
}

func (s *TeamGridService) GetMembership(ctx context.Context, matchID, userID string) (team.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamGridService.GetMembership")
	defer span.End()

	m, err := s.teamMatch(ctx, matchID)
	if err != nil {
		return team.Member{}, err
	}
	member, found, err := s.teams.GetMembership(ctx, m.ID, strings.TrimSpace(userID))
	if err != nil {
		return team.Member{}, storageFailure("get membership", err)
	}
	if !found {
		return team.Member{}, fmt.Errorf("%w: user %s has no place in match %s", ErrNotJoined, userID, m.ID)
	}
	return member, nil
}

func (s *TeamGridService) teamMatch(ctx context.Context, matchID string) (match.Match, error) {
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
	if !m.Mode.IsTeamMode() {
		return match.Match{}, fmt.Errorf("%w: %s match has no team grid", ErrInvalidInput, m.Mode)
	}
	return m, nil
}

func (s *TeamGridService) mapGridError(ctx context.Context, op string, err error, matchID, userID string) error {
	switch {
	case errors.Is(err, team.ErrSlotTaken):
		return fmt.Errorf("%w: %w", ErrSlotTaken, err)
	case errors.Is(err, team.ErrAlreadyInTeam):
		return fmt.Errorf("%w: %w", ErrAlreadyInTeam, err)
	case errors.Is(err, team.ErrMatchLocked):
		return fmt.Errorf("%w: match %s", ErrMatchLocked, matchID)
	case errors.Is(err, team.ErrNotLeader):
		return fmt.Errorf("%w: %w", ErrNotLeader, err)
	case errors.Is(err, team.ErrNotMember):
		return fmt.Errorf("%w: user %s has not joined match %s", ErrNotJoined, userID, matchID)
	case errors.Is(err, team.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		s.logger.ErrorContext(ctx, op+" failed", "match_id", matchID, "user_id", userID, "error", err)
		return storageFailure(op, err)
	}
}

func gridOf(m match.Match) team.Grid {
	return team.Grid{
		MatchID:    m.ID,
		TeamSize:   m.Mode.TeamSize(),
		GroupCount: m.GroupCount(),
	}
}
