package service

import (
	"context"
	"strings"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type AssignOutcome struct {
	Team     domain.Team
	Previous *domain.Team
	Warnings []string
}

type RosterService struct {
	configs  *guildconfig.Cache
	teams    *repository.TeamRepository
	offers   *repository.OfferRepository
	notifier notify.Notifier
	roles    notify.RoleManager
	logger   zerolog.Logger
}

func NewRosterService(
	configs *guildconfig.Cache,
	teams *repository.TeamRepository,
	offers *repository.OfferRepository,
	notifier notify.Notifier,
	roles notify.RoleManager,
	logger zerolog.Logger,
) *RosterService {
	return &RosterService{
		configs:  configs,
		teams:    teams,
		offers:   offers,
		notifier: notifier,
		roles:    roles,
		logger:   logger,
	}
}

func (s *RosterService) lookup(ctx context.Context, name string) (*domain.Team, error) {
	team, err := s.teams.FindTeamByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, reject(RejectTeamNotFound, "no team named %q", strings.TrimSpace(name))
	}
	return team, nil
}

// AssignTeam gives the user teamName directly, replacing any team they
// held. Outstanding offers from other users do not block it.
func (s *RosterService) AssignTeam(ctx context.Context, guildID, userID, teamName string, announce bool) (*AssignOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	team, err := s.lookup(ctx, teamName)
	if err != nil {
		return nil, err
	}

	holder, err := s.teams.FindAssignmentByTeam(ctx, guildID, team.ID)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.UserID != userID {
		return nil, reject(RejectTeamTaken, "%s is already coached by someone else", team.Name)
	}

	current, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	var previous *domain.Team
	if current != nil {
		if current.Team.ID == team.ID {
			return nil, reject(RejectAlreadyHasTeam, "they already coach %s", team.Name)
		}
		previous = &current.Team
	}

	if previous == nil {
		err = s.teams.UpsertAssignment(ctx, team.ID, userID, guildID)
	} else {
		err = s.teams.ReassignUser(ctx, team.ID, userID, guildID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.offers.DeleteOffers(ctx, repository.OfferFilter{GuildID: guildID, UserID: userID}); err != nil {
		s.logger.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to clear offers after assignment")
	}

	s.logger.Info().Str("guild_id", guildID).Str("user_id", userID).Str("team", team.Name).Msg("team assigned")

	w := grantAndAnnounce(ctx, s.configs, s.roles, s.notifier, s.logger, guildID, userID, *team, previous, announce)
	return &AssignOutcome{Team: *team, Previous: previous, Warnings: w}, nil
}

// ResetTeam removes the user's assignment and head coach role.
func (s *RosterService) ResetTeam(ctx context.Context, guildID, userID string) (*AssignOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	current, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, reject(RejectNoTeam, "that user does not coach a team")
	}

	if _, err := s.teams.DeleteAssignment(ctx, current.Team.ID, guildID); err != nil {
		return nil, err
	}

	s.logger.Info().Str("guild_id", guildID).Str("user_id", userID).Str("team", current.Team.Name).Msg("team reset")

	var w warnings
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		w.add("could not load config to remove role: %v", err)
	} else if err := s.roles.RevokeHeadCoach(ctx, guildID, userID, cfg.HeadCoachRole, cfg.HeadCoachRoleID); err != nil {
		s.logger.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to revoke head coach role")
		w.add("could not remove the %s role: %v", cfg.HeadCoachRole, err)
	}

	deliver(ctx, s.notifier, s.logger, notify.Notification{
		Kind:   notify.KindCoachReleased,
		Target: notify.Target{GuildID: guildID, Channel: domain.ChannelSignedCoaches, Fallback: domain.ChannelNewsFeed},
		UserID: userID,
		Team:   &current.Team,
	}, &w)

	return &AssignOutcome{Team: current.Team, Warnings: w}, nil
}

// MoveCoach moves a coach from their current team to newTeam.
func (s *RosterService) MoveCoach(ctx context.Context, guildID, userID, newTeam string) (*AssignOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	current, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, reject(RejectNoTeam, "that user does not coach a team")
	}

	team, err := s.lookup(ctx, newTeam)
	if err != nil {
		return nil, err
	}
	if team.ID == current.Team.ID {
		return nil, reject(RejectInvalidInput, "they already coach %s", team.Name)
	}

	holder, err := s.teams.FindAssignmentByTeam(ctx, guildID, team.ID)
	if err != nil {
		return nil, err
	}
	if holder != nil {
		return nil, reject(RejectTeamTaken, "%s is already coached by someone else", team.Name)
	}

	if err := s.teams.ReassignUser(ctx, team.ID, userID, guildID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("guild_id", guildID).
		Str("user_id", userID).
		Str("from", current.Team.Name).
		Str("to", team.Name).
		Msg("coach moved")

	previous := current.Team
	var w warnings
	deliver(ctx, s.notifier, s.logger, notify.Notification{
		Kind:         notify.KindCoachMoved,
		Target:       notify.Target{GuildID: guildID, Channel: domain.ChannelSignedCoaches, Fallback: domain.ChannelNewsFeed},
		UserID:       userID,
		Team:         team,
		PreviousTeam: &previous,
	}, &w)

	return &AssignOutcome{Team: *team, Previous: &previous, Warnings: w}, nil
}

// ListTeams returns every team with its coach in this guild, if any.
func (s *RosterService) ListTeams(ctx context.Context, guildID string) ([]domain.TeamStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var (
		teams       []domain.Team
		assignments []domain.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teams.ListTeams(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.teams.ListAssignments(gctx, guildID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	coaches := make(map[int64]string, len(assignments))
	for _, a := range assignments {
		coaches[a.Team.ID] = a.UserID
	}

	out := make([]domain.TeamStatus, len(teams))
	for i, t := range teams {
		out[i] = domain.TeamStatus{Team: t, UserID: coaches[t.ID]}
	}
	return out, nil
}

func (s *RosterService) TeamForUser(ctx context.Context, guildID, userID string) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.teams.FindAssignmentByUser(ctx, guildID, userID)
}

// SearchTeams backs autocomplete. With onlyOpen set, teams coached in the
// guild are left out.
func (s *RosterService) SearchTeams(ctx context.Context, guildID, query string, onlyOpen bool) ([]domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	teams, err := s.teams.SearchTeams(ctx, query, constants.AutocompleteLimit*2)
	if err != nil {
		return nil, err
	}
	if onlyOpen {
		assignments, err := s.teams.ListAssignments(ctx, guildID)
		if err != nil {
			return nil, err
		}
		taken := make(map[int64]bool, len(assignments))
		for _, a := range assignments {
			taken[a.Team.ID] = true
		}
		open := teams[:0]
		for _, t := range teams {
			if !taken[t.ID] {
				open = append(open, t)
			}
		}
		teams = open
	}
	if len(teams) > constants.AutocompleteLimit {
		teams = teams[:constants.AutocompleteLimit]
	}
	return teams, nil
}
