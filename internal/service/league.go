package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dynasty-bot/internal/config"
	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/repository"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
)

type Week15Choice int

const (
	Week15Continue Week15Choice = iota
	Week15Skip
)

// Week15Chooser asks the invoking admin whether to play Week 15 or skip to
// the conference championships. ctx carries the prompt deadline.
type Week15Chooser interface {
	ChooseWeek15(ctx context.Context, t league.Transition) (Week15Choice, error)
}

type Week15ChooserFunc func(ctx context.Context, t league.Transition) (Week15Choice, error)

func (f Week15ChooserFunc) ChooseWeek15(ctx context.Context, t league.Transition) (Week15Choice, error) {
	return f(ctx, t)
}

type AdvanceOutcome struct {
	Previous league.State
	Meta     domain.Meta
	Hours    int
	Rollover bool
	Skipped  bool
	Recap    []domain.Result
	Warnings []string
}

type ResultOutcome struct {
	Result   domain.Result
	Record1  domain.Record
	Record2  domain.Record
	Warnings []string
}

type Standings struct {
	Season  int
	Records []domain.Record
}

type LeagueService struct {
	configs       *guildconfig.Cache
	seasons       *repository.SeasonRepository
	teams         *repository.TeamRepository
	notifier      notify.Notifier
	clock         clock.Clock
	promptTimeout time.Duration
	logger        zerolog.Logger
}

func NewLeagueService(
	configs *guildconfig.Cache,
	seasons *repository.SeasonRepository,
	teams *repository.TeamRepository,
	notifier notify.Notifier,
	clk clock.Clock,
	cfg *config.Config,
	logger zerolog.Logger,
) *LeagueService {
	timeout := cfg.Week15PromptTimeout
	if timeout <= 0 {
		timeout = constants.Week15PromptTimeout
	}
	return &LeagueService{
		configs:       configs,
		seasons:       seasons,
		teams:         teams,
		notifier:      notifier,
		clock:         clk,
		promptTimeout: timeout,
		logger:        logger,
	}
}

func (s *LeagueService) State(ctx context.Context, guildID string) (domain.Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.seasons.GetMeta(ctx, guildID)
}

// Advance moves the league one step and sets a new deadline hours from now.
// hours of zero selects the guild's first configured window. Entering Week
// 15 consults chooser; no answer within the prompt timeout leaves the league
// where it was. A nil chooser abandons the advance at Week 15.
func (s *LeagueService) Advance(ctx context.Context, guildID string, hours int, chooser Week15Chooser) (*AdvanceOutcome, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, domain.FeatureAdvanceSystem); err != nil {
		return nil, err
	}
	if hours == 0 {
		hours = cfg.DefaultInterval()
	}
	if !cfg.AllowsInterval(hours) {
		return nil, reject(RejectInvalidInterval, "%d hours is not an allowed advance window (allowed: %s)",
			hours, guildconfig.FormatIntervals(cfg.AdvanceIntervals))
	}

	meta, err := s.seasons.GetMeta(ctx, guildID)
	if err != nil {
		return nil, err
	}

	tr := league.Advance(meta.State)
	if tr.NeedsWeek15Choice() {
		if chooser == nil {
			return nil, reject(RejectAdvanceAbandoned, "Week 15 needs a continue or skip choice; the league was not advanced")
		}
		promptCtx, cancel := context.WithTimeout(ctx, s.promptTimeout)
		choice, err := chooser.ChooseWeek15(promptCtx, tr)
		cancel()
		if err != nil {
			s.logger.Info().Err(err).Str("guild_id", guildID).Msg("week 15 prompt abandoned")
			return nil, reject(RejectAdvanceAbandoned, "no choice was made for Week 15; the league was not advanced")
		}
		if choice == Week15Skip {
			tr = tr.SkipToConfChamp()
		}
	}

	var w warnings
	out := &AdvanceOutcome{
		Previous: meta.State,
		Hours:    hours,
		Rollover: tr.Rollover,
		Skipped:  tr.Skipped,
	}

	// The recap covers the week being closed; it is held until the commit
	// succeeds so a losing advance announces nothing.
	var recap *notify.Notification
	if meta.State.Phase == league.Regular {
		results, err := s.seasons.ListResults(ctx, guildID, meta.State)
		if err != nil {
			return nil, err
		}
		out.Recap = results
		recap = &notify.Notification{
			Kind:    notify.KindWeekRecap,
			Target:  notify.Target{GuildID: guildID, Channel: domain.ChannelAdvanceTracker, Fallback: domain.ChannelNewsFeed},
			State:   meta.State,
			Results: results,
		}
	}

	deadline := s.clock.Now().UTC().Add(time.Duration(hours) * time.Hour)
	next := domain.Meta{
		GuildID:         guildID,
		State:           tr.To,
		Week:            tr.To.Week(),
		AdvanceHours:    hours,
		AdvanceDeadline: &deadline,
	}

	ok, err := s.seasons.AdvanceMeta(ctx, guildID, meta.State, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject(RejectConcurrentAdvance, "the league was advanced by someone else; check the current week and try again")
	}
	out.Meta = next

	s.logger.Info().
		Str("guild_id", guildID).
		Str("from", meta.State.String()).
		Str("to", tr.To.String()).
		Int("hours", hours).
		Bool("rollover", tr.Rollover).
		Bool("skipped", tr.Skipped).
		Msg("league advanced")

	if recap != nil {
		deliver(ctx, s.notifier, s.logger, *recap, &w)
	}
	deliver(ctx, s.notifier, s.logger, notify.Notification{
		Kind:          notify.KindAdvance,
		Target:        notify.Target{GuildID: guildID, Channel: domain.ChannelAdvanceTracker, Fallback: domain.ChannelNewsFeed},
		State:         tr.To,
		PreviousState: meta.State,
		Deadline:      deadline,
		Hours:         hours,
		Skipped:       tr.Skipped,
	}, &w)

	if tr.Rollover {
		deliver(ctx, s.notifier, s.logger, notify.Notification{
			Kind:          notify.KindSeasonRollover,
			Target:        notify.Target{GuildID: guildID, Channel: domain.ChannelNewsFeed},
			State:         tr.To,
			PreviousState: meta.State,
		}, &w)
	}

	out.Warnings = w
	return out, nil
}

// SubmitResult records a game played by the caller's own team.
func (s *LeagueService) SubmitResult(ctx context.Context, guildID, userID, opponent string, yourScore, opponentScore int) (*ResultOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, ""); err != nil {
		return nil, err
	}

	own, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if own == nil {
		return nil, reject(RejectNoTeam, "you do not coach a team in this league")
	}

	opp, err := s.findTeam(ctx, opponent)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, guildID, userID, own.Team, *opp, yourScore, opponentScore)
}

// AdminResult records a game between any two teams.
func (s *LeagueService) AdminResult(ctx context.Context, guildID, adminID, team1, team2 string, score1, score2 int) (*ResultOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, ""); err != nil {
		return nil, err
	}

	t1, err := s.findTeam(ctx, team1)
	if err != nil {
		return nil, err
	}
	t2, err := s.findTeam(ctx, team2)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, guildID, adminID, *t1, *t2, score1, score2)
}

func (s *LeagueService) findTeam(ctx context.Context, name string) (*domain.Team, error) {
	team, err := s.teams.FindTeamByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, reject(RejectTeamNotFound, "no team named %q", strings.TrimSpace(name))
	}
	return team, nil
}

func (s *LeagueService) record(ctx context.Context, guildID, submittedBy string, team1, team2 domain.Team, score1, score2 int) (*ResultOutcome, error) {
	if team1.ID == team2.ID {
		return nil, reject(RejectInvalidInput, "a team cannot play itself")
	}
	for _, score := range []int{score1, score2} {
		if score < 0 || score > constants.MaxScore {
			return nil, reject(RejectInvalidInput, "score %d is out of range", score)
		}
	}

	meta, err := s.seasons.GetMeta(ctx, guildID)
	if err != nil {
		return nil, err
	}

	result, err := s.seasons.RecordResult(ctx, domain.Result{
		GuildID:     guildID,
		State:       meta.State,
		Week:        meta.State.Week(),
		Team1:       team1,
		Team2:       team2,
		Score1:      score1,
		Score2:      score2,
		SubmittedBy: submittedBy,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("guild_id", guildID).Msg("failed to record result")
		return nil, err
	}

	rec1, err := s.seasons.GetRecord(ctx, team1.ID, meta.State.Season, guildID)
	if err != nil {
		return nil, err
	}
	rec2, err := s.seasons.GetRecord(ctx, team2.ID, meta.State.Season, guildID)
	if err != nil {
		return nil, err
	}
	rec1.Team, rec2.Team = team1, team2

	s.logger.Info().
		Str("guild_id", guildID).
		Str("team1", team1.Name).
		Str("team2", team2.Name).
		Int("score1", score1).
		Int("score2", score2).
		Msg("result recorded")

	var w warnings
	deliver(ctx, s.notifier, s.logger, notify.Notification{
		Kind:    notify.KindGameResult,
		Target:  notify.Target{GuildID: guildID, Channel: domain.ChannelNewsFeed},
		State:   meta.State,
		UserID:  submittedBy,
		Results: []domain.Result{result},
	}, &w)

	return &ResultOutcome{Result: result, Record1: rec1, Record2: rec2, Warnings: w}, nil
}

func (s *LeagueService) Standings(ctx context.Context, guildID string) (*Standings, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, domain.FeatureRankings); err != nil {
		return nil, err
	}

	meta, err := s.seasons.GetMeta(ctx, guildID)
	if err != nil {
		return nil, err
	}
	records, err := s.seasons.ListRecords(ctx, guildID, meta.State.Season)
	if err != nil {
		return nil, err
	}
	return &Standings{Season: meta.State.Season, Records: records}, nil
}

func (s *LeagueService) AllTimeStandings(ctx context.Context, guildID string) (*Standings, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, domain.FeatureRankings); err != nil {
		return nil, err
	}

	records, err := s.seasons.ListAllTimeRecords(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return &Standings{Records: records}, nil
}

func (s *LeagueService) PressRelease(ctx context.Context, guildID, userID, message string) (*domain.PressRelease, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireReady(cfg, domain.FeaturePressReleases); err != nil {
		return nil, nil, err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, nil, reject(RejectInvalidInput, "a press release needs a message")
	}
	if len(message) > constants.MaxPressReleaseLength {
		return nil, nil, reject(RejectInvalidInput, "press releases are limited to %d characters", constants.MaxPressReleaseLength)
	}

	pr := domain.PressRelease{GuildID: guildID, AuthorID: userID, Message: message}
	assignment, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, nil, err
	}
	if assignment != nil {
		pr.TeamName = assignment.Team.Name
	}

	saved, err := s.seasons.InsertPressRelease(ctx, pr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save press release: %w", err)
	}

	var w warnings
	msg := notify.Notification{
		Kind:    notify.KindPressRelease,
		Target:  notify.Target{GuildID: guildID, Channel: domain.ChannelNewsFeed},
		UserID:  userID,
		Message: saved.Message,
	}
	if assignment != nil {
		msg.Team = &assignment.Team
	}
	deliver(ctx, s.notifier, s.logger, msg, &w)

	return &saved, w, nil
}
