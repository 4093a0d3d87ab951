package service

import (
	"context"
	"math/rand/v2"
	"time"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/repository"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type OfferBatch struct {
	Offers    []domain.Offer
	ExpiresAt time.Time
	// Existing is set when the batch was already outstanding and is being
	// shown again.
	Existing bool
}

type AcceptOutcome struct {
	Team     domain.Team
	Warnings []string
}

type SweepReport struct {
	Expired        int
	Users          int
	NotifyFailures int
}

type OfferService struct {
	configs  *guildconfig.Cache
	teams    *repository.TeamRepository
	offers   *repository.OfferRepository
	notifier notify.Notifier
	roles    notify.RoleManager
	clock    clock.Clock
	shuffle  func(n int, swap func(i, j int))
	logger   zerolog.Logger
}

func NewOfferService(
	configs *guildconfig.Cache,
	teams *repository.TeamRepository,
	offers *repository.OfferRepository,
	notifier notify.Notifier,
	roles notify.RoleManager,
	clk clock.Clock,
	logger zerolog.Logger,
) *OfferService {
	return &OfferService{
		configs:  configs,
		teams:    teams,
		offers:   offers,
		notifier: notifier,
		roles:    roles,
		clock:    clk,
		shuffle:  rand.Shuffle,
		logger:   logger,
	}
}

// Request hands the user a batch of job offers. An outstanding batch is
// returned unchanged; otherwise a fresh batch is drawn from teams that are
// rated in range, unassigned, and not held by any unexpired offer in the
// guild. An empty pool yields an empty batch.
func (s *OfferService) Request(ctx context.Context, guildID, userID string) (*OfferBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := requireReady(cfg, domain.FeatureJobOffers); err != nil {
		return nil, err
	}

	current, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, reject(RejectAlreadyHasTeam, "you already coach %s", current.Team.Name)
	}

	now := s.clock.Now().UTC()
	existing, err := s.offers.ListOffers(ctx, repository.OfferFilter{GuildID: guildID, UserID: userID, ActiveAt: now})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.logger.Debug().Str("guild_id", guildID).Str("user_id", userID).Int("count", len(existing)).Msg("resending outstanding offers")
		return &OfferBatch{Offers: existing, ExpiresAt: existing[0].ExpiresAt, Existing: true}, nil
	}

	var (
		locked      []domain.Offer
		assignments []domain.Assignment
		rated       []domain.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locked, err = s.offers.ListOffers(gctx, repository.OfferFilter{GuildID: guildID, ActiveAt: now})
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.teams.ListAssignments(gctx, guildID)
		return err
	})
	g.Go(func() error {
		var err error
		rated, err = s.teams.ListTeamsByRating(gctx, cfg.JobOffers.MinStars, cfg.JobOffers.MaxStars)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unavailable := make(map[int64]bool, len(locked)+len(assignments))
	for _, o := range locked {
		unavailable[o.Team.ID] = true
	}
	for _, a := range assignments {
		unavailable[a.Team.ID] = true
	}

	pool := make([]domain.Team, 0, len(rated))
	for _, t := range rated {
		if !unavailable[t.ID] {
			pool = append(pool, t)
		}
	}

	if len(pool) == 0 {
		s.logger.Info().Str("guild_id", guildID).Str("user_id", userID).Msg("no eligible teams for job offers")
		return &OfferBatch{}, nil
	}

	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	picks := pool[:min(cfg.JobOffers.Count, len(pool))]

	expiresAt := now.Add(time.Duration(cfg.JobOffers.ExpiryHours) * time.Hour)
	batch := make([]domain.Offer, len(picks))
	for i, t := range picks {
		batch[i] = domain.Offer{GuildID: guildID, UserID: userID, Team: t, ExpiresAt: expiresAt}
	}

	saved, err := s.offers.InsertOffers(ctx, batch)
	if err != nil {
		s.logger.Error().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to insert job offers")
		return nil, err
	}

	s.logger.Info().
		Str("guild_id", guildID).
		Str("user_id", userID).
		Int("offers", len(saved)).
		Int("pool", len(pool)).
		Time("expires_at", expiresAt).
		Msg("job offers issued")

	return &OfferBatch{Offers: saved, ExpiresAt: expiresAt}, nil
}

// Accept claims teamID for the user from one of their unexpired offers and
// forfeits the rest of their offers in the guild.
func (s *OfferService) Accept(ctx context.Context, guildID, userID string, teamID int64) (*AcceptOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	now := s.clock.Now().UTC()
	offers, err := s.offers.ListOffers(ctx, repository.OfferFilter{
		GuildID:  guildID,
		UserID:   userID,
		TeamID:   teamID,
		ActiveAt: now,
	})
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, reject(RejectOfferUnavailable, "this offer is no longer available")
	}
	team := offers[0].Team

	holder, err := s.teams.FindAssignmentByTeam(ctx, guildID, teamID)
	if err != nil {
		return nil, err
	}
	if holder != nil {
		return nil, reject(RejectTeamTaken, "%s has already been taken", team.Name)
	}

	current, err := s.teams.FindAssignmentByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, reject(RejectAlreadyHasTeam, "you already coach %s", current.Team.Name)
	}

	claimed, err := s.teams.ClaimTeam(ctx, teamID, userID, guildID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, reject(RejectTeamTaken, "%s has already been taken", team.Name)
	}

	if _, err := s.offers.DeleteOffers(ctx, repository.OfferFilter{GuildID: guildID, UserID: userID}); err != nil {
		// the assignment stands; leftover rows lapse at expiry
		s.logger.Error().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to clear accepted offers")
	}

	s.logger.Info().Str("guild_id", guildID).Str("user_id", userID).Str("team", team.Name).Msg("job offer accepted")

	w := grantAndAnnounce(ctx, s.configs, s.roles, s.notifier, s.logger, guildID, userID, team, nil, true)
	return &AcceptOutcome{Team: team, Warnings: w}, nil
}

// grantAndAnnounce gives the new coach the head coach role and announces the
// signing. Both are best effort.
func grantAndAnnounce(
	ctx context.Context,
	configs *guildconfig.Cache,
	roles notify.RoleManager,
	notifier notify.Notifier,
	logger zerolog.Logger,
	guildID, userID string,
	team domain.Team,
	previous *domain.Team,
	announce bool,
) warnings {
	var w warnings

	cfg, err := configs.Get(ctx, guildID)
	if err != nil {
		w.add("could not load config to grant role: %v", err)
		return w
	}

	roleID, err := roles.GrantHeadCoach(ctx, guildID, userID, cfg.HeadCoachRole, cfg.HeadCoachRoleID)
	if err != nil {
		logger.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to grant head coach role")
		w.add("could not grant the %s role: %v", cfg.HeadCoachRole, err)
	} else if roleID != "" && roleID != cfg.HeadCoachRoleID {
		if err := configs.Save(ctx, guildID, domain.ConfigUpdate{HeadCoachRoleID: &roleID}); err != nil {
			logger.Warn().Err(err).Str("guild_id", guildID).Msg("failed to cache head coach role id")
		}
	}

	if !announce {
		return w
	}

	kind := notify.KindCoachSigned
	if previous != nil {
		kind = notify.KindCoachMoved
	}
	deliver(ctx, notifier, logger, notify.Notification{
		Kind:         kind,
		Target:       notify.Target{GuildID: guildID, Channel: domain.ChannelSignedCoaches, Fallback: domain.ChannelNewsFeed},
		UserID:       userID,
		Team:         &team,
		PreviousTeam: previous,
	}, &w)
	return w
}

// SweepExpired releases every lapsed offer and tells each affected user
// which teams went back to the pool. Rows are removed before anyone is
// notified, so a failed notification never leaves a stale lock and a row is
// reported at most once.
func (s *OfferService) SweepExpired(ctx context.Context) (*SweepReport, error) {
	now := s.clock.Now().UTC()
	expired, err := s.offers.ClaimExpired(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sweep expired offers")
		return nil, err
	}
	report := &SweepReport{Expired: len(expired)}
	if len(expired) == 0 {
		return report, nil
	}

	type key struct{ guildID, userID string }
	var order []key
	groups := make(map[key][]domain.Team)
	for _, o := range expired {
		k := key{o.GuildID, o.UserID}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o.Team)
	}
	report.Users = len(order)

	failures := make([]bool, len(order))
	g := new(errgroup.Group)
	g.SetLimit(constants.SweepNotifyConcurrency)
	for i, k := range order {
		g.Go(func() error {
			err := s.notifier.Notify(ctx, notify.Notification{
				Kind: notify.KindOffersExpired,
				Target: notify.Target{
					GuildID: k.guildID,
					UserID:  k.userID,
					Channel: domain.ChannelNewsFeed,
				},
				UserID: k.userID,
				Teams:  groups[k],
			})
			if err != nil {
				failures[i] = true
				s.logger.Warn().Err(err).Str("guild_id", k.guildID).Str("user_id", k.userID).Msg("failed to notify expired offers")
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, failed := range failures {
		if failed {
			report.NotifyFailures++
		}
	}

	s.logger.Info().
		Int("expired", report.Expired).
		Int("users", report.Users).
		Int("notify_failures", report.NotifyFailures).
		Msg("expired offers swept")
	return report, nil
}
