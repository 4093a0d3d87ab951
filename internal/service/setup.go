package service

import (
	"context"
	"strings"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/repository"

	"github.com/rs/zerolog"
)

type SetupInput struct {
	LeagueName         string
	LeagueAbbreviation string
	LeagueType         domain.LeagueType
	// Start is the imported position of an established league.
	Start *league.State
	// Extra settings applied alongside, keyed like ApplySetting.
	Settings map[string]string
}

type SetupService struct {
	configs     *guildconfig.Cache
	configStore *repository.ConfigRepository
	seasons     *repository.SeasonRepository
	logger      zerolog.Logger
}

func NewSetupService(
	configs *guildconfig.Cache,
	configStore *repository.ConfigRepository,
	seasons *repository.SeasonRepository,
	logger zerolog.Logger,
) *SetupService {
	return &SetupService{
		configs:     configs,
		configStore: configStore,
		seasons:     seasons,
		logger:      logger,
	}
}

// InitGuild creates the default config and season rows for a guild the bot
// has joined. It reports whether the config row was new.
func (s *SetupService) InitGuild(ctx context.Context, guildID, guildName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	created, err := s.configStore.CreateDefault(ctx, guildID, guildName)
	if err != nil {
		return false, err
	}
	if _, err := s.seasons.EnsureMeta(ctx, guildID); err != nil {
		return created, err
	}
	if created {
		s.configs.Invalidate(guildID)
		s.logger.Info().Str("guild_id", guildID).Str("guild_name", guildName).Msg("guild initialized")
	}
	return created, nil
}

// Complete stores the league settings and marks setup done. An established
// league's starting position is imported only on first completion.
func (s *SetupService) Complete(ctx context.Context, guildID string, in SetupInput) (domain.GuildConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return domain.GuildConfig{}, err
	}

	if in.LeagueType == "" {
		in.LeagueType = domain.LeagueTypeNew
	}
	if !in.LeagueType.Valid() {
		return domain.GuildConfig{}, reject(RejectInvalidInput, "unknown league type %q", in.LeagueType)
	}
	if in.Start != nil {
		if in.LeagueType != domain.LeagueTypeEstablished {
			return domain.GuildConfig{}, reject(RejectInvalidInput, "only established leagues can import a starting season")
		}
		if cfg.SetupComplete {
			return domain.GuildConfig{}, reject(RejectSetupComplete, "setup is already complete; the season can no longer be imported")
		}
		if err := in.Start.Validate(); err != nil {
			return domain.GuildConfig{}, reject(RejectInvalidInput, "invalid starting point: %v", err)
		}
	}

	update, err := mergeSettings(in.Settings)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	if name := strings.TrimSpace(in.LeagueName); name != "" {
		update.LeagueName = &name
	}
	if abbr := strings.TrimSpace(in.LeagueAbbreviation); abbr != "" {
		update.LeagueAbbreviation = &abbr
	}
	update.LeagueType = &in.LeagueType
	update.SetupComplete = domain.Ptr(true)

	if in.Start != nil {
		if err := s.seasons.ImportMeta(ctx, guildID, *in.Start); err != nil {
			return domain.GuildConfig{}, err
		}
	} else if _, err := s.seasons.EnsureMeta(ctx, guildID); err != nil {
		return domain.GuildConfig{}, err
	}

	if err := s.configs.Save(ctx, guildID, update); err != nil {
		return domain.GuildConfig{}, err
	}

	s.logger.Info().
		Str("guild_id", guildID).
		Str("league_type", string(in.LeagueType)).
		Bool("imported", in.Start != nil).
		Msg("setup completed")

	return s.configs.Get(ctx, guildID)
}

// UpdateSetting validates and stores a single named setting.
func (s *SetupService) UpdateSetting(ctx context.Context, guildID, name, value string) (domain.GuildConfig, error) {
	update, err := guildconfig.ApplySetting(name, value)
	if err != nil {
		return domain.GuildConfig{}, reject(RejectInvalidInput, "%v", err)
	}
	if err := s.configs.Save(ctx, guildID, update); err != nil {
		return domain.GuildConfig{}, err
	}
	s.logger.Info().Str("guild_id", guildID).Str("setting", name).Msg("setting updated")
	return s.configs.Get(ctx, guildID)
}

func (s *SetupService) SetFeatures(ctx context.Context, guildID string, features map[domain.Feature]bool) (domain.GuildConfig, error) {
	if len(features) == 0 {
		return s.configs.Get(ctx, guildID)
	}
	if err := s.configs.Save(ctx, guildID, domain.ConfigUpdate{Features: features}); err != nil {
		return domain.GuildConfig{}, err
	}
	return s.configs.Get(ctx, guildID)
}

func (s *SetupService) Config(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	return s.configs.Get(ctx, guildID)
}

func (s *SetupService) Reload(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	return s.configs.Reload(ctx, guildID)
}

func mergeSettings(settings map[string]string) (domain.ConfigUpdate, error) {
	var merged domain.ConfigUpdate
	for name, value := range settings {
		u, err := guildconfig.ApplySetting(name, value)
		if err != nil {
			return domain.ConfigUpdate{}, reject(RejectInvalidInput, "%v", err)
		}
		merged = mergeUpdate(merged, u)
	}
	return merged, nil
}

func mergeUpdate(dst, src domain.ConfigUpdate) domain.ConfigUpdate {
	pick := func(a, b *string) *string {
		if b != nil {
			return b
		}
		return a
	}
	dst.LeagueName = pick(dst.LeagueName, src.LeagueName)
	dst.LeagueAbbreviation = pick(dst.LeagueAbbreviation, src.LeagueAbbreviation)
	dst.HeadCoachRole = pick(dst.HeadCoachRole, src.HeadCoachRole)
	dst.HeadCoachRoleID = pick(dst.HeadCoachRoleID, src.HeadCoachRoleID)
	dst.AdvanceIntervals = pick(dst.AdvanceIntervals, src.AdvanceIntervals)
	dst.Timezones = pick(dst.Timezones, src.Timezones)
	dst.ColorPrimary = pick(dst.ColorPrimary, src.ColorPrimary)
	dst.ColorWin = pick(dst.ColorWin, src.ColorWin)
	dst.ColorLoss = pick(dst.ColorLoss, src.ColorLoss)
	if src.StarRatingMin != nil {
		dst.StarRatingMin = src.StarRatingMin
	}
	if src.StarRatingMaxSet {
		dst.StarRatingMaxSet = true
		dst.StarRatingMax = src.StarRatingMax
	}
	if src.JobOffersCount != nil {
		dst.JobOffersCount = src.JobOffersCount
	}
	if src.JobOffersExpiryHours != nil {
		dst.JobOffersExpiryHours = src.JobOffersExpiryHours
	}
	if src.StreamReminderMinutes != nil {
		dst.StreamReminderMinutes = src.StreamReminderMinutes
	}
	for role, name := range src.Channels {
		if dst.Channels == nil {
			dst.Channels = map[domain.ChannelRole]string{}
		}
		dst.Channels[role] = name
	}
	return dst
}
