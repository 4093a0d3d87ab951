package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
)

type ConfigRepository struct {
	queries *db.Queries
	db      *sql.DB
	clock   clock.Clock
	logger  zerolog.Logger
}

func NewConfigRepository(sqlDB *sql.DB, queries *db.Queries, clk clock.Clock, logger zerolog.Logger) *ConfigRepository {
	return &ConfigRepository{
		queries: queries,
		db:      sqlDB,
		clock:   clk,
		logger:  logger,
	}
}

// GetConfig returns nil when the guild has no stored row.
func (r *ConfigRepository) GetConfig(ctx context.Context, guildID string) (*db.GuildConfig, error) {
	row, err := r.queries.GetGuildConfig(ctx, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("guild_id", guildID).Msg("failed to get guild config")
		return nil, err
	}
	return &row, nil
}

// CreateDefault inserts a default row and reports whether one was created.
func (r *ConfigRepository) CreateDefault(ctx context.Context, guildID, leagueName string) (bool, error) {
	if leagueName == "" {
		leagueName = guildconfig.DefaultLeagueName
	}
	n, err := r.queries.InsertGuildConfig(ctx, db.InsertGuildConfigParams{
		GuildID:    guildID,
		LeagueName: leagueName,
		CreatedAt:  unix(r.clock.Now()),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create guild config: %w", err)
	}
	return n > 0, nil
}

func (r *ConfigRepository) UpsertConfig(ctx context.Context, guildID string, update domain.ConfigUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := unix(r.clock.Now())

	if _, err := qtx.InsertGuildConfig(ctx, db.InsertGuildConfigParams{
		GuildID:    guildID,
		LeagueName: guildconfig.DefaultLeagueName,
		CreatedAt:  now,
	}); err != nil {
		return fmt.Errorf("failed to insert guild config: %w", err)
	}

	params := db.UpdateGuildConfigParams{
		GuildID:               guildID,
		LeagueName:            nullString(update.LeagueName),
		LeagueAbbreviation:    nullString(update.LeagueAbbreviation),
		SetupComplete:         nullBool(update.SetupComplete),
		RoleHeadCoach:         nullString(update.HeadCoachRole),
		RoleHeadCoachID:       nullString(update.HeadCoachRoleID),
		StarRatingMin:         nullFloat(update.StarRatingMin),
		StarRatingMaxSet:      update.StarRatingMaxSet,
		StarRatingMax:         nullFloat(update.StarRatingMax),
		JobOffersCount:        nullInt(update.JobOffersCount),
		JobOffersExpiryHours:  nullInt(update.JobOffersExpiryHours),
		StreamReminderMinutes: nullInt(update.StreamReminderMinutes),
		AdvanceIntervals:      nullString(update.AdvanceIntervals),
		Timezones:             nullString(update.Timezones),
		ColorPrimary:          nullString(update.ColorPrimary),
		ColorWin:              nullString(update.ColorWin),
		ColorLoss:             nullString(update.ColorLoss),
		UpdatedAt:             now,
	}
	if update.LeagueType != nil {
		params.LeagueType = sql.NullString{String: string(*update.LeagueType), Valid: true}
	}

	for feature, on := range update.Features {
		v := sql.NullBool{Bool: on, Valid: true}
		switch feature {
		case domain.FeatureJobOffers:
			params.FeatureJobOffers = v
		case domain.FeatureStreamReminders:
			params.FeatureStreamReminders = v
		case domain.FeatureAdvanceSystem:
			params.FeatureAdvanceSystem = v
		case domain.FeaturePressReleases:
			params.FeaturePressReleases = v
		case domain.FeatureRankings:
			params.FeatureRankings = v
		default:
			return fmt.Errorf("unknown feature %q", feature)
		}
	}

	for role, name := range update.Channels {
		v := sql.NullString{String: name, Valid: true}
		switch role {
		case domain.ChannelNewsFeed:
			params.ChannelNewsFeed = v
		case domain.ChannelAdvanceTracker:
			params.ChannelAdvanceTracker = v
		case domain.ChannelTeamLists:
			params.ChannelTeamLists = v
		case domain.ChannelSignedCoaches:
			params.ChannelSignedCoaches = v
		case domain.ChannelStreaming:
			params.ChannelStreaming = v
		default:
			return fmt.Errorf("unknown channel role %q", role)
		}
	}

	if err := qtx.UpdateGuildConfig(ctx, params); err != nil {
		r.logger.Error().Err(err).Str("guild_id", guildID).Msg("failed to update guild config")
		return fmt.Errorf("failed to update guild config: %w", err)
	}

	return tx.Commit()
}
