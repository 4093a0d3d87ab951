package db

import (
	"context"
	"database/sql"
)

const getGuildConfig = `
SELECT guild_id, league_name, league_abbreviation, setup_complete, league_type,
       feature_job_offers, feature_stream_reminders, feature_advance_system,
       feature_press_releases, feature_rankings,
       channel_news_feed, channel_advance_tracker, channel_team_lists,
       channel_signed_coaches, channel_streaming,
       role_head_coach, role_head_coach_id,
       star_rating_min, star_rating_max, job_offers_count, job_offers_expiry_hours,
       stream_reminder_minutes, advance_intervals, timezones,
       color_primary, color_win, color_loss, created_at, updated_at
FROM guild_config
WHERE guild_id = ?
`

func (q *Queries) GetGuildConfig(ctx context.Context, guildID string) (GuildConfig, error) {
	row := q.db.QueryRowContext(ctx, getGuildConfig, guildID)
	var i GuildConfig
	err := row.Scan(
		&i.GuildID,
		&i.LeagueName,
		&i.LeagueAbbreviation,
		&i.SetupComplete,
		&i.LeagueType,
		&i.FeatureJobOffers,
		&i.FeatureStreamReminders,
		&i.FeatureAdvanceSystem,
		&i.FeaturePressReleases,
		&i.FeatureRankings,
		&i.ChannelNewsFeed,
		&i.ChannelAdvanceTracker,
		&i.ChannelTeamLists,
		&i.ChannelSignedCoaches,
		&i.ChannelStreaming,
		&i.RoleHeadCoach,
		&i.RoleHeadCoachID,
		&i.StarRatingMin,
		&i.StarRatingMax,
		&i.JobOffersCount,
		&i.JobOffersExpiryHours,
		&i.StreamReminderMinutes,
		&i.AdvanceIntervals,
		&i.Timezones,
		&i.ColorPrimary,
		&i.ColorWin,
		&i.ColorLoss,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertGuildConfig = `
INSERT INTO guild_config (guild_id, league_name, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (guild_id) DO NOTHING
`

type InsertGuildConfigParams struct {
	GuildID    string
	LeagueName string
	CreatedAt  int64
}

func (q *Queries) InsertGuildConfig(ctx context.Context, arg InsertGuildConfigParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertGuildConfig,
		arg.GuildID,
		arg.LeagueName,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateGuildConfig = `
UPDATE guild_config SET
    league_name              = COALESCE(@league_name, league_name),
    league_abbreviation      = COALESCE(@league_abbreviation, league_abbreviation),
    setup_complete           = COALESCE(@setup_complete, setup_complete),
    league_type              = COALESCE(@league_type, league_type),
    feature_job_offers       = COALESCE(@feature_job_offers, feature_job_offers),
    feature_stream_reminders = COALESCE(@feature_stream_reminders, feature_stream_reminders),
    feature_advance_system   = COALESCE(@feature_advance_system, feature_advance_system),
    feature_press_releases   = COALESCE(@feature_press_releases, feature_press_releases),
    feature_rankings         = COALESCE(@feature_rankings, feature_rankings),
    channel_news_feed        = COALESCE(@channel_news_feed, channel_news_feed),
    channel_advance_tracker  = COALESCE(@channel_advance_tracker, channel_advance_tracker),
    channel_team_lists       = COALESCE(@channel_team_lists, channel_team_lists),
    channel_signed_coaches   = COALESCE(@channel_signed_coaches, channel_signed_coaches),
    channel_streaming        = COALESCE(@channel_streaming, channel_streaming),
    role_head_coach          = COALESCE(@role_head_coach, role_head_coach),
    role_head_coach_id       = COALESCE(@role_head_coach_id, role_head_coach_id),
    star_rating_min          = COALESCE(@star_rating_min, star_rating_min),
    star_rating_max          = CASE WHEN @star_rating_max_set THEN @star_rating_max ELSE star_rating_max END,
    job_offers_count         = COALESCE(@job_offers_count, job_offers_count),
    job_offers_expiry_hours  = COALESCE(@job_offers_expiry_hours, job_offers_expiry_hours),
    stream_reminder_minutes  = COALESCE(@stream_reminder_minutes, stream_reminder_minutes),
    advance_intervals        = COALESCE(@advance_intervals, advance_intervals),
    timezones                = COALESCE(@timezones, timezones),
    color_primary            = COALESCE(@color_primary, color_primary),
    color_win                = COALESCE(@color_win, color_win),
    color_loss               = COALESCE(@color_loss, color_loss),
    updated_at               = @updated_at
WHERE guild_id = @guild_id
`

type UpdateGuildConfigParams struct {
	GuildID                string
	LeagueName             sql.NullString
	LeagueAbbreviation     sql.NullString
	SetupComplete          sql.NullBool
	LeagueType             sql.NullString
	FeatureJobOffers       sql.NullBool
	FeatureStreamReminders sql.NullBool
	FeatureAdvanceSystem   sql.NullBool
	FeaturePressReleases   sql.NullBool
	FeatureRankings        sql.NullBool
	ChannelNewsFeed        sql.NullString
	ChannelAdvanceTracker  sql.NullString
	ChannelTeamLists       sql.NullString
	ChannelSignedCoaches   sql.NullString
	ChannelStreaming       sql.NullString
	RoleHeadCoach          sql.NullString
	RoleHeadCoachID        sql.NullString
	StarRatingMin          sql.NullFloat64
	StarRatingMaxSet       bool
	StarRatingMax          sql.NullFloat64
	JobOffersCount         sql.NullInt64
	JobOffersExpiryHours   sql.NullInt64
	StreamReminderMinutes  sql.NullInt64
	AdvanceIntervals       sql.NullString
	Timezones              sql.NullString
	ColorPrimary           sql.NullString
	ColorWin               sql.NullString
	ColorLoss              sql.NullString
	UpdatedAt              int64
}

func (q *Queries) UpdateGuildConfig(ctx context.Context, arg UpdateGuildConfigParams) error {
	_, err := q.db.ExecContext(ctx, updateGuildConfig,
		sql.Named("league_name", arg.LeagueName),
		sql.Named("league_abbreviation", arg.LeagueAbbreviation),
		sql.Named("setup_complete", arg.SetupComplete),
		sql.Named("league_type", arg.LeagueType),
		sql.Named("feature_job_offers", arg.FeatureJobOffers),
		sql.Named("feature_stream_reminders", arg.FeatureStreamReminders),
		sql.Named("feature_advance_system", arg.FeatureAdvanceSystem),
		sql.Named("feature_press_releases", arg.FeaturePressReleases),
		sql.Named("feature_rankings", arg.FeatureRankings),
		sql.Named("channel_news_feed", arg.ChannelNewsFeed),
		sql.Named("channel_advance_tracker", arg.ChannelAdvanceTracker),
		sql.Named("channel_team_lists", arg.ChannelTeamLists),
		sql.Named("channel_signed_coaches", arg.ChannelSignedCoaches),
		sql.Named("channel_streaming", arg.ChannelStreaming),
		sql.Named("role_head_coach", arg.RoleHeadCoach),
		sql.Named("role_head_coach_id", arg.RoleHeadCoachID),
		sql.Named("star_rating_min", arg.StarRatingMin),
		sql.Named("star_rating_max_set", arg.StarRatingMaxSet),
		sql.Named("star_rating_max", arg.StarRatingMax),
		sql.Named("job_offers_count", arg.JobOffersCount),
		sql.Named("job_offers_expiry_hours", arg.JobOffersExpiryHours),
		sql.Named("stream_reminder_minutes", arg.StreamReminderMinutes),
		sql.Named("advance_intervals", arg.AdvanceIntervals),
		sql.Named("timezones", arg.Timezones),
		sql.Named("color_primary", arg.ColorPrimary),
		sql.Named("color_win", arg.ColorWin),
		sql.Named("color_loss", arg.ColorLoss),
		sql.Named("updated_at", arg.UpdatedAt),
		sql.Named("guild_id", arg.GuildID),
	)
	return err
}
